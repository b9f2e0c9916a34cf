package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli"
	"github.com/warpdl/timeseq/cmd/common"
	sharedcommon "github.com/warpdl/timeseq/common"
	"github.com/warpdl/timeseq/pkg/logger"
	"github.com/warpdl/timeseq/pkg/scheduler"
	"github.com/warpdl/timeseq/pkg/timeseq"
)

var (
	operatorName string
	interval     time.Duration
	gap          time.Duration
	latest       bool
	inputFile    string

	runFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "operator, p",
			Usage:       "operator to apply (" + sharedcommon.OperatorList() + ")",
			Value:       string(sharedcommon.OperatorDebounce),
			Destination: &operatorName,
			EnvVar:      sharedcommon.OperatorEnv,
		},
		cli.DurationFlag{
			Name:        "interval, i",
			Usage:       "operator interval",
			Value:       sharedcommon.DefaultInterval,
			Destination: &interval,
			EnvVar:      sharedcommon.IntervalEnv,
		},
		cli.DurationFlag{
			Name:        "gap, g",
			Usage:       "pause between two input values",
			Value:       sharedcommon.DefaultGap,
			Destination: &gap,
			EnvVar:      sharedcommon.GapEnv,
		},
		cli.BoolFlag{
			Name:        "latest, l",
			Usage:       "throttle emits the latest value of a window instead of the first",
			Destination: &latest,
		},
		cli.StringFlag{
			Name:        "input-file, f",
			Usage:       "read values from a file, one per line",
			Destination: &inputFile,
		},
		debugFlag,
	}
)

// runConfig is what the run command needs besides its input values.
type runConfig struct {
	operator sharedcommon.Operator
	interval time.Duration
	gap      time.Duration
	latest   bool
}

func run(ctx *cli.Context) error {
	op, err := sharedcommon.ParseOperator(operatorName)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	values, err := collectValues(ctx.Args(), inputFile)
	if errors.Is(err, ErrNoValues) {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	if err != nil {
		common.PrintRuntimeErr(ctx, "run", "input", err)
		return nil
	}

	l := common.NewLogger(debug)
	defer l.Close()
	sched := scheduler.New(scheduler.WithLogger(l))
	defer sched.Close()

	sctx, stop := signalContext()
	defer stop()

	cfg := runConfig{operator: op, interval: interval, gap: gap, latest: latest}
	err = runPipeline(sctx, common.Out, sched, cfg, values, l)
	var te *timeseq.TimeoutError
	switch {
	case err == nil:
	case errors.As(err, &te):
		fmt.Fprintf(common.Out, "stream failed: no value within %s\n", te.Interval)
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(common.Out, "interrupted")
	default:
		common.PrintRuntimeErr(ctx, "run", "stream", err)
	}
	return nil
}

// runPipeline feeds values through the configured operator and writes every
// emitted element to w, prefixed with the scheduler time elapsed since the
// start. It returns nil when the operator output ends normally.
func runPipeline(ctx context.Context, w io.Writer, sched scheduler.Scheduler, cfg runConfig, values []string, l logger.Logger) error {
	start := sched.Now()
	src := &pacedSource{sched: sched, gap: cfg.gap, values: values}
	out, err := applyOperator(ctx, cfg, src, sched, l)
	if err != nil {
		return err
	}
	l.Debug("run: %s over %d values, interval %s, gap %s", cfg.operator, len(values), cfg.interval, cfg.gap)

	fmt.Fprintln(w, common.Beaut(fmt.Sprintf(">> %s %s <<", cfg.operator, cfg.interval), 40))
	for {
		v, err := out.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		elapsed := sched.Now().Sub(start).Round(time.Millisecond)
		fmt.Fprintf(w, "%10s  %s\n", elapsed, v)
	}
}

func applyOperator(ctx context.Context, cfg runConfig, src timeseq.Source[string], sched scheduler.Scheduler, l logger.Logger) (timeseq.Source[string], error) {
	opt := timeseq.WithLogger(l)
	switch cfg.operator {
	case sharedcommon.OperatorDebounce:
		return timeseq.Debounce(ctx, src, cfg.interval, sched, opt), nil
	case sharedcommon.OperatorDelay:
		return timeseq.Delay(ctx, src, cfg.interval, sched, opt), nil
	case sharedcommon.OperatorThrottle:
		return timeseq.Throttle(ctx, src, cfg.interval, sched, cfg.latest, opt), nil
	case sharedcommon.OperatorTimeout:
		return timeseq.Timeout(ctx, src, cfg.interval, sched, opt), nil
	case sharedcommon.OperatorMeasure:
		return durationStrings(timeseq.MeasureInterval(ctx, src, sched, opt)), nil
	}
	return nil, fmt.Errorf("%w %q", sharedcommon.ErrUnknownOperator, cfg.operator)
}

func durationStrings(s *timeseq.Stream[time.Duration]) timeseq.Source[string] {
	return timeseq.SourceFunc[string](func(ctx context.Context) (string, error) {
		d, err := s.Next(ctx)
		if err != nil {
			return "", err
		}
		return d.String(), nil
	})
}

// pacedSource yields values with gap scheduler time between two of them.
// It is read by a single operator goroutine.
type pacedSource struct {
	sched  scheduler.Scheduler
	gap    time.Duration
	values []string
	pos    int
}

func (p *pacedSource) Next(ctx context.Context) (string, error) {
	if p.pos >= len(p.values) {
		return "", io.EOF
	}
	if p.pos > 0 {
		if err := scheduler.Sleep(ctx, p.sched, p.gap); err != nil {
			return "", err
		}
	}
	v := p.values[p.pos]
	p.pos++
	return v, nil
}
