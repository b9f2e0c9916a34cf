package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/urfave/cli"
	"github.com/warpdl/timeseq/cmd/common"
	"github.com/warpdl/timeseq/pkg/scheduler"
	"github.com/warpdl/timeseq/pkg/timeseq"
)

var (
	tickEvery time.Duration
	tickCron  string
	tickCount int

	tickFlags = []cli.Flag{
		cli.DurationFlag{
			Name:        "every, e",
			Usage:       "tick period",
			Destination: &tickEvery,
		},
		cli.StringFlag{
			Name:        "cron",
			Usage:       "tick at each occurrence of a 5-field cron expression",
			Destination: &tickCron,
		},
		cli.IntFlag{
			Name:        "count, n",
			Usage:       "stop after this many ticks (0 runs until interrupted)",
			Value:       5,
			Destination: &tickCount,
		},
		debugFlag,
	}
)

// validateTickFlags checks that exactly one of --every and --cron is set and
// that the one set is usable.
func validateTickFlags(every time.Duration, expr string) error {
	switch {
	case every != 0 && expr != "":
		return errors.New("flags --every and --cron are mutually exclusive")
	case every == 0 && expr == "":
		return errors.New("one of --every or --cron is required")
	case expr != "":
		return validateCron(expr)
	case every < 0:
		return fmt.Errorf("invalid --every %s, must be positive", every)
	}
	return nil
}

// validateCron accepts exactly 5 fields (minute hour day-of-month month
// day-of-week); gronx alone would also accept a seconds field.
func validateCron(expr string) error {
	if len(strings.Fields(expr)) != 5 || !gronx.IsValid(expr) {
		return fmt.Errorf("invalid cron expression %q, expected 5-field format (minute hour day-of-month month day-of-week)", expr)
	}
	return nil
}

// hasOccurrenceWithinYear reports whether expr fires at least once in the
// year following from.
func hasOccurrenceWithinYear(expr string, from time.Time) bool {
	next, err := gronx.NextTickAfter(expr, from, false)
	if err != nil {
		return false
	}
	return next.Before(from.AddDate(1, 0, 0))
}

func tick(ctx *cli.Context) error {
	if err := validateTickFlags(tickEvery, tickCron); err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}

	l := common.NewLogger(debug)
	defer l.Close()
	sched := scheduler.New(scheduler.WithLogger(l))
	defer sched.Close()

	if tickCron != "" && !hasOccurrenceWithinYear(tickCron, sched.Now()) {
		l.Warning("cron expression %q does not fire within the next year", tickCron)
	}

	sctx, stop := signalContext()
	defer stop()

	err := printTicks(sctx, common.Out, sched, tickEvery, tickCron, tickCount)
	if err != nil && !errors.Is(err, context.Canceled) {
		common.PrintRuntimeErr(ctx, "tick", "stream", err)
	}
	return nil
}

// printTicks writes up to count ticks to w; count <= 0 means until ctx is
// done.
func printTicks(ctx context.Context, w io.Writer, sched scheduler.Scheduler, every time.Duration, expr string, count int) error {
	var (
		ticks *timeseq.Stream[time.Time]
		err   error
	)
	if expr != "" {
		ticks, err = timeseq.CronTicks(ctx, sched, expr)
	} else {
		ticks, err = timeseq.Ticks(ctx, sched, every)
	}
	if err != nil {
		return err
	}
	defer ticks.Close()

	for i := 1; count <= 0 || i <= count; i++ {
		t, err := ticks.Next(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%4d  %s\n", i, t.Format(time.RFC3339Nano))
	}
	return nil
}
