package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/warpdl/timeseq/cmd/common"
	sharedcommon "github.com/warpdl/timeseq/common"
	"github.com/warpdl/timeseq/pkg/logger"
	"github.com/warpdl/timeseq/pkg/scheduler"
	"golang.org/x/sync/errgroup"
)

var (
	checkCount    int
	checkWorkers  int
	checkMaxDelay time.Duration
	checkJitter   time.Duration
	checkSeed     int64

	checkFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "count, n",
			Usage:       "number of handlers to schedule",
			Value:       sharedcommon.DefaultCheckCount,
			Destination: &checkCount,
		},
		cli.IntFlag{
			Name:        "workers, w",
			Usage:       "number of concurrent submitters",
			Value:       sharedcommon.DefaultCheckWorkers,
			Destination: &checkWorkers,
			EnvVar:      sharedcommon.WorkersEnv,
		},
		cli.DurationFlag{
			Name:        "max-delay, m",
			Usage:       "upper bound of the random handler delay (at most 24h)",
			Value:       sharedcommon.DefaultCheckMaxDelay,
			Destination: &checkMaxDelay,
		},
		cli.DurationFlag{
			Name:        "jitter, j",
			Usage:       "tolerance when comparing the fire times of consecutive deliveries",
			Value:       sharedcommon.DefaultCheckJitter,
			Destination: &checkJitter,
		},
		cli.Int64Flag{
			Name:        "seed, s",
			Usage:       "random seed (0 picks one from the clock)",
			Destination: &checkSeed,
		},
		debugFlag,
	}
)

// ErrOrderViolation is returned by check when deliveries were out of order.
var ErrOrderViolation = errors.New("handlers delivered out of fire time order")

type checkConfig struct {
	count    int
	workers  int
	maxDelay time.Duration
	jitter   time.Duration
	seed     int64
}

// checkReport summarises one check run.
type checkReport struct {
	Delivered  int
	Violations int
	// MaxLag is the largest distance between the latest possible fire time
	// of a handler and the scheduler time it ran at.
	MaxLag time.Duration
}

func check(ctx *cli.Context) error {
	cfg := checkConfig{
		count:    checkCount,
		workers:  checkWorkers,
		maxDelay: checkMaxDelay,
		jitter:   checkJitter,
		seed:     checkSeed,
	}
	if err := validateCheckConfig(cfg); err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	if cfg.seed == 0 {
		cfg.seed = time.Now().UnixNano()
	}

	l := common.NewLogger(debug)
	defer l.Close()
	sched := scheduler.New(scheduler.WithLogger(l))
	defer sched.Close()

	sctx, stop := signalContext()
	defer stop()

	p := mpb.New(mpb.WithOutput(common.Out))
	counter := NewDeliveryCounter(50 * time.Millisecond)
	counter.SetBar(common.InitCheckBar(p, int64(cfg.count)))
	counter.Start()

	report, err := runCheck(sctx, sched, cfg, counter.IncrBy, l)
	counter.Stop()
	if err != nil {
		p.Shutdown()
		common.PrintRuntimeErr(ctx, "check", "run", err)
		return nil
	}
	p.Wait()

	fmt.Fprintf(common.Out, "seed %d: %d delivered, %d out of order, max lag %s\n",
		cfg.seed, report.Delivered, report.Violations, report.MaxLag)
	if report.Violations > 0 {
		return fmt.Errorf("%w: %d of %d", ErrOrderViolation, report.Violations, report.Delivered)
	}
	return nil
}

func validateCheckConfig(cfg checkConfig) error {
	switch {
	case cfg.count <= 0 || cfg.workers <= 0:
		return errors.New("count and workers must be positive")
	case cfg.maxDelay < 0 || cfg.maxDelay > sharedcommon.MaxCheckDelay:
		return fmt.Errorf("max-delay must be between 0 and %s", sharedcommon.MaxCheckDelay)
	case cfg.jitter < 0:
		return errors.New("jitter must not be negative")
	}
	return nil
}

// runCheck schedules cfg.count handlers from cfg.workers goroutines and waits
// until all of them ran. onDelivered is called from every handler.
func runCheck(ctx context.Context, sched scheduler.Scheduler, cfg checkConfig, onDelivered func(int), l logger.Logger) (checkReport, error) {
	var (
		mu      sync.Mutex
		report  checkReport
		floor   time.Time
		started bool
	)
	finished := make(chan struct{})
	snapshot := func() checkReport {
		mu.Lock()
		defer mu.Unlock()
		return report
	}
	// The scheduler reads its clock between the two reads of the submitter,
	// so the fire time it assigned lies in [lo, hi]. floor is the largest lo
	// delivered so far; a delivery is out of order only when even its hi
	// precedes it.
	deliver := func(lo, hi time.Time) {
		now := sched.Now()
		mu.Lock()
		if started && hi.Before(floor.Add(-cfg.jitter)) {
			report.Violations++
			l.Warning("check: handler due by %s ran after one due no earlier than %s",
				hi.Format(time.RFC3339Nano), floor.Format(time.RFC3339Nano))
		}
		if !started || lo.After(floor) {
			floor = lo
		}
		started = true
		if lag := now.Sub(hi); lag > report.MaxLag {
			report.MaxLag = lag
		}
		report.Delivered++
		if report.Delivered == cfg.count {
			close(finished)
		}
		mu.Unlock()
		if onDelivered != nil {
			onDelivered(1)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.workers; w++ {
		n := cfg.count / cfg.workers
		if w < cfg.count%cfg.workers {
			n++
		}
		rng := rand.New(rand.NewSource(cfg.seed + int64(w)))
		g.Go(func() error {
			for j := 0; j < n; j++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				d := time.Duration(rng.Int63n(int64(cfg.maxDelay) + 1))
				ready := make(chan struct{})
				lo := sched.Now().Add(d)
				var hi time.Time
				sched.Schedule(d, func() {
					<-ready
					deliver(lo, hi)
				})
				hi = sched.Now().Add(d)
				close(ready)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return snapshot(), err
	}
	l.Debug("check: %d handlers submitted by %d workers", cfg.count, cfg.workers)

	select {
	case <-finished:
	case <-ctx.Done():
		return snapshot(), ctx.Err()
	}
	return snapshot(), nil
}
