package timeseq_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warpdl/timeseq/internal/seqtest"
	"github.com/warpdl/timeseq/pkg/logger"
	"github.com/warpdl/timeseq/pkg/scheduler"
	"github.com/warpdl/timeseq/pkg/scheduler/schedulertest"
	"github.com/warpdl/timeseq/pkg/timeseq"
)

var items = []int{1, 5, 10, 15, 20}

const baseDelay = 5 * time.Second

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestDebounce(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()
	src := seqtest.NewControlledSource(items...)

	out := timeseq.Debounce(ctx, src, baseDelay, sched)
	require.NoError(t, src.Send(ctx, 5))
	require.NoError(t, sched.WaitForScheduledJobs(ctx, 5))
	sched.Advance(baseDelay)

	got, err := seqtest.Take[int](ctx, out, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{20}, got)
}

func TestDebounce_EmitsPendingBeforeEnd(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()
	src := seqtest.NewControlledSource(items...)

	out := timeseq.Debounce(ctx, src, baseDelay, sched)
	require.NoError(t, src.Send(ctx, 2))
	src.Finish()
	sched.Advance(baseDelay)

	got, err := out.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, got)
}

func TestDebounce_QuietGapsEmitEach(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()
	src := seqtest.NewControlledSource(items...)

	out := timeseq.Debounce(ctx, src, baseDelay, sched)
	require.NoError(t, src.Send(ctx, 1))
	sched.Advance(baseDelay)
	require.NoError(t, src.Send(ctx, 2))
	sched.Advance(baseDelay - time.Second)
	require.NoError(t, src.Send(ctx, 1))
	sched.Advance(baseDelay)

	got, err := seqtest.Take[int](ctx, out, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 15}, got)
}

func TestDelay(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()
	src := seqtest.NewControlledSource(items...)

	out := timeseq.Delay(ctx, src, baseDelay, sched)
	require.NoError(t, src.Send(ctx, 5))
	sched.Advance(baseDelay)

	got, err := seqtest.Take[int](ctx, out, 5)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestDelay_Staggered(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()
	src := seqtest.NewControlledSource(1, 2)

	out := timeseq.Delay(ctx, src, baseDelay, sched)
	require.NoError(t, src.Send(ctx, 1))
	sched.Advance(2 * time.Second)
	require.NoError(t, src.Send(ctx, 1))
	sched.Advance(3 * time.Second)

	got, err := seqtest.Take[int](ctx, out, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)

	src.Finish()
	sched.Advance(2 * time.Second)
	rest, err := out.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, rest)
}

func TestDelay_Chained(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()

	first := timeseq.Delay(ctx, timeseq.FromSlice([]int{1, 2, 3}), time.Second, sched)
	second := timeseq.Delay(ctx, first, time.Second, sched)

	require.NoError(t, sched.WaitForScheduledJobs(ctx, 3))
	sched.Advance(time.Second)
	require.NoError(t, sched.WaitForScheduledJobs(ctx, 3))
	sched.Advance(time.Second)

	got, err := second.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestDelay_Realtime(t *testing.T) {
	ctx := testContext(t)
	sched := scheduler.New()

	in := make([]int, 20)
	for i := range in {
		in[i] = i
	}
	got, err := timeseq.Delay(ctx, timeseq.FromSlice(in), time.Millisecond, sched).Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestTimeout(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()
	src := seqtest.NewControlledSource(items...)

	out := timeseq.Timeout(ctx, src, baseDelay, sched)
	require.NoError(t, src.Send(ctx, 5))
	require.NoError(t, sched.WaitForScheduledJobs(ctx, 6))
	sched.Advance(baseDelay)

	got, err := out.Collect(ctx)
	assert.Equal(t, items, got)
	require.ErrorIs(t, err, timeseq.ErrTimeout)

	var te *timeseq.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, baseDelay, te.Interval)
}

func TestTimeout_NoElements(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()

	out := timeseq.Timeout(ctx, seqtest.NewControlledSource[int](), baseDelay, sched)
	sched.Advance(baseDelay - time.Nanosecond)
	select {
	case <-out.Done():
		t.Fatal("timed out early")
	default:
	}
	sched.Advance(time.Nanosecond)

	got, err := out.Collect(ctx)
	assert.Empty(t, got)
	assert.ErrorIs(t, err, timeseq.ErrTimeout)
}

func TestTimeout_SourceEndsFirst(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()

	out := timeseq.Timeout(ctx, timeseq.FromSlice(items), baseDelay, sched)
	got, err := out.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, got)

	// The armed timeouts are stale now.
	sched.Advance(baseDelay)
	assert.NoError(t, out.Err())
}

func TestThrottle(t *testing.T) {
	tests := []struct {
		name   string
		latest bool
		sends  []int
		want   []int
	}{
		{name: "latest single window", latest: true, sends: []int{5}, want: []int{20}},
		{name: "latest two windows", latest: true, sends: []int{3, 2}, want: []int{10, 20}},
		{name: "first two windows", latest: false, sends: []int{3, 2}, want: []int{1, 15}},
		{name: "first single window", latest: false, sends: []int{5}, want: []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			sched := schedulertest.New()
			src := seqtest.NewControlledSource(items...)

			out := timeseq.Throttle(ctx, src, baseDelay, sched, tt.latest)
			for _, n := range tt.sends {
				require.NoError(t, src.Send(ctx, n))
				sched.Advance(baseDelay)
			}

			got, err := seqtest.Take[int](ctx, out, len(tt.want))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThrottle_EndsAfterOpenWindow(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()

	src := seqtest.NewControlledSource(items...)

	out := timeseq.Throttle(ctx, src, baseDelay, sched, true)
	require.NoError(t, src.Send(ctx, 5))
	src.Finish()
	sched.Advance(baseDelay)

	got, err := out.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{20}, got)
}

func TestMeasureInterval(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()
	src := seqtest.NewControlledSource(items...)
	want := []time.Duration{3 * time.Second, 8 * time.Second, 12 * time.Second, 1000 * time.Second}

	out := timeseq.MeasureInterval(ctx, src, sched)
	require.NoError(t, src.Send(ctx, 1))
	for _, d := range want {
		sched.Advance(d)
		require.NoError(t, src.Send(ctx, 1))
	}

	got, err := seqtest.Take[time.Duration](ctx, out, len(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMeasureInterval_SchedulesMarkers(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()

	out := timeseq.MeasureInterval(ctx, timeseq.FromSlice(items), sched)
	require.NoError(t, sched.WaitForScheduledJobs(ctx, len(items)))

	got, err := out.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{0, 0, 0, 0}, got)
}

func TestTicks(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()

	ticks, err := timeseq.Ticks(ctx, sched, time.Second)
	require.NoError(t, err)
	sched.Advance(3 * time.Second)

	got, err := seqtest.Take[time.Time](ctx, ticks, 3)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{time.Unix(1, 0), time.Unix(2, 0), time.Unix(3, 0)}, got)

	ticks.Close()
	require.Eventually(t, func() bool { return sched.Pending() == 0 }, time.Second, time.Millisecond)
}

func TestTicks_InvalidPeriod(t *testing.T) {
	_, err := timeseq.Ticks(context.Background(), schedulertest.New(), -time.Second)
	assert.ErrorIs(t, err, scheduler.ErrInvalidPeriod)
}

func TestOperator_UpstreamError(t *testing.T) {
	ctx := testContext(t)
	boom := errors.New("boom")
	sent := false
	src := timeseq.SourceFunc[int](func(ctx context.Context) (int, error) {
		if !sent {
			sent = true
			return 1, nil
		}
		return 0, boom
	})

	out := timeseq.Timeout(ctx, src, baseDelay, schedulertest.New())
	got, err := out.Collect(ctx)
	assert.Equal(t, []int{1}, got)
	assert.ErrorIs(t, err, boom)
}

func TestOperator_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := timeseq.Delay(ctx, seqtest.NewControlledSource(items...), baseDelay, schedulertest.New())
	cancel()

	_, err := out.Collect(testContext(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOperator_Panic(t *testing.T) {
	ctx := testContext(t)
	log := logger.NewMockLogger()
	src := timeseq.SourceFunc[int](func(context.Context) (int, error) {
		panic("source exploded")
	})

	out := timeseq.Delay(ctx, src, baseDelay, schedulertest.New(), timeseq.WithLogger(log))
	_, err := out.Collect(ctx)
	require.ErrorIs(t, err, timeseq.ErrOperatorPanic)
	require.Len(t, log.ErrorCalls(), 1)
	assert.Contains(t, log.ErrorCalls()[0], "source exploded")
}

func TestOperator_CloseStopsReading(t *testing.T) {
	ctx := testContext(t)
	sched := schedulertest.New()
	src := seqtest.NewControlledSource(items...)

	out := timeseq.Delay(ctx, src, baseDelay, sched)
	require.NoError(t, src.Send(ctx, 1))
	out.Close()

	_, err := out.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
	sched.Advance(baseDelay)
	_, err = out.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCronTicks(t *testing.T) {
	ctx := testContext(t)
	start := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	sched := schedulertest.New(schedulertest.WithStart(start))

	ticks, err := timeseq.CronTicks(ctx, sched, "0 * * * *")
	require.NoError(t, err)
	sched.Advance(2 * time.Hour)

	got, err := seqtest.Take[time.Time](ctx, ticks, 2)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{start.Add(time.Hour), start.Add(2 * time.Hour)}, got)

	_, err = timeseq.CronTicks(ctx, sched, "* * *")
	assert.ErrorIs(t, err, scheduler.ErrInvalidCron)
}

func TestTicks_EndWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sched := schedulertest.New()

	ticks, err := timeseq.Ticks(ctx, sched, time.Second)
	require.NoError(t, err)
	cancel()

	_, err = ticks.Next(testContext(t))
	assert.ErrorIs(t, err, context.Canceled)
}
