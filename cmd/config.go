package cmd

const DESCRIPTION = `
timeseq drives time-based sequence operators (debounce, delay, throttle,
timeout and interval measurement) on an ordered real-time scheduler, and
can stress the scheduler to verify that handlers are delivered in fire
time order.
`

const (
	RunDescription = `The run command feeds values to an operator, one value
every --gap, and prints what the operator emits together with the
time elapsed since the start.

Values are taken from the arguments, or from --input-file (one value
per line, empty lines and lines starting with # are skipped).

Example:
        timeseq run --operator debounce --interval 200ms a b c
        timeseq run -p throttle --latest -i 1s -g 300ms -f values.txt

`
	CheckDescription = `The check command schedules --count handlers with random
delays of up to --max-delay from --workers concurrent goroutines and
verifies that they are delivered in non-decreasing fire time order.
Each submitter reads the clock before and after scheduling, which bounds
the fire time the scheduler assigned. A delivery is reported as a
violation only when its latest possible fire time is more than --jitter
before the earliest possible fire time of a previous delivery.

Example:
        timeseq check --count 5000 --max-delay 500ms --workers 16

`
	TickDescription = `The tick command prints scheduler ticks, either every
--every or at each occurrence of the 5-field --cron expression, until
--count ticks were printed or the command is interrupted.

Example:
        timeseq tick --every 500ms --count 10
        timeseq tick --cron "*/5 * * * *"

`
)
