// Package common provides the constants and small shared types used by the
// timeseq command line.
package common

// Environment variable names for configuration.
const (
	// DebugEnv enables debug logging.
	DebugEnv = "TIMESEQ_DEBUG"

	// OperatorEnv selects the operator of the run command.
	OperatorEnv = "TIMESEQ_OPERATOR"

	// IntervalEnv sets the operator interval of the run command.
	IntervalEnv = "TIMESEQ_INTERVAL"

	// GapEnv sets the pause between input values of the run command.
	GapEnv = "TIMESEQ_GAP"

	// WorkersEnv sets the number of submitters of the check command.
	WorkersEnv = "TIMESEQ_WORKERS"
)
