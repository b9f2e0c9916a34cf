package common

import "time"

// Defaults shared by the commands.
const (
	DefaultInterval = 200 * time.Millisecond
	DefaultGap      = 50 * time.Millisecond

	DefaultCheckCount    = 1000
	DefaultCheckWorkers  = 8
	DefaultCheckMaxDelay = 250 * time.Millisecond
	DefaultCheckJitter   = time.Millisecond
	MaxCheckDelay        = 24 * time.Hour
)
