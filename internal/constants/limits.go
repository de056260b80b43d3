package constants

import "time"

const (
	MaxPrefixLength = 64

	// LockTimeout is how long a run waits for another run on the same
	// installation to finish.
	LockTimeout = 5 * time.Second

	DefaultHistoryLimit = 20
	MaxHistoryRecords   = 500
)
