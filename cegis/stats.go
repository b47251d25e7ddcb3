package cegis

import "time"

// Stats are the counters §6 requires as Outputs.
type Stats struct {
	ExpressionsTried   uint64
	DistinguishableCnt uint64
	Restarts           uint64
	WallTime           time.Duration
	PeakMemoryMB       uint64
	SolutionSize       int
}
