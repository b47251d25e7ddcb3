package cegis

import "time"

// Config is the recognized set of solver options (§6).
type Config struct {
	// CostBudget is the maximum expression cost explored.
	CostBudget int
	// NoDist disables signature-based pruning and restart-on-counter-
	// example: counter-examples are still added, but enumeration is not
	// restarted (§4.5 "Tie-breaks and edge cases").
	NoDist bool
	// StatsLevel is diagnostic verbosity, 0-6, mirroring the original's
	// Log1..Log6 levels.
	StatsLevel int

	// WallClockLimit bounds total solve time; zero disables the check.
	WallClockLimit time.Duration
	// MemoryLimitMB bounds resident/system memory; zero disables the
	// check.
	MemoryLimitMB uint64
}

// DefaultConfig returns a Config with an unbounded cost budget guard
// disabled, distinguishability pruning on, and no resource ceiling — the
// caller is expected to set CostBudget explicitly.
func DefaultConfig() Config {
	return Config{CostBudget: 0, NoDist: false, StatsLevel: 0}
}
