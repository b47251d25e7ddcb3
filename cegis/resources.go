package cegis

import (
	"runtime"
	"time"
)

// resourceGuard implements the cooperative checkResourceLimits() probe of
// §5: polled at the top of every callback, it raises ErrResourceExhausted
// once a configured wall-clock or memory ceiling trips. It is scoped to a
// single solve, not a package-level global, so concurrent solves in the
// same process never share state through it.
type resourceGuard struct {
	start  time.Time
	cfg    Config
	checks uint64
}

func newResourceGuard(cfg Config) *resourceGuard {
	return &resourceGuard{start: time.Now(), cfg: cfg}
}

// check is cheap on the common path: it only samples runtime.MemStats every
// 4096th call, since reading memory stats is comparatively expensive and
// enumeration callbacks fire far more often than a memory ceiling can
// plausibly be crossed between samples.
func (g *resourceGuard) check() error {
	g.checks++
	if g.cfg.WallClockLimit > 0 && time.Since(g.start) > g.cfg.WallClockLimit {
		return wrapf(ErrResourceExhausted, "wall clock limit of %s exceeded", g.cfg.WallClockLimit)
	}
	if g.cfg.MemoryLimitMB > 0 && g.checks%4096 == 0 {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		if m.Sys/(1<<20) > g.cfg.MemoryLimitMB {
			return wrapf(ErrResourceExhausted, "memory limit of %dMB exceeded", g.cfg.MemoryLimitMB)
		}
	}
	return nil
}

func (g *resourceGuard) elapsed() time.Duration { return time.Since(g.start) }

func (g *resourceGuard) peakMemoryMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Sys / (1 << 20)
}
