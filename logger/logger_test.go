package logger

import (
	"testing"
	"time"

	"github.com/op/go-logging"
)

func TestNewLogger(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		log := NewLogger("DEBUG", "testModule")
		if log == nil {
			t.Fatal("expected a non-nil logger")
		}
		if !log.IsEnabledFor(logging.DEBUG) {
			t.Error("expected DEBUG to be enabled")
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		log := NewLogger("INVALID", "testModule")
		if log == nil {
			t.Fatal("expected a non-nil logger")
		}
		if !log.IsEnabledFor(logging.INFO) {
			t.Error("expected the fallback level to enable INFO")
		}
	})
}

func TestParseTime(t *testing.T) {
	elapsed := 3661 * time.Second // 1 hour, 1 minute, and 1 second
	hours, minutes, seconds := ParseTime(elapsed)

	if hours != 1 || minutes != 1 || seconds != 1 {
		t.Errorf("got %d:%d:%d, want 1:1:1", hours, minutes, seconds)
	}
}

func TestCegisLoggerDispatchesBySeverity(t *testing.T) {
	log := NewLogger("DEBUG", "cegisTest")
	cl := NewCegisLogger(log)

	// Not much to assert against a real backend without capturing
	// stderr; exercising every bucket at least guards against a panic
	// from a wrong go-logging method name per level.
	for level := 1; level <= 6; level++ {
		cl.Logf(level, "level %d fired at cost %d", level, 42)
	}
}
