package util

import (
	"log/slog"
	"time"
)

// Trace logs how long the enclosing call took: defer util.Trace("capture")()
func Trace(name string) func() {
	start := time.Now()
	return func() {
		slog.Debug("trace", "name", name, "elapsed", time.Since(start))
	}
}
