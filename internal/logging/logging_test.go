package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestInitFallsBackToInfoOnInvalidLevel(t *testing.T) {
	Init(true, "not-a-real-level")
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("GlobalLevel() = %v, want InfoLevel after an invalid level string", zerolog.GlobalLevel())
	}
}

func TestInitAppliesValidLevel(t *testing.T) {
	Init(true, "warn")
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("GlobalLevel() = %v, want WarnLevel", zerolog.GlobalLevel())
	}
	// Restore a sane default so later tests in this package aren't affected.
	Init(true, "info")
}
