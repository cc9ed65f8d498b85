package testlog

import (
	"testing"

	"github.com/rs/zerolog"
)

// Logger returns a debug-level logger that writes through t.Log.
func Logger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).With().Str("test", t.Name()).Logger()
}
