package wire

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// newLogger mirrors danmuck-edgectl/internal/observability.InitLogger's
// console-writer setup, scoped to a "component" field instead of an "app"
// field since every connection and channel in this package wants its own
// named logger rather than one process-wide logger.
func newLogger(component string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("component", component).Logger()
}
