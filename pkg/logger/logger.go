package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a JSON logger writing to stdout at the given level
func New(level string) zerolog.Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter builds a JSON logger writing to w. Unknown levels fall back to info.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).
		With().
		Timestamp().
		Logger().
		Level(lvl)
}
