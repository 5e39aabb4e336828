package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the process logger. Development environments get a human readable
// console writer, everything else emits JSON for log ingestion.
func New(env, level string, writers ...io.Writer) (zerolog.Logger, error) {
	parsed, err := parseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var output io.Writer
	switch {
	case len(writers) > 0:
		output = io.MultiWriter(writers...)
	case strings.EqualFold(env, "development") || strings.EqualFold(env, "dev"):
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	default:
		output = os.Stdout
	}

	return zerolog.New(output).With().Timestamp().Logger().Level(parsed), nil
}

func parseLevel(level string) (zerolog.Level, error) {
	trimmed := strings.TrimSpace(level)
	if trimmed == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(trimmed))
}
