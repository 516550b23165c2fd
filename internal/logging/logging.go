// Package logging builds the zerolog loggers used by the CLI and handed down
// to vehicles and simulators.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ParseLevel maps a case-insensitive level name to a zerolog level. Unknown
// names fall back to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "DISABLED", "OFF":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New returns a timestamped logger writing to w (stderr when nil) in the
// given format.
func New(level, format string, w io.Writer) zerolog.Logger {
	return zerolog.New(formatWriter(format, w)).Level(ParseLevel(level)).With().Timestamp().Logger()
}

func formatWriter(format string, w io.Writer) io.Writer {
	if w == nil {
		w = os.Stderr
	}
	if format == FormatJSON {
		return w
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    w != os.Stderr && w != os.Stdout,
	}
}

// NewWithGraylog is New plus a copy of every entry sent as JSON to the
// Graylog GELF input at addr (host:port, UDP). The returned close func
// releases the connection.
func NewWithGraylog(level, format string, w io.Writer, addr string) (zerolog.Logger, func() error, error) {
	gw, err := gelf.NewWriter(addr)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("error connecting to graylog at %q: %w", addr, err)
	}

	mlw := zerolog.MultiLevelWriter(formatWriter(format, w), gw)
	log := zerolog.New(mlw).Level(ParseLevel(level)).With().Timestamp().Logger()
	return log, gw.Close, nil
}

// Nop is the logger used when a caller does not supply one.
func Nop() zerolog.Logger { return zerolog.Nop() }
