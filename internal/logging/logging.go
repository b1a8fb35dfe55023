// Package logging provides the process logger and its bridge into the Wails
// runtime logger, so runtime.Log* calls and direct zerolog calls share a sink.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	wailslogger "github.com/wailsapp/wails/v2/pkg/logger"
)

// New returns a zerolog.Logger at the given level ("debug", "info", ...).
// Unknown levels fall back to info. A nil w writes human-readable output to
// stderr.
func New(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().
		Str("app", "apivault").
		Timestamp().
		Logger()
}

// WailsLevel maps a zerolog level onto the Wails log level.
func WailsLevel(l zerolog.Level) wailslogger.LogLevel {
	switch {
	case l <= zerolog.TraceLevel:
		return wailslogger.TRACE
	case l == zerolog.DebugLevel:
		return wailslogger.DEBUG
	case l == zerolog.InfoLevel:
		return wailslogger.INFO
	case l == zerolog.WarnLevel:
		return wailslogger.WARNING
	default:
		return wailslogger.ERROR
	}
}

// WailsLogger satisfies the Wails logger.Logger interface on top of zerolog.
type WailsLogger struct {
	log zerolog.Logger
}

var _ wailslogger.Logger = (*WailsLogger)(nil)

func NewWailsLogger(log zerolog.Logger) *WailsLogger {
	return &WailsLogger{log: log.With().Str("source", "wails").Logger()}
}

func (l *WailsLogger) Print(message string)   { l.log.Log().Msg(message) }
func (l *WailsLogger) Trace(message string)   { l.log.Trace().Msg(message) }
func (l *WailsLogger) Debug(message string)   { l.log.Debug().Msg(message) }
func (l *WailsLogger) Info(message string)    { l.log.Info().Msg(message) }
func (l *WailsLogger) Warning(message string) { l.log.Warn().Msg(message) }
func (l *WailsLogger) Error(message string)   { l.log.Error().Msg(message) }
func (l *WailsLogger) Fatal(message string)   { l.log.Fatal().Msg(message) }
