package hooks

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"github.com/Skryldev/recipebook/core"
)

// ── slog ──────────────────────────────────────────────────────────────────────

// SlogLogger wraps the standard library slog.Logger to satisfy core.Logger.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger backed by slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger { return &SlogLogger{log: l} }

func (s *SlogLogger) Debug(msg string, fields ...interface{}) { s.log.Debug(msg, fields...) }
func (s *SlogLogger) Info(msg string, fields ...interface{})  { s.log.Info(msg, fields...) }
func (s *SlogLogger) Warn(msg string, fields ...interface{})  { s.log.Warn(msg, fields...) }
func (s *SlogLogger) Error(msg string, fields ...interface{}) { s.log.Error(msg, fields...) }

// ── zerolog ───────────────────────────────────────────────────────────────────

// ZerologLogger adapts a zerolog.Logger. Fields are alternating key/value
// pairs; a trailing key without value is logged under "!BADKEY".
type ZerologLogger struct {
	log zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger { return &ZerologLogger{log: l} }

func (z *ZerologLogger) Debug(msg string, fields ...interface{}) { z.emit(z.log.Debug(), msg, fields) }
func (z *ZerologLogger) Info(msg string, fields ...interface{})  { z.emit(z.log.Info(), msg, fields) }
func (z *ZerologLogger) Warn(msg string, fields ...interface{})  { z.emit(z.log.Warn(), msg, fields) }
func (z *ZerologLogger) Error(msg string, fields ...interface{}) { z.emit(z.log.Error(), msg, fields) }

func (z *ZerologLogger) emit(ev *zerolog.Event, msg string, fields []interface{}) {
	for i := 0; i < len(fields); i += 2 {
		key, val := fieldPair(fields, i)
		if err, ok := val.(error); ok {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, val)
	}
	ev.Msg(msg)
}

// ── zap ───────────────────────────────────────────────────────────────────────

// ZapLogger adapts a *zap.Logger through its sugared key/value API.
type ZapLogger struct {
	log *zap.SugaredLogger
}

func NewZapLogger(l *zap.Logger) *ZapLogger { return &ZapLogger{log: l.Sugar()} }

func (z *ZapLogger) Debug(msg string, fields ...interface{}) { z.log.Debugw(msg, fields...) }
func (z *ZapLogger) Info(msg string, fields ...interface{})  { z.log.Infow(msg, fields...) }
func (z *ZapLogger) Warn(msg string, fields ...interface{})  { z.log.Warnw(msg, fields...) }
func (z *ZapLogger) Error(msg string, fields ...interface{}) { z.log.Errorw(msg, fields...) }

func fieldPair(fields []interface{}, i int) (string, interface{}) {
	if i+1 >= len(fields) {
		return "!BADKEY", fields[i]
	}
	key, ok := fields[i].(string)
	if !ok {
		key = fmt.Sprint(fields[i])
	}
	return key, fields[i+1]
}

var (
	_ core.Logger = (*SlogLogger)(nil)
	_ core.Logger = (*ZerologLogger)(nil)
	_ core.Logger = (*ZapLogger)(nil)
)
