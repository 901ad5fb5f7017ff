package hooks

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Skryldev/recipebook/core"
)

// NewLogger builds the core.Logger for a log format and level, writing to w.
// "console" is zerolog's human-readable writer, "json" plain zerolog JSON and
// "zap" zap's production JSON encoder. The returned flush func must be called
// before exit.
func NewLogger(format, level string, w io.Writer) (core.Logger, func() error, error) {
	noop := func() error { return nil }

	switch format {
	case "console", "json":
		lvl, err := zerolog.ParseLevel(level)
		if err != nil || level == "" {
			return nil, noop, fmt.Errorf("invalid log level %q", level)
		}
		out := w
		if format == "console" {
			out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
		}
		return NewZerologLogger(zerolog.New(out).Level(lvl).With().Timestamp().Logger()), noop, nil

	case "zap":
		lvl, err := zapcore.ParseLevel(level)
		if err != nil || level == "" {
			return nil, noop, fmt.Errorf("invalid log level %q", level)
		}
		zc := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			lvl,
		)
		l := zap.New(zc)
		return NewZapLogger(l), l.Sync, nil
	}
	return nil, noop, fmt.Errorf("unknown log format %q", format)
}
