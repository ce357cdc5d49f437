package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type implLogger struct {
	logger *logrus.Logger
}

// New creates a Logger writing to out. Unknown levels fall back to info,
// format "json" selects the JSON formatter and anything else plain text.
func New(level, format string, out io.Writer) Logger {
	l := logrus.New()
	if out == nil {
		out = os.Stderr
	}
	l.Out = out

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			DisableColors:    true,
			PadLevelText:     true,
			QuoteEmptyFields: true,
		})
	}

	return &implLogger{logger: l}
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() Logger {
	return New("panic", "text", io.Discard)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logrus.DebugLevel, msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logrus.InfoLevel, msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logrus.WarnLevel, msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logrus.ErrorLevel, msg, args...)
}

func (l *implLogger) log(ctx context.Context, level logrus.Level, msg string, args ...any) {
	if !l.logger.IsLevelEnabled(level) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	l.logger.WithContext(ctx).Logf(level, msg, args...)
}
