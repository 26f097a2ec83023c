// Package monitoring holds the process-wide diagnostic loggers used by the
// analysis packages. Library code calls Logf and Debugf; the CLI decides
// where the output goes.
package monitoring

import (
	"fmt"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger or UseZap.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf receives detail that is only useful when diagnosing a run. It is a
// no-op until UseZap installs a logger.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces Logf. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// NewZapLogger builds the production zap configuration, lowered to debug
// level when verbose is set.
func NewZapLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// UseZap routes Logf to l at info level and Debugf at debug level.
func UseZap(l *zap.Logger) {
	if l == nil {
		SetLogger(nil)
		Debugf = func(string, ...interface{}) {}
		return
	}
	s := l.Sugar()
	Logf = s.Infof
	Debugf = s.Debugf
}
