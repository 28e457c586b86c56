package blast

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verboseLogging bool

	logLevel = zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		// true: log message at this level
		// false: skip message at this level
		if verboseLogging {
			return level >= zapcore.DebugLevel
		}
		return level >= zapcore.InfoLevel
	})

	l = zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			logLevel,
		),
	)

	// rlog is the default sugared logger
	rlog = l.Sugar()
)

// SetVerboseLogging turns on debug logging, including every command that's run.
func SetVerboseLogging() {
	verboseLogging = true
}

// Logger returns the package logger so commands log the same way.
func Logger() *zap.SugaredLogger {
	return rlog
}
