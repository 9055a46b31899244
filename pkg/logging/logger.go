package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop().Sugar()

// InitLogging initializes the process-wide logger at the given level.
// Unknown levels fall back to info.
func InitLogging(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	logger = zapLogger.Sugar()
	return nil
}

// Sync flushes buffered log entries
func Sync() {
	_ = logger.Sync()
}

// Debugf logs debug level messages
func Debugf(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}

// Infof logs info level messages
func Infof(format string, v ...interface{}) {
	logger.Infof(format, v...)
}

// Warnf logs warn level messages
func Warnf(format string, v ...interface{}) {
	logger.Warnf(format, v...)
}

// Errorf logs error level messages
func Errorf(format string, v ...interface{}) {
	logger.Errorf(format, v...)
}

// Infow logs an info message with structured key/value pairs
func Infow(msg string, keysAndValues ...interface{}) {
	logger.Infow(msg, keysAndValues...)
}

// Errorw logs an error message with structured key/value pairs
func Errorw(msg string, keysAndValues ...interface{}) {
	logger.Errorw(msg, keysAndValues...)
}
