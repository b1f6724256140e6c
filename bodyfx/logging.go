package bodyfx

import (
	"github.com/advdv/fetchbody"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment.
// FB_LOG_LEVEL controls the level (debug, info, warn, error).
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build(zap.Fields(zap.String("service", env.serviceName())))
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogRejection(op fetchbody.Op, err error) {
	l.Logger.Debug("body consumption rejected",
		zap.String("op", string(op)),
		zap.Stringer("code", fetchbody.CodeOf(err)),
		zap.Error(err))
}

func (l zapLogger) LogTaskPanic(recovered any) {
	l.Logger.Error("queued task panicked", zap.Any("recovered", recovered))
}

// NewZapLogger adapts l to the [fetchbody.Logger] interface.
func NewZapLogger(l *zap.Logger) fetchbody.Logger {
	return zapLogger{l.Named("fetchbody").Named("bodyfx")}
}
