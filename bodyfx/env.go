package bodyfx

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	serviceName() string
	logLevel() zapcore.Level
	otelExporter() string
	metricsNamespace() string
}

// BaseEnvironment contains the environment variables every app reads.
// Embed this in your custom environment struct.
type BaseEnvironment struct {
	ServiceName      string        `env:"FB_SERVICE_NAME" envDefault:"fetchbody"`
	LogLevel         zapcore.Level `env:"FB_LOG_LEVEL" envDefault:"info"`
	OtelExporter     string        `env:"FB_OTEL_EXPORTER" envDefault:"stdout"`
	MetricsNamespace string        `env:"FB_METRICS_NAMESPACE" envDefault:"fetchbody"`
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) otelExporter() string {
	return e.OtelExporter
}

func (e BaseEnvironment) metricsNamespace() string {
	return e.MetricsNamespace
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}
		return e, nil
	}
}
