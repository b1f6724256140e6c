package bodyfxtest

import "testing"

// Env provides a chainable builder for setting [bodyfx.BaseEnvironment] env vars
// via t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets all [bodyfx.BaseEnvironment] env vars to test defaults.
//
// Defaults:
//   - FB_SERVICE_NAME: "test"
//   - FB_LOG_LEVEL: "debug"
//   - FB_OTEL_EXPORTER: "none"
//   - FB_METRICS_NAMESPACE: "test"
func SetBaseEnv(t testing.TB) *Env {
	t.Helper()
	t.Setenv("FB_SERVICE_NAME", "test")
	t.Setenv("FB_LOG_LEVEL", "debug")
	t.Setenv("FB_OTEL_EXPORTER", "none")
	t.Setenv("FB_METRICS_NAMESPACE", "test")
	return &Env{t: t}
}

// ServiceName overrides FB_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("FB_SERVICE_NAME", name)
	return e
}

// OtelExporter overrides FB_OTEL_EXPORTER.
func (e *Env) OtelExporter(exporter string) *Env {
	e.t.Helper()
	e.t.Setenv("FB_OTEL_EXPORTER", exporter)
	return e
}

// MetricsNamespace overrides FB_METRICS_NAMESPACE.
func (e *Env) MetricsNamespace(ns string) *Env {
	e.t.Helper()
	e.t.Setenv("FB_METRICS_NAMESPACE", ns)
	return e
}

// AWS sets AWS_REGION and static test credentials so the AWS config loads
// without touching the network.
func (e *Env) AWS(region string) *Env {
	e.t.Helper()
	e.t.Setenv("AWS_REGION", region)
	e.t.Setenv("AWS_ACCESS_KEY_ID", "test")
	e.t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	return e
}
