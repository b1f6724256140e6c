package bodyfx

import (
	"context"

	"github.com/advdv/fetchbody"
	"github.com/advdv/fetchbody/httpbody"
	"github.com/advdv/fetchbody/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// FxOptions returns the options of the app's dependency graph: environment, logger,
// tracing, an instrumented http.RoundTripper, metrics, queue and realm. The invoke function can request any
// type provided by the graph, most commonly *fetchbody.Realm.
func FxOptions[E Environment](invoke any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	baseOpts := make([]fx.Option, 0, 14+len(cfg.FxOptions))
	baseOpts = append(baseOpts, []fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(func(e E) (*zap.Logger, error) { return NewLogger(e) }),
		fx.Provide(NewZapLogger),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Provide(httpbody.NewHTTPTransport),
		fx.Provide(provideAWSConfig),
		fx.Provide(NewRegistry),
		fx.Provide(func(r *prometheus.Registry) prometheus.Gatherer { return r }),
		fx.Provide(newCollector),
		fx.Provide(func(c *metrics.Collector) fetchbody.Observer { return c }),
		fx.Provide(fetchbody.NewQueue),
		fx.Provide(newRealm),
		fx.Invoke(runQueueHook),
		fx.Invoke(invoke),
	}...)

	return append(baseOpts, cfg.FxOptions...)
}

// NewApp creates an app that drives a realm's queue for as long as it runs.
//
// Example:
//
//	bodyfx.NewApp[Env](func(rlm *fetchbody.Realm, h *Handlers) {
//	    h.Bind(rlm)
//	},
//	    bodyfx.WithFx(fx.Provide(NewHandlers)),
//	).Run()
func NewApp[E Environment](invoke any, opts ...Option) *App {
	return &App{
		app: fx.New(FxOptions[E](invoke, opts...)...),
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application with the given context.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}

func newRealm(q *fetchbody.Queue, logs fetchbody.Logger, tp trace.TracerProvider, obs fetchbody.Observer) *fetchbody.Realm {
	return fetchbody.NewRealmWith(q, logs, tp, obs)
}

// runQueueHook drives the queue on its own goroutine between start and stop.
func runQueueHook(lc fx.Lifecycle, q *fetchbody.Queue, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := q.Run(ctx); err != nil {
					logger.Error("queue stopped", zap.Error(err))
				}
			}()

			logger.Info("queue started")
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()

			select {
			case <-done:
				logger.Info("queue stopped", zap.Int("pending", q.Len()))
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
