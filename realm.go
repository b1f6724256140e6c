package fetchbody

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/advdv/fetchbody"

// Op names a public consumption operation.
type Op string

const (
	OpArrayBuffer Op = "arrayBuffer"
	OpBlob        Op = "blob"
	OpFormData    Op = "formData"
	OpJSON        Op = "json"
	OpText        Op = "text"
)

// Observer can be implemented to record the outcome of every consumption. err is nil
// for fulfilled promises; size is the number of body bytes handed to the converter.
type Observer interface {
	ObserveConsume(op Op, err error, size int, took time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveConsume(Op, error, int, time.Duration) {}

// Realm is the execution context every operation runs in: settlements are delivered
// on its queue and its logger, tracer and observer see every consumption.
type Realm struct {
	ctx    context.Context
	queue  *Queue
	logs   Logger
	tracer trace.Tracer
	obs    Observer
}

// NewRealm creates a realm with a fresh queue, the standard logger and no tracing.
func NewRealm() *Realm {
	logs := NewStdLogger(nil)
	return NewRealmWith(NewQueue(logs), logs, noop.NewTracerProvider(), nil)
}

// NewRealmWith creates a realm with custom settings. A nil logger logs to the
// standard logger, a nil queue is replaced by a fresh one, a nil tracer provider
// disables tracing and a nil observer discards observations.
func NewRealmWith(q *Queue, logs Logger, tp trace.TracerProvider, obs Observer) *Realm {
	if logs == nil {
		logs = NewStdLogger(nil)
	}
	if q == nil {
		q = NewQueue(logs)
	}
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	if obs == nil {
		obs = nopObserver{}
	}

	return &Realm{
		ctx:    context.Background(),
		queue:  q,
		logs:   logs,
		tracer: tp.Tracer(tracerName),
		obs:    obs,
	}
}

// Queue returns the queue settlements are delivered on.
func (r *Realm) Queue() *Queue { return r.queue }

// Logger returns the realm's logger.
func (r *Realm) Logger() Logger { return r.logs }

// WithContext returns a shallow copy of the realm whose consumption spans are
// children of the span in ctx. The copy shares the queue, logger, tracer and
// observer with r.
func (r *Realm) WithContext(ctx context.Context) *Realm {
	if ctx == nil {
		panic("fetchbody: nil context")
	}
	r2 := *r
	r2.ctx = ctx
	return &r2
}

// Context returns the realm's parent context for consumption spans.
func (r *Realm) Context() context.Context { return r.ctx }
