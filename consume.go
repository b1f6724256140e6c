package fetchbody

import (
	"time"

	"github.com/advdv/fetchbody/stream"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Owner is anything a body can be attached to, such as a request or a response.
// Body returns nil when there is no body; MIMEType returns nil when the MIME type is
// absent or could not be parsed.
type Owner interface {
	Body() *Body
	MIMEType() MimeType
}

// ConvertFunc turns the complete bytes of a body into a value.
type ConvertFunc[T any] func(data []byte) (T, error)

// IsUnusable reports whether the owner has a body whose stream is disturbed or locked.
func IsUnusable(owner Owner) bool {
	body := owner.Body()
	return body != nil && (body.Stream().IsDisturbed() || body.Stream().IsLocked())
}

// BodyStream returns the stream of the owner's body, or nil without a body.
func BodyStream(owner Owner) *stream.Stream {
	if body := owner.Body(); body != nil {
		return body.Stream()
	}

	return nil
}

// BodyUsed reports whether the owner has a body whose stream is disturbed.
func BodyUsed(owner Owner) bool {
	body := owner.Body()
	return body != nil && body.Stream().IsDisturbed()
}

// Consume reads the owner's body and converts the bytes with convert. The returned
// promise always settles in a task on the realm's queue, never before Consume
// returned, except for unusable bodies whose promise is returned already rejected.
// Failures never escape as errors or panics: they reject the promise.
func Consume[T any](rlm *Realm, owner Owner, op Op, convert ConvertFunc[T]) *Promise[T] {
	start := time.Now()
	_, span := rlm.tracer.Start(rlm.ctx, "fetchbody."+string(op),
		trace.WithAttributes(attribute.String("fetchbody.op", string(op))))

	// finish never panics, so the settlement that follows it always happens.
	finish := func(err error, size int) {
		defer func() {
			if r := recover(); r != nil {
				rlm.logs.LogTaskPanic(r)
			}
		}()
		defer span.End()

		rlm.obs.ObserveConsume(op, err, size, time.Since(start))

		span.SetAttributes(attribute.Int("fetchbody.size", size))
		if err != nil {
			rlm.logs.LogRejection(op, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}

	if IsUnusable(owner) {
		err := NewError(CodeTypeError, errors.Wrapf(ErrUnusable, "%s", op))
		finish(err, 0)

		return RejectedPromise[T](rlm.queue, err)
	}

	promise := NewPromise[T](rlm.queue)

	errorSteps := func(err error) {
		err = NewError(CodeStreamRead, err)
		finish(err, 0)
		promise.Reject(err)
	}

	successSteps := func(data []byte) {
		v, err := runConverter(convert, data)
		finish(err, len(data))
		if err != nil {
			promise.Reject(err)
			return
		}

		promise.Resolve(v)
	}

	body := owner.Body()
	if body == nil {
		rlm.queue.Enqueue(func() { successSteps([]byte{}) })
		return promise
	}

	span.SetAttributes(bodyAttributes(body)...)
	body.FullyRead(successSteps, errorSteps, rlm.queue)

	return promise
}

func runConverter[T any](convert ConvertFunc[T], data []byte) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("converter panicked: %v", r)
		}
	}()

	return convert(data)
}

func bodyAttributes(body *Body) []attribute.KeyValue {
	_, known := body.Source().Bytes()
	attrs := []attribute.KeyValue{
		attribute.String("fetchbody.body_id", body.ID().String()),
		attribute.Bool("fetchbody.known_source", known),
	}

	if n, ok := body.Length(); ok {
		attrs = append(attrs, attribute.Int64("fetchbody.length", n))
	}

	return attrs
}
