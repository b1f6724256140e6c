// Package fetchbody implements the one-shot body consumption protocol of fetch-style
// requests and responses.
//
// # Overview
//
// A [Body] is content attached to an owner such as a request, a response or an S3
// object. It can be consumed exactly once, as raw bytes, a [Blob], [FormData], a
// JSON value or text. Every consumption returns a [Promise] that settles later, in
// a task on the [Realm]'s [Queue]:
//
//	rlm := fetchbody.NewRealm()
//	owner := fetchbody.NewMixin(fetchbody.BodyFromBytes([]byte(`{"a":1}`)), nil)
//
//	v, err := fetchbody.Await(ctx, rlm.Queue(), owner.JSON(rlm))
//
// # Owners and the Mixin
//
// Anything implementing [Owner] can have its body consumed. Embed [Mixin] in your
// own type to get the consumption methods:
//
//	type Message struct {
//	    fetchbody.Mixin
//	    Subject string
//	}
//
// The five consumption operations are available as functions taking an [Owner]
// and as [Mixin] methods:
//
//   - [ConsumeArrayBuffer] delivers the bytes as an [ArrayBuffer]
//   - [ConsumeBlob] delivers a [Blob] typed with the owner's MIME type essence
//   - [ConsumeFormData] decodes multipart/form-data and application/x-www-form-urlencoded
//   - [ConsumeJSON] parses the bytes into nil, bool, float64, string, []any or map[string]any
//   - [ConsumeText] delivers the bytes as a string, unmodified
//
// Custom conversions use [Consume] with a [ConvertFunc].
//
// # Single Use
//
// A body whose stream is disturbed (read from) or locked (has an active reader) is
// unusable. Consuming it returns a promise that is already rejected with an error
// wrapping [ErrUnusable]; no task is queued and no bytes are read. A body with known
// bytes, as created by [BodyFromBytes], is marked disturbed when consumed so that it
// is single use as well.
//
// # Asynchrony
//
// Promises never settle on the caller's stack. Results are delivered by tasks on the
// realm's [Queue], which runs one task at a time, to completion. Drive the queue with
// [Queue.Run] on a dedicated goroutine, with [Queue.RunPending], or implicitly by
// waiting through [Await]. Streams are drained on their own goroutines; they only
// hand the complete bytes or the failure back to the queue.
//
// # Cloning
//
// [Body.Clone] tees the body's stream. The original body is rebound to one branch and
// the clone reads from the other, so both can be consumed independently. Cloning a
// locked body fails right away, and [Mixin.CloneBody] also refuses disturbed bodies.
// These are the only operations that fail synchronously.
//
// # Error Handling
//
// Rejections carry an [*Error] with a [Code]:
//
//   - [CodeTypeError]: unusable bodies, form data for other MIME types, malformed forms
//   - [CodeSyntaxError]: malformed JSON
//   - [CodeStreamRead]: the underlying stream failed, wrapping the original error
//   - [CodeTee]: the stream could not be teed while cloning
//
// Use [CodeOf] to get the code of any, possibly wrapped, error.
//
// # Observability
//
// [NewRealmWith] accepts a [Logger], an OpenTelemetry trace.TracerProvider and an
// [Observer]. Every consumption gets its own span, is reported to the observer and,
// if rejected, logged. Spans are roots unless the realm carries a parent, as set by
// [Realm.WithContext]:
//
//	form, err := fetchbody.Await(ctx, rlm.Queue(), owner.FormData(rlm.WithContext(r.Context())))
//
// The bodyfx package wires these to zap, an sdk tracer provider and prometheus.
package fetchbody
