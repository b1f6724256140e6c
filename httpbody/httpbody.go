// Package httpbody attaches fetchbody bodies to net/http requests and responses.
package httpbody

import (
	"io"
	"net/http"
	"net/url"

	"github.com/advdv/fetchbody"
	"github.com/carlmjohnson/requests"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Response is an HTTP response whose body is consumed through fetchbody.
type Response struct {
	fetchbody.Mixin
	StatusCode int
	Header     http.Header
}

// Request is an HTTP request whose body is consumed through fetchbody.
type Request struct {
	fetchbody.Mixin
	Method string
	URL    *url.URL
	Header http.Header
}

// FromResponse wraps res. The body streams from res.Body, which is closed once it
// was read to the end, failed, or every clone of it was cancelled. Responses to HEAD
// requests, 204 and 304 responses have no body and res.Body is closed right away.
func FromResponse(res *http.Response) *Response {
	out := &Response{StatusCode: res.StatusCode, Header: res.Header}

	var body *fetchbody.Body
	if isNullBodyResponse(res) {
		if res.Body != nil {
			_ = res.Body.Close()
		}
	} else {
		body = fetchbody.BodyFromReader(res.Body, lengthHint(res.ContentLength))
	}

	out.SetBody(body, fetchbody.MIMETypeFromHeader(res.Header))
	return out
}

// FromRequest wraps req, typically on the server side.
func FromRequest(req *http.Request) *Request {
	out := &Request{Method: req.Method, URL: req.URL, Header: req.Header}

	var body *fetchbody.Body
	if req.Body != nil && req.Body != http.NoBody {
		body = fetchbody.BodyFromReader(req.Body, lengthHint(req.ContentLength))
	}

	out.SetBody(body, fetchbody.MIMETypeFromHeader(req.Header))
	return out
}

// Buffer returns a response handler that reads the whole response into dst. The
// body's bytes are then known, so consuming it never blocks on the network.
func Buffer(dst *Response) requests.ResponseHandler {
	return func(res *http.Response) error {
		*dst = Response{StatusCode: res.StatusCode, Header: res.Header}
		if isNullBodyResponse(res) {
			dst.SetBody(nil, fetchbody.MIMETypeFromHeader(res.Header))
			return nil
		}

		data, err := io.ReadAll(res.Body)
		if err != nil {
			return errors.Wrap(err, "buffer response body")
		}

		dst.SetBody(fetchbody.BodyFromBytes(data), fetchbody.MIMETypeFromHeader(res.Header))
		return nil
	}
}

// NewHTTPTransport creates an HTTP RoundTripper instrumented with OpenTelemetry tracing.
func NewHTTPTransport(tp trace.TracerProvider, prop propagation.TextMapPropagator) http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(prop),
	)
}

// NewRequest creates a request builder for baseURL that uses transport t.
func NewRequest(t http.RoundTripper, baseURL string) *requests.Builder {
	return requests.URL(baseURL).Transport(t)
}

func isNullBodyResponse(res *http.Response) bool {
	if res.Body == nil || res.Body == http.NoBody {
		return true
	}
	if res.Request != nil && res.Request.Method == http.MethodHead {
		return true
	}

	return res.StatusCode == http.StatusNoContent || res.StatusCode == http.StatusNotModified
}

func lengthHint(n int64) *int64 {
	if n < 0 {
		return nil
	}

	return lo.ToPtr(n)
}
