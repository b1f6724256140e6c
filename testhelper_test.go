package fetchbody_test

import (
	"context"
	"testing"
	"time"

	"github.com/advdv/fetchbody"
	"github.com/stretchr/testify/require"
)

func newRealm(tb testing.TB) (*fetchbody.Realm, *fetchbody.TestLogger) {
	tb.Helper()
	logs := fetchbody.NewTestLogger(tb)
	return fetchbody.NewRealmWith(fetchbody.NewQueue(logs), logs, nil, nil), logs
}

func newOwner(tb testing.TB, body *fetchbody.Body, mimeType string) *fetchbody.Mixin {
	tb.Helper()

	var mt fetchbody.MimeType
	if mimeType != "" {
		parsed, err := fetchbody.ParseMIMEType(mimeType)
		require.NoError(tb, err)
		mt = parsed
	}

	owner := fetchbody.NewMixin(body, mt)
	return &owner
}

func await[T any](tb testing.TB, rlm *fetchbody.Realm, p *fetchbody.Promise[T]) (T, error) {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	v, err := fetchbody.Await(ctx, rlm.Queue(), p)
	require.NotErrorIs(tb, err, context.DeadlineExceeded, "promise did not settle in time")

	return v, err
}
