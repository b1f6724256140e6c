package bodyfx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/advdv/fetchbody"
	"github.com/advdv/fetchbody/bodyfx"
	"github.com/advdv/fetchbody/bodyfx/bodyfxtest"
	"github.com/advdv/fetchbody/httpbody"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

type greeter struct{ greeting string }

func TestAppDrivesQueue(t *testing.T) {
	bodyfxtest.SetBaseEnv(t).MetricsNamespace("app")
	t.Setenv("GREETING", "hello")

	var (
		rlm      *fetchbody.Realm
		gatherer prometheus.Gatherer
		g        *greeter
	)

	app := bodyfxtest.New[appEnv](t,
		func(r *fetchbody.Realm, gath prometheus.Gatherer, gr *greeter) {
			rlm, gatherer, g = r, gath, gr
		},
		bodyfx.WithFx(fx.Provide(func(e appEnv) *greeter { return &greeter{greeting: e.Greeting} })),
	)

	app.RequireStart()
	t.Cleanup(app.RequireStop)
	require.Equal(t, "hello", g.greeting)
	require.Same(t, rlm, app.Realm(), "the test app holds the graph's realm")

	owner := fetchbody.NewMixin(fetchbody.BodyFromReader(strings.NewReader(g.greeting+" world"), nil), nil)
	text, err := bodyfxtest.Await(app, owner.Text(rlm))
	require.NoError(t, err)
	require.Equal(t, "hello world", text)

	_, err = bodyfxtest.Await(app, owner.Text(rlm))
	require.ErrorIs(t, err, fetchbody.ErrUnusable)

	require.NoError(t, testutil.GatherAndCompare(gatherer, strings.NewReader(`
# HELP app_consume_total Total number of body consumptions by outcome
# TYPE app_consume_total counter
app_consume_total{op="text",outcome="TypeError"} 1
app_consume_total{op="text",outcome="fulfilled"} 1
`), "app_consume_total"))
}

func TestAppStartStop(t *testing.T) {
	bodyfxtest.SetBaseEnv(t)
	t.Setenv("GREETING", "hi")

	app := bodyfx.NewApp[appEnv](func(*fetchbody.Realm) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestAppProvidesTransport(t *testing.T) {
	bodyfxtest.SetBaseEnv(t)
	t.Setenv("GREETING", "hi")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}))
	t.Cleanup(srv.Close)

	var rt http.RoundTripper
	app := bodyfxtest.New[appEnv](t, func(tr http.RoundTripper) { rt = tr })
	app.RequireStart()
	t.Cleanup(app.RequireStop)

	var res httpbody.Response
	require.NoError(t, httpbody.NewRequest(rt, srv.URL).Handle(httpbody.Buffer(&res)).Fetch(context.Background()))

	text, err := bodyfxtest.Await(app, res.Text(app.Realm()))
	require.NoError(t, err)
	require.Equal(t, "pong", text)
}

func TestAppAWSClients(t *testing.T) {
	bodyfxtest.SetBaseEnv(t).AWS("us-east-1")
	t.Setenv("GREETING", "hi")

	var client *s3.Client
	app := bodyfxtest.New[appEnv](t,
		func(c *s3.Client) { client = c },
		bodyfx.WithAWSClient(func(cfg aws.Config) *s3.Client { return s3.NewFromConfig(cfg) }),
	)
	app.RequireStart()
	t.Cleanup(app.RequireStop)

	require.Equal(t, "us-east-1", client.Options().Region)
}

func TestAWSClientProviderForRegion(t *testing.T) {
	var client *s3.Client
	fxtest.New(t,
		fx.NopLogger,
		fx.Supply(aws.Config{Region: "us-east-1"}),
		bodyfx.AWSClientProvider(func(cfg aws.Config) *s3.Client {
			return s3.NewFromConfig(cfg)
		}, bodyfx.ForRegion("eu-west-1")),
		fx.Invoke(func(c *s3.Client) { client = c }),
	).RequireStart().RequireStop()

	require.Equal(t, "eu-west-1", client.Options().Region)
}
