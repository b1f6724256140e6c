// Package bodyfxtest provides test helpers for bodyfx applications.
//
// New builds the same DI graph as [bodyfx.NewApp] on an [fxtest.App], which fails
// the test on DI errors, and keeps hold of the graph's realm so consumptions can be
// awaited without wiring it through the invoke function:
//
//	bodyfxtest.SetBaseEnv(t)
//	app := bodyfxtest.New[Env](t, func() {})
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
//
//	text, err := bodyfxtest.Await(app, owner.Text(app.Realm()))
package bodyfxtest

import (
	"context"
	"testing"
	"time"

	"github.com/advdv/fetchbody"
	"github.com/advdv/fetchbody/bodyfx"
	"github.com/cockroachdb/errors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// AwaitTimeout bounds how long [Await] waits for a promise to settle.
var AwaitTimeout = 5 * time.Second

// App embeds *fxtest.App for testing bodyfx applications.
type App struct {
	*fxtest.App

	tb  testing.TB
	rlm *fetchbody.Realm
}

// New creates a test app with the same DI graph as [bodyfx.NewApp].
func New[E bodyfx.Environment](tb testing.TB, invoke any, opts ...bodyfx.Option) *App {
	app := &App{tb: tb}
	opts = append(opts, bodyfx.WithFx(fx.Populate(&app.rlm)))
	app.App = fxtest.New(tb, bodyfx.FxOptions[E](invoke, opts...)...)

	return app
}

// Realm returns the realm of the app's graph.
func (a *App) Realm() *fetchbody.Realm { return a.rlm }

// Await waits for p on the app's queue and fails the test when p does not settle
// within [AwaitTimeout].
func Await[T any](app *App, p *fetchbody.Promise[T]) (T, error) {
	app.tb.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), AwaitTimeout)
	defer cancel()

	v, err := fetchbody.Await(ctx, app.rlm.Queue(), p)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
		app.tb.Fatalf("bodyfxtest: promise did not settle within %s", AwaitTimeout)
	}

	return v, err
}
