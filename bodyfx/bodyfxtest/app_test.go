package bodyfxtest_test

import (
	"testing"

	"github.com/advdv/fetchbody"
	"github.com/advdv/fetchbody/bodyfx"
	"github.com/advdv/fetchbody/bodyfx/bodyfxtest"
	"github.com/stretchr/testify/require"
)

func TestAwaitOnAppRealm(t *testing.T) {
	bodyfxtest.SetBaseEnv(t)

	app := bodyfxtest.New[bodyfx.BaseEnvironment](t, func() {})
	app.RequireStart()
	t.Cleanup(app.RequireStop)
	require.NotNil(t, app.Realm())

	owner := fetchbody.NewMixin(fetchbody.BodyFromBytes([]byte(`{"ok":true}`)), nil)
	v, err := bodyfxtest.Await(app, owner.JSON(app.Realm()))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"ok": true}, v)

	_, err = bodyfxtest.Await(app, owner.Text(app.Realm()))
	require.Equal(t, fetchbody.CodeTypeError, fetchbody.CodeOf(err))
}
