package demo_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/bootstrap"
	"github.com/flowra/flowdi/internal/demo"
	"github.com/flowra/flowdi/internal/testutil"
)

func buildApp(t *testing.T) *flowdi.Container {
	t.Helper()

	c, err := bootstrap.Build(bootstrap.Options{
		Definitions: demo.Definitions(),
		Manifest:    demo.DefaultManifest(),
		LogOutput:   &bytes.Buffer{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })
	return c
}

func TestFormatUptime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{59 * time.Second, "59 seconds"},
		{time.Minute, "1 minute"},
		{time.Hour + 30*time.Second, "1 hour, 30 seconds"},
		{26*time.Hour + 2*time.Minute + time.Second, "1 day, 2 hours, 2 minutes, 1 second"},
		{72 * time.Hour, "3 days"},
		{1500 * time.Millisecond, "1 second"},
		{-time.Second, "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, demo.FormatUptime(tt.d), tt.d.String())
	}
}

func TestDefinitions(t *testing.T) {
	t.Parallel()

	defs := demo.Definitions()
	require.Contains(t, defs, "./Users/users.module")
	require.Contains(t, defs, "./Welcome/welcome.module")
	assert.Equal(t, "users", defs["./Users/users.module"].Name)

	enabled := demo.DefaultManifest().Enabled()
	assert.Len(t, enabled, 2)
}

func TestUsersModule(t *testing.T) {
	t.Parallel()

	c := buildApp(t)

	controller := testutil.AssertResolvable[*demo.UsersController](t, c, "usersController")
	assert.Same(t, controller, testutil.AssertResolvable[*demo.UsersController](t, c, "modules.users.controllers.main"))

	res, err := controller.Store(map[string]any{
		"username": "ada",
		"fullname": "Ada Lovelace",
		"email":    "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "User created successfully", res["message"])

	_, err = controller.Store(map[string]any{"username": "bob"})
	assert.ErrorIs(t, err, demo.ErrValidation)
	assert.ErrorContains(t, err, "missing fullname, email")

	users := controller.Index()
	require.Len(t, users, 1)
	assert.Equal(t, "ada", users[0]["username"])

	// The model writes through the shared database manager.
	db := testutil.AssertResolvable[*bootstrap.DatabaseManager](t, c, bootstrap.KeyDatabaseManager)
	conn, err := db.Connection("default")
	require.NoError(t, err)
	assert.Len(t, conn.All("users"), 1)

	routes := testutil.AssertResolvable[[]demo.Route](t, c, "modules.users.routes")
	assert.Len(t, routes, 2)
	assert.Equal(t, "usersController", routes[0].Controller)
}

func TestWelcomeModule(t *testing.T) {
	t.Parallel()

	c := buildApp(t)

	root := testutil.AssertResolvable[*flowdi.Accessor](t, c, "modules.welcome")
	assert.Equal(t, []string{"queries", "services", "controllers", "routes"}, root.Fields())

	home := testutil.AssertSameInstance(t, c, "homeController", "modules.welcome.controllers.home")
	ctx := home.(*demo.WelcomeController).Index()

	assert.NotEmpty(t, ctx.Environment)
	assert.NotEmpty(t, ctx.GoVersion)
	assert.NotEmpty(t, ctx.Uptime)
	assert.Equal(t, time.Now().Year(), ctx.CurrentYear)

	meta, err := flowdi.ModuleMetas(c)
	require.NoError(t, err)
	assert.True(t, meta["welcome"].HasRoutes)
	assert.Equal(t, "Landing page", meta["welcome"].Manifest.Description)
}
