package flowdi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/testutil"
)

func usersAccessor(t *testing.T) (*flowdi.Container, *flowdi.Accessor) {
	t.Helper()

	c := testutil.NewContainerBuilder(t).
		WithScope("modules.users", flowdi.Registrations{
			"services": flowdi.Registrations{
				"main":  value(&TService{ID: "users"}),
				"audit": value(&TService{ID: "audit"}),
			},
			"limits": flowdi.Registrations{"max": 10},
		}).
		Build()

	return c, testutil.AssertResolvable[*flowdi.Accessor](t, c, "modules.users")
}

func TestAccessor(t *testing.T) {
	t.Parallel()

	c, root := usersAccessor(t)

	assert.Equal(t, "users", root.Name())
	assert.Equal(t, []string{"limits", "services"}, root.Fields())
	assert.Equal(t, 2, root.Len())
	assert.True(t, root.Has("services"))
	assert.False(t, root.Has("services.main"))
	assert.Equal(t, "users{limits, services}", root.String())

	key, ok := root.Key("services")
	assert.True(t, ok)
	assert.Equal(t, "modules.users.services", key)
	_, ok = root.Key("nope")
	assert.False(t, ok)

	fields := root.Fields()
	fields[0] = "mutated"
	assert.Equal(t, []string{"limits", "services"}, root.Fields())

	services, err := root.Get("services")
	require.NoError(t, err)
	assert.Same(t, testutil.AssertResolvable[*flowdi.Accessor](t, c, "modules.users.services"), services)

	limit, err := flowdi.Field[int](root, "limits.max")
	require.NoError(t, err)
	assert.Equal(t, 10, limit)

	self, err := root.Lookup("")
	require.NoError(t, err)
	assert.Same(t, root, self)
}

func TestAccessor_Errors(t *testing.T) {
	t.Parallel()

	_, root := usersAccessor(t)

	_, err := root.Get("controllers")
	assert.True(t, flowdi.IsNotFound(err))
	assert.Contains(t, err.Error(), "modules.users.controllers")

	_, err = root.Lookup("services.missing")
	assert.True(t, flowdi.IsNotFound(err))
	assert.Contains(t, err.Error(), "modules.users.services.missing")

	// limits.max is a value, not an accessor, so it cannot be walked into.
	_, err = root.Lookup("limits.max.deeper")
	assert.True(t, flowdi.IsNotFound(err))

	_, err = flowdi.Field[string](root, "limits.max")
	var tErr *flowdi.TypeMismatchError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "modules.users.limits.max", tErr.Key)

	assert.Panics(t, func() { root.MustGet("controllers") })
	assert.NotPanics(t, func() { root.MustGet("services") })
}

func TestAccessor_SeesReplacedFields(t *testing.T) {
	t.Parallel()

	c, root := usersAccessor(t)
	section := testutil.AssertResolvable[*flowdi.Accessor](t, c, "modules.users.services")

	replacement := &TService{ID: "replacement"}
	require.NoError(t, c.Register("modules.users.services.main", replacement))

	got, err := section.Get("main")
	require.NoError(t, err)
	assert.Same(t, replacement, got)

	viaRoot, err := root.Lookup("services.main")
	require.NoError(t, err)
	assert.Same(t, replacement, viaRoot)
}
