package flowdi_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/testutil"
)

func TestResolveGeneric(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	require.NoError(t, c.Register("port", 8080))

	port, err := flowdi.Resolve[int](c, "port")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	_, err = flowdi.Resolve[string](c, "port")
	var tErr *flowdi.TypeMismatchError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, "port", tErr.Key)
	assert.Equal(t, "string", tErr.Expected.String())
	assert.Equal(t, "int", tErr.Actual.String())

	_, err = flowdi.Resolve[int](c, "missing")
	assert.True(t, flowdi.IsNotFound(err))

	assert.Panics(t, func() { flowdi.MustResolve[string](c, "port") })
	assert.Equal(t, 8080, flowdi.MustResolve[int](c, "port"))
}

func TestOptional(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	require.NoError(t, c.Register("name", "flowdi"))
	require.NoError(t, c.Register("broken", func(flowdi.Locator) (any, error) {
		return nil, testutil.ErrIntentional
	}))

	v, ok, err := flowdi.Optional[string](c, "name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "flowdi", v)

	v, ok, err = flowdi.Optional[string](c, "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)

	_, ok, err = flowdi.Optional[string](c, "broken")
	assert.False(t, ok)
	assert.ErrorIs(t, err, testutil.ErrIntentional)
}

func TestProvide(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	require.NoError(t, c.Register("dep", &TDependency{Name: "dep"}))
	require.NoError(t, c.Register("svc", flowdi.Provide("dep", func(d *TDependency) (any, error) {
		return &TServiceWithDeps{Dep: d}, nil
	})))
	require.NoError(t, c.Register("wrong", flowdi.Provide("dep", func(s *TService) (any, error) {
		return s, nil
	})))

	svc := testutil.AssertResolvable[*TServiceWithDeps](t, c, "svc")
	assert.Same(t, testutil.AssertResolvable[*TDependency](t, c, "dep"), svc.Dep)
	assert.Equal(t, []string{"dep"}, c.Dependencies("svc"))

	_, err := c.Resolve("wrong")
	var tErr *flowdi.TypeMismatchError
	assert.ErrorAs(t, err, &tErr)
}
