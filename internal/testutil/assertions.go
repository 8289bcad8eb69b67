package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowra/flowdi"
)

// AssertResolvable resolves key as T and fails the test on error.
func AssertResolvable[T any](t *testing.T, l flowdi.Locator, key string) T {
	t.Helper()
	v, err := flowdi.Resolve[T](l, key)
	require.NoError(t, err, "failed to resolve %q", key)
	return v
}

// AssertNotFound checks that key fails with DependencyNotFound.
func AssertNotFound(t *testing.T, l flowdi.Locator, key string) {
	t.Helper()
	_, err := l.Resolve(key)
	require.Error(t, err)
	assert.True(t, flowdi.IsNotFound(err), "expected not found error for %q, got: %v", key, err)
}

// AssertSameInstance checks that every key resolves to the same value.
func AssertSameInstance(t *testing.T, l flowdi.Locator, keys ...string) any {
	t.Helper()
	require.NotEmpty(t, keys)

	first, err := l.Resolve(keys[0])
	require.NoError(t, err, "failed to resolve %q", keys[0])
	for _, key := range keys[1:] {
		v, err := l.Resolve(key)
		require.NoError(t, err, "failed to resolve %q", key)
		assert.Same(t, first, v, "%q and %q should share an instance", keys[0], key)
	}
	return first
}

// AssertDistinct checks that two resolutions of key return different values.
func AssertDistinct(t *testing.T, l flowdi.Locator, key string) {
	t.Helper()
	a, err := l.Resolve(key)
	require.NoError(t, err)
	b, err := l.Resolve(key)
	require.NoError(t, err)
	assert.NotSame(t, a, b, "%q should build a new instance per call", key)
}

// AssertCircular checks that err is a cycle whose path contains keys.
func AssertCircular(t *testing.T, err error, keys ...string) *flowdi.CircularDependencyError {
	t.Helper()
	var cErr *flowdi.CircularDependencyError
	require.True(t, errors.As(err, &cErr), "expected circular dependency error, got: %v", err)
	for _, key := range keys {
		assert.Contains(t, cErr.Path, key)
	}
	return cErr
}
