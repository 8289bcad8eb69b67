package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowra/flowdi"
)

// ContainerBuilder provides a fluent interface for building test containers.
// The container is closed when the test ends.
type ContainerBuilder struct {
	t *testing.T
	c *flowdi.Container
}

// NewContainerBuilder creates a builder over a new container.
func NewContainerBuilder(t *testing.T, opts ...flowdi.Option) *ContainerBuilder {
	t.Helper()
	c := flowdi.New(opts...)
	t.Cleanup(func() {
		assert.NoError(t, c.Close())
	})
	return &ContainerBuilder{t: t, c: c}
}

// With registers value under key.
func (b *ContainerBuilder) With(key string, value any, opts ...flowdi.RegisterOption) *ContainerBuilder {
	b.t.Helper()
	require.NoError(b.t, b.c.Register(key, value, opts...))
	return b
}

// WithAll registers every top-level key of regs.
func (b *ContainerBuilder) WithAll(regs flowdi.Registrations) *ContainerBuilder {
	b.t.Helper()
	require.NoError(b.t, b.c.RegisterAll(regs))
	return b
}

// WithScope registers regs in a scope and finalizes it.
func (b *ContainerBuilder) WithScope(prefix string, regs flowdi.Registrations) *ContainerBuilder {
	b.t.Helper()
	s, err := b.c.CreateScope(prefix)
	require.NoError(b.t, err)
	require.NoError(b.t, s.Register(regs))
	require.NoError(b.t, s.Finalize())
	return b
}

// Build returns the container.
func (b *ContainerBuilder) Build() *flowdi.Container {
	return b.c
}
