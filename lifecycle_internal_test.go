package flowdi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCloser struct{ closes int }

func (c *countingCloser) Close() error {
	c.closes++
	return nil
}

func TestLifecycleManager_Track(t *testing.T) {
	m := newLifecycleManager()

	shared := &countingCloser{}
	m.track("cacheManager", shared)
	m.track("redisManager", shared)
	m.track("plain", "not disposable")
	m.track("other", &countingCloser{})

	assert.Equal(t, 2, m.count())

	require.NoError(t, m.dispose(context.Background()))
	assert.Equal(t, 1, shared.closes)
	assert.Equal(t, 0, m.count())

	require.NoError(t, m.dispose(context.Background()), "disposing twice is harmless")
	assert.Equal(t, 1, shared.closes)
}
