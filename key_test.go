package flowdi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowra/flowdi"
)

func TestParseKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		segments []string
		err      error
	}{
		{input: "logger", segments: []string{"logger"}},
		{input: "modules.users.services.main", segments: []string{"modules", "users", "services", "main"}},
		{input: "", err: flowdi.ErrEmptyKey},
		{input: ".a", err: flowdi.ErrEmptySegment},
		{input: "a.", err: flowdi.ErrEmptySegment},
		{input: "a..b", err: flowdi.ErrEmptySegment},
		{input: " a", err: flowdi.ErrInvalidSegment},
		{input: "a. b", err: flowdi.ErrInvalidSegment},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			k, err := flowdi.ParseKey(tt.input)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.ErrorIs(t, err, flowdi.ErrInvalidRegistration)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.segments, k.Segments())
			assert.Equal(t, tt.input, k.String())
			assert.Equal(t, len(tt.segments), k.Len())
		})
	}
}

func TestKey_Navigation(t *testing.T) {
	t.Parallel()

	k := flowdi.MustParseKey("modules.users.services.main")
	prefix := flowdi.MustParseKey("modules.users")

	assert.Equal(t, "main", k.Last())
	assert.Equal(t, "modules.users.services", k.Parent().String())
	assert.True(t, flowdi.MustParseKey("a").Parent().IsRoot())
	assert.Equal(t, "", flowdi.Key{}.Last())

	assert.True(t, k.HasPrefix(prefix))
	assert.False(t, prefix.HasPrefix(k))
	assert.False(t, k.HasPrefix(flowdi.MustParseKey("modules.welcome")))

	rel, ok := k.Relative(prefix)
	require.True(t, ok)
	assert.Equal(t, "services.main", rel.String())

	_, ok = prefix.Relative(k)
	assert.False(t, ok)

	joined := prefix.Join(flowdi.MustParseKey("routes"))
	assert.Equal(t, "modules.users.routes", joined.String())
	assert.Equal(t, "modules.users.controllers", prefix.Child("controllers").String())
	assert.Equal(t, "modules.users", prefix.String(), "Join and Child do not mutate the receiver")

	assert.True(t, k.Equal(flowdi.MustParseKey("modules.users.services.main")))
	assert.False(t, k.Equal(prefix))
}

func TestKey_SegmentsAreCopied(t *testing.T) {
	t.Parallel()

	k := flowdi.MustParseKey("a.b")
	segs := k.Segments()
	segs[0] = "z"
	assert.Equal(t, "a.b", k.String())
}

func TestNewKey(t *testing.T) {
	t.Parallel()

	k, err := flowdi.NewKey("modules", "users")
	require.NoError(t, err)
	assert.Equal(t, "modules.users", k.String())

	_, err = flowdi.NewKey("modules", "users.services")
	assert.ErrorIs(t, err, flowdi.ErrInvalidSegment)

	_, err = flowdi.NewKey("modules", "")
	assert.ErrorIs(t, err, flowdi.ErrEmptySegment)

	assert.Panics(t, func() { flowdi.MustParseKey("") })
}
