package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestResponses(t *testing.T) {
	r := NewResponses()
	r.Set("b", 1)
	r.Set("a", nil)
	r.Set("b", 2)

	assert.Equal(t, []string{"b", "a"}, r.Names(), "overwrite keeps position")
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("c"))

	v, ok := r.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	assert.Equal(t, map[string]any{"b": 2, "a": nil}, r.All())
	assert.Equal(t, map[string]any{"b": 2}, r.Defined())
}

func TestNewSession_OverridesInNameOrder(t *testing.T) {
	s := newTestSession(Options{Overrides: map[string]any{"zeta": 1, "alpha": 2, "mid": 3}})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, s.Responses.Names())
	assert.Equal(t, DefaultMaxPromptAttempts, s.maxAttempts)
}

func TestResolveBlock(t *testing.T) {
	s := newTestSession(Options{})
	content := &yaml.Node{}
	require.NoError(t, yaml.Unmarshal([]byte("a: 1\n"), content))

	s.LoadBlocks([]Block{
		{Name: "present", Content: content.Content[0]},
		{Name: "nothing"},
	})

	text, err := s.ResolveBlock(context.Background(), "present")
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", text)

	text, err = s.ResolveBlock(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Equal(t, "null", text, "a null block is a valid resolution")

	_, err = s.ResolveBlock(context.Background(), "absent")
	assert.Equal(t, CodeBlockNotFound, CodeOf(err))
}
