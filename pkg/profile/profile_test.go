package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSentinel(t *testing.T) {
	assert.True(t, Default.IsSentinel())
	assert.False(t, Default.IsDefault())
	assert.Equal(t, "<default>", Default.String())
}

func TestNamedProfiles(t *testing.T) {
	dev := New("dev")
	assert.Equal(t, "dev", dev.Name())
	assert.False(t, dev.IsSentinel())
	assert.False(t, dev.IsDefault())

	// equality is by name only
	assert.Equal(t, New("dev"), dev)
	assert.NotEqual(t, New("prod"), dev)
}

func TestDefaultNamedProfile(t *testing.T) {
	fallback := NewDefault("default")
	assert.True(t, fallback.IsDefault())
	assert.False(t, fallback.IsSentinel())
}

func TestAccepts(t *testing.T) {
	assert.True(t, Accepts([]string{"dev"}, nil), "empty declaration always accepted")
	assert.True(t, Accepts([]string{"dev", "cloud"}, []string{"cloud"}))
	assert.False(t, Accepts([]string{"dev"}, []string{"prod"}))
	assert.True(t, Accepts([]string{"dev"}, []string{"prod", "dev"}))
}

func TestAcceptsNegation(t *testing.T) {
	assert.True(t, Accepts([]string{"dev"}, []string{"!prod"}))
	assert.False(t, Accepts([]string{"prod"}, []string{"!prod"}))
}
