package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratumcfg/stratum/pkg/property"
)

func envWith(t *testing.T, pairs map[string]string) *Environment {
	t.Helper()
	layer := property.NewLayer("test")
	for k, v := range pairs {
		layer.Set(k, v)
	}
	stack := property.NewStack()
	require.NoError(t, stack.AddLast(layer))
	return NewWithStack(stack)
}

func TestProfileState(t *testing.T) {
	env := New()
	assert.Empty(t, env.ActiveProfiles())
	assert.Equal(t, []string{"default"}, env.DefaultProfiles())

	env.AddActiveProfile("prod")
	env.AddActiveProfile("prod")
	env.AddActiveProfile("eu")
	assert.Equal(t, []string{"prod", "eu"}, env.ActiveProfiles())

	env.SetActiveProfiles("stage")
	assert.Equal(t, []string{"stage"}, env.ActiveProfiles())

	env.SetDefaultProfiles("fallback")
	assert.Equal(t, []string{"fallback"}, env.DefaultProfiles())
}

func TestAcceptsProfiles(t *testing.T) {
	env := New()

	// Nothing active: the default set stands in.
	assert.True(t, env.AcceptsProfiles("default"))
	assert.False(t, env.AcceptsProfiles("prod"))
	assert.True(t, env.AcceptsProfiles("!prod"))

	env.AddActiveProfile("prod")
	assert.True(t, env.AcceptsProfiles("prod"))
	assert.False(t, env.AcceptsProfiles("default"))
	assert.False(t, env.AcceptsProfiles("!prod"))
	assert.True(t, env.AcceptsProfiles("dev", "prod"))
}

func TestGetPropertyResolvesPlaceholders(t *testing.T) {
	env := envWith(t, map[string]string{
		"host": "localhost",
		"url":  "http://${host}:${port:8080}/",
		"bad":  "${missing}",
	})

	v, ok := env.GetProperty("url")
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8080/", v)

	// Lenient reads keep unresolvable references intact.
	v, ok = env.GetProperty("bad")
	require.True(t, ok)
	assert.Equal(t, "${missing}", v)

	_, ok = env.GetProperty("absent")
	assert.False(t, ok)
}

func TestTypedAccessors(t *testing.T) {
	env := envWith(t, map[string]string{
		"enabled": "true",
		"broken":  "not-a-bool",
		"list":    "a, b ,c",
	})

	assert.True(t, env.GetBool("enabled", false))
	assert.False(t, env.GetBool("missing", false))
	assert.True(t, env.GetBool("broken", true))
	assert.Equal(t, []string{"a", "b", "c"}, env.GetStringSlice("list"))
	assert.Nil(t, env.GetStringSlice("missing"))
	assert.Equal(t, "fallback", env.GetString("missing", "fallback"))
	assert.True(t, env.ContainsKey("enabled"))
}

func TestGetStringSliceIndexed(t *testing.T) {
	env := envWith(t, map[string]string{
		"list[0]":   "a",
		"list[1]":   "b",
		"scalar":    "x,y",
		"scalar[0]": "ignored",
	})

	assert.Equal(t, []string{"a", "b"}, env.GetStringSlice("list"))
	// A scalar at the key itself wins over indexed children.
	assert.Equal(t, []string{"x", "y"}, env.GetStringSlice("scalar"))
}

func TestReservedDefaultProfileNotActivatable(t *testing.T) {
	env := New()
	env.AddActiveProfile("default")
	assert.Empty(t, env.ActiveProfiles())

	env.SetActiveProfiles("default", "prod")
	assert.Equal(t, []string{"prod"}, env.ActiveProfiles())
}

func TestBind(t *testing.T) {
	env := envWith(t, map[string]string{
		"server.port": "8080",
		"server.host": "0.0.0.0",
	})

	var cfg struct {
		Port int    `mapstructure:"port"`
		Host string `mapstructure:"host"`
	}
	require.NoError(t, env.Bind("server", &cfg))
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
}
