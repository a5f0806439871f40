package filter

import (
	"testing"

	"github.com/magiconair/properties"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratumcfg/stratum/pkg/errors"
	"github.com/stratumcfg/stratum/pkg/manifest"
)

type fakeEnv struct {
	keys     map[string]string
	profiles map[string]bool
}

func (e *fakeEnv) ContainsKey(key string) bool {
	_, ok := e.keys[key]
	return ok
}

func (e *fakeEnv) GetProperty(key string) (string, bool) {
	v, ok := e.keys[key]
	return v, ok
}

func (e *fakeEnv) AcceptsProfiles(declared ...string) bool {
	for _, p := range declared {
		if e.profiles[p] {
			return true
		}
	}
	return false
}

type maskFilter struct {
	name string
	keep map[string]bool
	seen Context
}

func (f *maskFilter) Name() string         { return f.name }
func (f *maskFilter) Requires() Capability { return CapEnvironment }
func (f *maskFilter) Inject(ctx Context)   { f.seen = ctx }

func (f *maskFilter) Match(ids []string, _ *manifest.Metadata) []bool {
	out := make([]bool, len(ids))
	for i, id := range ids {
		out[i] = f.keep[id]
	}
	return out
}

type brokenFilter struct{}

func (brokenFilter) Name() string                              { return "broken" }
func (brokenFilter) Requires() Capability                      { return 0 }
func (brokenFilter) Inject(Context)                            {}
func (brokenFilter) Match([]string, *manifest.Metadata) []bool { return []bool{true} }

func metaFromProps(t *testing.T, pairs map[string]string) *manifest.Metadata {
	t.Helper()
	props := properties.NewProperties()
	for k, v := range pairs {
		_, _, err := props.Set(k, v)
		require.NoError(t, err)
	}
	return manifest.NewMetadata(props)
}

func TestChainIntersectsFilters(t *testing.T) {
	f1 := &maskFilter{name: "one", keep: map[string]bool{"a": true, "b": true, "d": true}}
	f2 := &maskFilter{name: "two", keep: map[string]bool{"a": true, "c": true, "d": true}}

	chain := NewChain(Context{Environment: &fakeEnv{}}, f1, f2)
	got, err := chain.Apply([]string{"a", "b", "c", "d"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, got)
}

func TestChainFastPathKeepsInputSlice(t *testing.T) {
	f := &maskFilter{name: "all", keep: map[string]bool{"a": true, "b": true}}
	ids := []string{"a", "b"}

	chain := NewChain(Context{}, f)
	got, err := chain.Apply(ids, nil)
	require.NoError(t, err)
	assert.Same(t, &ids[0], &got[0])
}

func TestChainEmptyFilters(t *testing.T) {
	chain := NewChain(Context{})
	got, err := chain.Apply([]string{"a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

func TestChainRejectsMismatchedResult(t *testing.T) {
	chain := NewChain(Context{}, brokenFilter{})
	_, err := chain.Apply([]string{"a", "b"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))
}

func TestChainMasksContext(t *testing.T) {
	env := &fakeEnv{}
	f := &maskFilter{name: "m", keep: map[string]bool{"a": true}}

	chain := NewChain(Context{Environment: env, Registry: fakeRegistry{}}, f)
	_, err := chain.Apply([]string{"a"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, f.seen.Environment)
	assert.Nil(t, f.seen.Registry) // not requested
}

type fakeRegistry struct{}

func (fakeRegistry) Known(string) bool { return true }

func TestRequiresKeyFilter(t *testing.T) {
	meta := metaFromProps(t, map[string]string{
		"db.requires":  "db.url",
		"web.requires": "server.port, server.host",
	})
	env := &fakeEnv{keys: map[string]string{"db.url": "x", "server.port": "8080"}}

	f := NewRequiresKeyFilter()
	f.Inject(Context{Environment: env})
	got := f.Match([]string{"db", "web", "cache"}, meta)
	assert.Equal(t, []bool{true, false, true}, got)
}

func TestProfileFilter(t *testing.T) {
	meta := metaFromProps(t, map[string]string{
		"db.profile":  "prod",
		"dev.profile": "dev",
	})
	env := &fakeEnv{profiles: map[string]bool{"prod": true}}

	f := NewProfileFilter()
	f.Inject(Context{Environment: env})
	got := f.Match([]string{"db", "dev", "plain"}, meta)
	assert.Equal(t, []bool{true, false, true}, got)
}
