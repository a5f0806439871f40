package exclusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratumcfg/stratum/pkg/errors"
)

type sliceEnv map[string][]string

func (e sliceEnv) GetStringSlice(key string) []string { return e[key] }

func TestBuildMergesAndDeduplicates(t *testing.T) {
	env := sliceEnv{ExcludeProperty: {"c", "a", " d "}}

	got := Build([]string{"a", "b"}, []string{"b", "c"}, env)
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestBuildNilEnvironment(t *testing.T) {
	got := Build([]string{"a"}, nil, nil)
	assert.Equal(t, []string{"a"}, got)
}

func TestValidateAcceptsKnownCandidates(t *testing.T) {
	err := Validate([]string{"a", "b"}, []string{"a"}, func(string) bool { return true })
	assert.NoError(t, err)
}

func TestValidateSkipsUnresolvable(t *testing.T) {
	err := Validate([]string{"a"}, []string{"ghost"}, func(string) bool { return false })
	assert.NoError(t, err)
}

func TestValidateReportsAllInvalid(t *testing.T) {
	err := Validate([]string{"a"}, []string{"z", "a", "m"}, func(string) bool { return true })
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExclusion))
	assert.Contains(t, err.Error(), "m")
	assert.Contains(t, err.Error(), "z")
	assert.NotContains(t, err.Error(), "- a")
}

func TestSubtract(t *testing.T) {
	got := Subtract([]string{"a", "b", "c"}, []string{"b"})
	assert.Equal(t, []string{"a", "c"}, got)

	same := Subtract([]string{"a"}, nil)
	assert.Equal(t, []string{"a"}, same)
}
