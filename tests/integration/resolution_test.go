// Package integration exercises the full resolution pipeline through the
// public API: bundled and file resources, manifest discovery, metadata-driven
// filtering and ordering, profile activation, merging and binding.
package integration

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratumcfg/stratum"
	"github.com/stratumcfg/stratum/pkg/environment"
	"github.com/stratumcfg/stratum/pkg/errors"
	"github.com/stratumcfg/stratum/pkg/manifest"
	"github.com/stratumcfg/stratum/pkg/property"
	"github.com/stratumcfg/stratum/pkg/resource"
)

// fullStack builds a deployment-shaped fixture: defaults bundled with the
// application, environment-specific overrides on disk, a discovery manifest
// and a metadata sidecar.
func fullStack(t *testing.T) (*environment.Environment, stratum.Context) {
	t.Helper()

	bundled := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(bundled, "application.yaml", []byte(`
server:
  host: localhost
  port: 8080
app:
  url: http://${server.host}:${server.port}/
datasource:
  pool: 5
---
"stratum.profiles": prod
server:
  host: prod.internal
datasource:
  pool: 50
`), 0o644))
	require.NoError(t, afero.WriteFile(bundled, "manifest.yaml", []byte(`
starters:
  - web
  - db
  - cache
  - debug-tools
`), 0o644))
	require.NoError(t, afero.WriteFile(bundled, "metadata.properties", []byte(
		"web.after=db\n"+
			"cache.before=web\n"+
			"cache.requires=cache.addr\n"+
			"debug-tools.profile=dev\n"), 0o644))

	files := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(files, "config/application.properties",
		[]byte("server.port=9090\ncache.addr=redis:6379\n"), 0o644))

	resources := resource.NewLoaderWithFS(bundled, files)
	registry := manifest.NewRegistry()
	require.NoError(t, registry.LoadManifest(resources.Get("bundled:/manifest.yaml")))
	metadata, err := manifest.LoadMetadata(resources.Get("bundled:/metadata.properties"))
	require.NoError(t, err)

	env := environment.New()
	return env, stratum.Context{
		Environment: env,
		Resources:   resources,
		Registry:    registry,
		Metadata:    metadata,
	}
}

func TestFullResolution(t *testing.T) {
	env, ctx := fullStack(t)
	env.AddActiveProfile("prod")

	cfg, err := stratum.Resolve(ctx, stratum.DefaultOptions("starters"))
	require.NoError(t, err)

	// db before cache before web; debug-tools filtered out (dev only).
	assert.Equal(t, []string{"db", "cache", "web"}, cfg.Contributions)
	assert.Equal(t, []string{"prod"}, cfg.Profiles)

	// file:./config/ beats bundled defaults; the prod document beats the
	// unconditional one; placeholders resolve across all of it.
	assert.Equal(t, "9090", env.GetString("server.port", ""))
	assert.Equal(t, "prod.internal", env.GetString("server.host", ""))
	assert.Equal(t, "http://prod.internal:9090/", env.GetString("app.url", ""))

	var ds struct {
		Pool int `mapstructure:"pool"`
	}
	require.NoError(t, env.Bind("datasource", &ds))
	assert.Equal(t, 50, ds.Pool)
}

func TestResolutionWithoutProfiles(t *testing.T) {
	env, ctx := fullStack(t)

	cfg, err := stratum.Resolve(ctx, stratum.DefaultOptions("starters"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Profiles)
	assert.Equal(t, "localhost", env.GetString("server.host", ""))
	assert.Equal(t, 5, env.GetInt("datasource.pool", 0))
	// cache.addr comes from disk, so the cache contribution still qualifies.
	assert.Contains(t, cfg.Contributions, "cache")
	assert.NotContains(t, cfg.Contributions, "debug-tools")
}

func TestExclusionFlowsThroughEnvironment(t *testing.T) {
	env, ctx := fullStack(t)
	overrides := property.NewLayer("overrides")
	overrides.Set("stratum.contributions.exclude", "web")
	require.NoError(t, env.PropertySources().AddLast(overrides))

	cfg, err := stratum.Resolve(ctx, stratum.DefaultOptions("starters"))
	require.NoError(t, err)
	assert.NotContains(t, cfg.Contributions, "web")
	assert.Contains(t, cfg.Exclusions, "web")
}

func TestUnknownExclusionFailsLoudly(t *testing.T) {
	_, ctx := fullStack(t)
	opts := stratum.DefaultOptions("starters")
	opts.Exclude = []string{"no-such-starter"}

	_, err := stratum.Resolve(ctx, opts)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExclusion))
	assert.Contains(t, err.Error(), "no-such-starter")
}

func TestListenerObservesOutcome(t *testing.T) {
	_, ctx := fullStack(t)
	opts := stratum.DefaultOptions("starters")
	var events []stratum.Event
	opts.Listeners = []stratum.Listener{stratum.ListenerFunc(func(e stratum.Event) error {
		events = append(events, e)
		return nil
	})}

	cfg, err := stratum.Resolve(ctx, opts)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, cfg.Contributions, events[0].Contributions)
}
