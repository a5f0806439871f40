package manifest

import (
	"testing"

	"github.com/magiconair/properties"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratumcfg/stratum/pkg/errors"
	"github.com/stratumcfg/stratum/pkg/resource"
)

func testLoader(t *testing.T, files map[string]string) resource.Loader {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return resource.NewLoaderWithFS(fs, fs)
}

func TestRegisterAndLoadCandidates(t *testing.T) {
	r := NewRegistry()
	r.Register("datasource", "a", "b")
	r.Register("datasource", "a") // duplicate stays until pipeline dedup

	ids, err := r.LoadCandidates("datasource")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "a"}, ids)
}

func TestLoadCandidatesEmptyCategory(t *testing.T) {
	r := NewRegistry()

	_, err := r.LoadCandidates("missing")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDiscovery))
}

func TestLoadManifest(t *testing.T) {
	loader := testLoader(t, map[string]string{
		"manifest.yaml": "datasource:\n  - alpha\n  - beta\nweb:\n  - gamma\n",
	})

	r := NewRegistry()
	require.NoError(t, r.LoadManifest(loader.Get("file:manifest.yaml")))

	ids, err := r.LoadCandidates("datasource")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, ids)
	assert.True(t, r.Known("gamma"))
	assert.False(t, r.Known("delta"))
}

func TestLoadManifestMissing(t *testing.T) {
	loader := testLoader(t, nil)

	r := NewRegistry()
	err := r.LoadManifest(loader.Get("file:manifest.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDiscovery))
}

func TestLoadManifestEmpty(t *testing.T) {
	loader := testLoader(t, map[string]string{"manifest.yaml": ""})

	r := NewRegistry()
	err := r.LoadManifest(loader.Get("file:manifest.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDiscovery))
}

func TestRemoveDuplicates(t *testing.T) {
	got := RemoveDuplicates([]string{"a", "b", "a", "c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestMetadataAttributes(t *testing.T) {
	props := properties.NewProperties()
	_, _, err := props.Set("web.order", "10")
	require.NoError(t, err)
	_, _, err = props.Set("web.after", "datasource, cache")
	require.NoError(t, err)
	_, _, err = props.Set("web.requires", "server.port")
	require.NoError(t, err)

	m := NewMetadata(props)
	assert.Equal(t, 10, m.GetInt("web", AttrOrder, 0))
	assert.Equal(t, 0, m.GetInt("cache", AttrOrder, 0))
	assert.Equal(t, []string{"datasource", "cache"}, m.GetSet("web", AttrAfter))
	assert.Nil(t, m.GetSet("web", AttrBefore))
	assert.True(t, m.Has("web", AttrRequires))
	assert.False(t, m.Has("web", AttrProfile))
	assert.Equal(t, "server.port", m.Get("web", AttrRequires))
}

func TestLoadMetadataMissingIsEmpty(t *testing.T) {
	loader := testLoader(t, nil)

	m, err := LoadMetadata(loader.Get("file:metadata.properties"))
	require.NoError(t, err)
	assert.False(t, m.Has("web", AttrOrder))
}

func TestLoadMetadataFromResource(t *testing.T) {
	loader := testLoader(t, map[string]string{
		"metadata.properties": "cache.before=web\ncache.order=5\n",
	})

	m, err := LoadMetadata(loader.Get("file:metadata.properties"))
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, m.GetSet("cache", AttrBefore))
	assert.Equal(t, 5, m.GetInt("cache", AttrOrder, 0))
}
