package resource

import (
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T) (*FSLoader, afero.Fs, afero.Fs) {
	t.Helper()
	bundled := afero.NewMemMapFs()
	files := afero.NewMemMapFs()
	return NewLoaderWithFS(bundled, files), bundled, files
}

func write(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestBundledLocation(t *testing.T) {
	loader, bundled, _ := newTestLoader(t)
	write(t, bundled, "config/application.yaml", "x: 1")

	res := loader.Get("bundled:/config/application.yaml")
	assert.True(t, res.Exists())
	assert.Equal(t, "application.yaml", res.Name())
	assert.Equal(t, "bundled:/config/application.yaml", res.Location())

	rc, err := res.Open()
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "x: 1", string(content))
}

func TestFileLocation(t *testing.T) {
	loader, _, files := newTestLoader(t)
	write(t, files, "application.properties", "x=1")

	assert.True(t, loader.Get("file:./application.properties").Exists())
	assert.True(t, loader.Get("application.properties").Exists(), "unprefixed defaults to file")
	assert.False(t, loader.Get("file:./missing.properties").Exists())
}

func TestDirectoriesAreNotResources(t *testing.T) {
	loader, bundled, _ := newTestLoader(t)
	write(t, bundled, "config/application.yaml", "x: 1")

	assert.False(t, loader.Get("bundled:/config").Exists())
}

func TestNilBundledFilesystem(t *testing.T) {
	loader := NewLoader(nil)
	assert.False(t, loader.Get("bundled:/application.yaml").Exists())
}
