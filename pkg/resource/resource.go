// Package resource provides the resource-loading capability used by the
// document loaders. Locations address one of two roots: "bundled:" resources
// shipped with the application (an afero filesystem supplied by the host)
// and "file:" resources on the local filesystem. The package never parses
// resource content; it only locates and opens it.
package resource

import (
	"io"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Location prefixes.
const (
	BundledPrefix = "bundled:"
	FilePrefix    = "file:"
)

// DefaultSearchName is the base filename probed when no search names are
// configured.
const DefaultSearchName = "application"

// DefaultSearchLocations returns the standard search roots, least specific
// first. Loaders walk them in reverse so the most specific root wins.
func DefaultSearchLocations() []string {
	return []string{
		BundledPrefix + "/",
		BundledPrefix + "/config/",
		FilePrefix + "./",
		FilePrefix + "./config/",
	}
}

// Resource is a single addressable unit of configuration content.
type Resource interface {
	// Location returns the full location string the resource was requested by.
	Location() string
	// Name returns the base filename, including extension.
	Name() string
	// Exists reports whether the resource is present. A missing resource is
	// a normal skip condition, never an error.
	Exists() bool
	// Open returns the resource content for reading. Failing to open or read
	// an existing resource is a fatal condition for the resolution pass.
	Open() (io.ReadCloser, error)
}

// Loader resolves location strings to resources.
type Loader interface {
	Get(location string) Resource
}

// FSLoader is the afero-backed Loader. The bundled filesystem plays the role
// of resources packaged with the application; the file filesystem is rooted
// at the process working directory.
type FSLoader struct {
	bundled afero.Fs
	files   afero.Fs
}

// NewLoader creates a loader over the given bundled filesystem and the OS
// filesystem. A nil bundled filesystem is replaced with an empty one so that
// bundled lookups degrade to clean misses.
func NewLoader(bundled afero.Fs) *FSLoader {
	if bundled == nil {
		bundled = afero.NewMemMapFs()
	}
	return &FSLoader{bundled: bundled, files: afero.NewOsFs()}
}

// NewLoaderWithFS creates a loader with explicit filesystems for both roots.
// Used by tests to run against in-memory filesystems.
func NewLoaderWithFS(bundled, files afero.Fs) *FSLoader {
	return &FSLoader{bundled: bundled, files: files}
}

// Get resolves a location to a resource. Unprefixed locations are treated as
// file locations.
func (l *FSLoader) Get(location string) Resource {
	fs, p := l.split(location)
	return &fsResource{location: location, path: p, fs: fs}
}

func (l *FSLoader) split(location string) (afero.Fs, string) {
	switch {
	case strings.HasPrefix(location, BundledPrefix):
		return l.bundled, cleanPath(strings.TrimPrefix(location, BundledPrefix))
	case strings.HasPrefix(location, FilePrefix):
		return l.files, cleanPath(strings.TrimPrefix(location, FilePrefix))
	default:
		return l.files, cleanPath(location)
	}
}

func cleanPath(p string) string {
	p = strings.TrimPrefix(p, "./")
	if p == "" {
		return "."
	}
	return p
}

type fsResource struct {
	location string
	path     string
	fs       afero.Fs
}

func (r *fsResource) Location() string {
	return r.location
}

func (r *fsResource) Name() string {
	return path.Base(r.path)
}

func (r *fsResource) Exists() bool {
	ok, err := afero.Exists(r.fs, r.path)
	if err != nil {
		return false
	}
	if ok {
		// Directories are not loadable resources.
		if isDir, err := afero.IsDir(r.fs, r.path); err == nil && isDir {
			return false
		}
	}
	return ok
}

func (r *fsResource) Open() (io.ReadCloser, error) {
	return r.fs.Open(r.path)
}
