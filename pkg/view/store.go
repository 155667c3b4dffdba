package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
)

// Store errors.
var (
	// ErrViewNotFound is returned when a store has no bundle for a view.
	ErrViewNotFound = errors.New("view bundle not found")

	// ErrInvalidViewName is returned for names that could escape the store.
	ErrInvalidViewName = errors.New("invalid view name")

	// ErrNilView is returned when a loader reports success without a view.
	ErrNilView = errors.New("loader returned nil view")
)

// BundleExt is the file extension of view bundles.
const BundleExt = ".html"

// Store is where deferred view bundles are fetched from.
type Store interface {
	// Open returns the bundle for the named view.
	// Implementations return an error wrapping ErrViewNotFound when the
	// bundle does not exist.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// BundleKey maps a view name to its bundle key ("cart" -> "cart.html").
func BundleKey(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidViewName, name)
	}
	return name + BundleExt, nil
}

// FSStore serves bundles from an fs.FS, typically an embed.FS.
type FSStore struct {
	fsys fs.FS
	dir  string
}

// NewFSStore creates a store reading bundles from dir inside fsys.
func NewFSStore(fsys fs.FS, dir string) *FSStore {
	return &FSStore{fsys: fsys, dir: dir}
}

// Open implements Store.
func (s *FSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := BundleKey(name)
	if err != nil {
		return nil, err
	}
	f, err := s.fsys.Open(path.Join(s.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrViewNotFound, name)
		}
		return nil, err
	}
	return f, nil
}

// DiskStore serves bundles from a directory on disk.
// Changes on disk are picked up by views that have not been loaded yet.
type DiskStore struct {
	*FSStore
	root string
}

// NewDiskStore creates a store rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{
		FSStore: NewFSStore(os.DirFS(dir), "."),
		root:    dir,
	}
}

// Root returns the directory the store reads from.
func (s *DiskStore) Root() string {
	return s.root
}
