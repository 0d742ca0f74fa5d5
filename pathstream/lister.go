package pathstream

import (
	"os"
	"path/filepath"
	"sort"

	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/storage/repository"
)

type entryKind int

const (
	kindMissing entryKind = iota
	kindFile
	kindDir
)

// lister resolves paths and lists directories, following symlinks.
// Listings are returned in name order.
type lister interface {
	kind(path string) (entryKind, error)
	list(dir string) ([]string, error)
}

// defaultLister goes through fyne storage whenever a file repository is
// registered, which every fyne driver (and fyne/test) does. Headless tools
// run without a driver and fall back to the os package.
func defaultLister() lister {
	if _, err := repository.ForScheme("file"); err == nil {
		return storageLister{}
	}
	return osLister{}
}

type storageLister struct{}

func (storageLister) kind(path string) (entryKind, error) {
	uri := storage.NewFileURI(path)
	exists, err := storage.Exists(uri)
	if err != nil {
		return kindMissing, err
	}
	if !exists {
		return kindMissing, nil
	}
	if ok, err := storage.CanList(uri); err == nil && ok {
		return kindDir, nil
	}
	return kindFile, nil
}

func (storageLister) list(dir string) ([]string, error) {
	l, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		return nil, err
	}
	uris, err := l.List()
	if err != nil {
		return nil, err
	}
	sort.Slice(uris, func(i, j int) bool { return uris[i].Name() < uris[j].Name() })

	paths := make([]string, len(uris))
	for i, u := range uris {
		paths[i] = filepath.FromSlash(u.Path())
	}
	return paths, nil
}

type osLister struct{}

func (osLister) kind(path string) (entryKind, error) {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return kindMissing, nil
	case err != nil:
		return kindMissing, err
	case info.IsDir():
		return kindDir, nil
	}
	return kindFile, nil
}

func (osLister) list(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = filepath.Join(dir, e.Name())
	}
	return paths, nil
}
