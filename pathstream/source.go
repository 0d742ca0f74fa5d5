package pathstream

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
)

// Source produces candidate image paths. ok is false once the stream has
// ended; a Source may also never end.
type Source interface {
	Next() (path string, ok bool)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func() (string, bool)

func (f SourceFunc) Next() (string, bool) { return f() }

// FromSlice returns a Source yielding the given values once, in order.
func FromSlice(values []string) Source {
	i := 0
	return SourceFunc(func() (string, bool) {
		if i >= len(values) {
			return "", false
		}
		i++
		return values[i-1], true
	})
}

// FileSource expands a stream of root paths into the files below them.
// Directories are walked lazily and top-down: files of a directory come
// before the contents of its subdirectories, both in name order.
type FileSource struct {
	roots Source
	fs    lister
	log   *slog.Logger

	files []string
	dirs  []string
}

// NewFileSource returns a FileSource over the given roots.
func NewFileSource(roots []string, log *slog.Logger) *FileSource {
	return newFileSource(FromSlice(roots), log)
}

// NewLineSource reads newline separated roots from r, each expanded like
// NewFileSource does. Lines are read on demand, so r may be a pipe or fifo.
func NewLineSource(r io.Reader, log *slog.Logger) *FileSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	return newFileSource(SourceFunc(func() (string, bool) {
		for scanner.Scan() {
			line := strings.Trim(strings.TrimRight(scanner.Text(), "\r\n"), "\x00")
			if line == "" {
				continue
			}
			return line, true
		}
		return "", false
	}), log)
}

func newFileSource(roots Source, log *slog.Logger) *FileSource {
	if log == nil {
		log = slog.Default()
	}
	return &FileSource{roots: roots, fs: defaultLister(), log: log}
}

func (s *FileSource) Next() (string, bool) {
	for {
		if len(s.files) > 0 {
			p := s.files[0]
			s.files = s.files[1:]
			return p, true
		}

		if len(s.dirs) > 0 {
			dir := s.dirs[len(s.dirs)-1]
			s.dirs = s.dirs[:len(s.dirs)-1]
			s.expandDir(dir)
			continue
		}

		root, ok := s.roots.Next()
		if !ok {
			return "", false
		}

		switch kind, err := s.fs.kind(root); {
		case err != nil:
			s.log.Warn("paths: cannot inspect path", "path", root, "error", err)
		case kind == kindMissing:
			s.log.Warn("paths: path does not exist", "path", root)
		case kind == kindDir:
			s.dirs = append(s.dirs, root)
		default:
			return root, true
		}
	}
}

func (s *FileSource) expandDir(dir string) {
	entries, err := s.fs.list(dir)
	if err != nil {
		s.log.Warn("paths: cannot list directory", "path", dir, "error", err)
		return
	}

	var subdirs []string
	for _, p := range entries {
		kind, err := s.fs.kind(p)
		if err != nil || kind == kindMissing {
			// dangling symlinks end up here
			s.log.Debug("paths: skipping unresolvable entry", "path", p, "error", err)
			continue
		}
		if kind == kindDir {
			subdirs = append(subdirs, p)
			continue
		}
		s.files = append(s.files, p)
	}

	// Stack order: first subdirectory is popped first.
	for i := len(subdirs) - 1; i >= 0; i-- {
		s.dirs = append(s.dirs, subdirs[i])
	}
}
