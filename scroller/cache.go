package scroller

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/alexballas/xscroller/imgproc"
)

const (
	DefaultCacheMaxSize  int64 = 500 * 1024 * 1024 // 500MB
	DefaultCacheMaxFiles int   = 10000
)

// DiskCache persists processed images across runs. Entries are keyed on the
// source file's identity and the processing parameters, so editing a file or
// resizing the window never serves a stale rendition.
type DiskCache struct {
	Dir      string
	MaxSize  int64
	MaxFiles int
}

// NewDiskCache opens (creating if needed) a cache rooted at dir. An empty dir
// selects a directory under the user cache directory.
func NewDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(userCache, "xscroller")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskCache{
		Dir:      dir,
		MaxSize:  DefaultCacheMaxSize,
		MaxFiles: DefaultCacheMaxFiles,
	}, nil
}

// Key identifies the rendition of path produced with p.
func (c *DiskCache) Key(path string, p Params) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(absPath))
	h.Write([]byte(info.ModTime().String()))
	fmt.Fprintf(h, "%d", info.Size())
	fmt.Fprintf(h, "|%dx%d|%s|%g|%d|%g", p.Width, p.Height, p.Algorithm,
		p.Brightness.K, p.Brightness.Adaptive, p.Brightness.Target)

	// first 32KB of content
	f, err := os.Open(absPath)
	if err == nil {
		defer f.Close()
		buf := make([]byte, 32*1024)
		n, _ := f.Read(buf)
		h.Write(buf[:n])
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Load returns the entry stored under key. Unreadable entries are misses.
func (c *DiskCache) Load(key string) (image.Image, bool) {
	for _, ext := range []string{".jpg", ".png"} {
		path := filepath.Join(c.Dir, key+ext)
		img, err := decodeSafely(imgproc.Decode, path)
		if err != nil {
			continue
		}
		now := time.Now()
		_ = os.Chtimes(path, now, now)
		return img, true
	}
	return nil, false
}

// Store writes img under key. Opaque images are stored as JPEG, anything
// with transparency as PNG.
func (c *DiskCache) Store(key string, img image.Image) error {
	ext := ".png"
	if opaque(img) {
		ext = ".jpg"
	}
	final := filepath.Join(c.Dir, key+ext)

	f, err := os.CreateTemp(c.Dir, key+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if ext == ".jpg" {
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 85})
	} else {
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, final)
}

// Cleanup evicts least recently used entries once the cache grows past its
// limits, down to 80% of both.
func (c *DiskCache) Cleanup() {
	files, err := os.ReadDir(c.Dir)
	if err != nil {
		return
	}

	type fileInfo struct {
		name string
		size int64
		time time.Time
	}

	var cachedFiles []fileInfo
	var totalSize int64

	for _, f := range files {
		if ext := filepath.Ext(f.Name()); f.IsDir() || (ext != ".jpg" && ext != ".png") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		cachedFiles = append(cachedFiles, fileInfo{
			name: f.Name(),
			size: info.Size(),
			time: info.ModTime(),
		})
		totalSize += info.Size()
	}

	if totalSize <= c.MaxSize && len(cachedFiles) <= c.MaxFiles {
		return
	}

	// oldest first
	sort.Slice(cachedFiles, func(i, j int) bool {
		return cachedFiles[i].time.Before(cachedFiles[j].time)
	})

	for _, f := range cachedFiles {
		if totalSize <= int64(float64(c.MaxSize)*0.8) && len(cachedFiles) <= int(float64(c.MaxFiles)*0.8) {
			break
		}
		_ = os.Remove(filepath.Join(c.Dir, f.name))
		totalSize -= f.size
		cachedFiles = cachedFiles[1:]
	}
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}
