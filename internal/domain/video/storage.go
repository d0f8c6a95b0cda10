package video

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	tmpDirName  = ".tmp"
	metaDirName = ".meta"

	maxSanitizedLen = 200
	maxExtLen       = 16
	fallbackName    = "video"
)

// Root is the storage root: uploads land in UploadDir, everything under
// Dir is publicly served except dot-prefixed internal directories.
type Root struct {
	dir          string
	uploadSubdir string
}

// NewRoot ensures the root, its upload subdirectory and the internal
// directories exist and are writable. Errors wrap ErrStorageUnavailable.
func NewRoot(dir, uploadSubdir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", ErrStorageUnavailable, dir, err)
	}
	r := &Root{dir: abs, uploadSubdir: strings.Trim(uploadSubdir, "/")}

	for _, d := range []string{r.dir, r.UploadDir(), r.tmpDir(), r.metaDir()} {
		if err := EnsureDirectory(d); err != nil {
			return nil, err
		}
	}
	if err := r.probeWritable(); err != nil {
		return nil, err
	}
	return r, nil
}

// EnsureDirectory creates path and any missing parents. Calling it on an
// existing directory is a no-op.
func EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// DeriveFileName returns "{unixMillis}_{sanitized}" where every rune of
// originalName outside [A-Za-z0-9.-] is replaced by '_'. The result is a
// single path segment with no separators.
func DeriveFileName(originalName string, now time.Time) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return '_'
	}, originalName)

	if sanitized == "" {
		sanitized = fallbackName
	}
	if len(sanitized) > maxSanitizedLen {
		ext := path.Ext(sanitized)
		if len(ext) > maxExtLen {
			ext = ""
		}
		sanitized = sanitized[:maxSanitizedLen-len(ext)] + ext
	}
	return fmt.Sprintf("%d_%s", now.UnixMilli(), sanitized)
}

func (r *Root) Dir() string { return r.dir }

func (r *Root) UploadDir() string {
	return filepath.Join(r.dir, filepath.FromSlash(r.uploadSubdir))
}

// StoragePath is the slash-separated path of fileName relative to the root.
func (r *Root) StoragePath(fileName string) string {
	return path.Join(r.uploadSubdir, fileName)
}

// Resolve maps a public relative path to an absolute path inside the root.
// Traversal segments, empty segments and dot-prefixed (internal) segments
// are rejected with ErrNotFound.
func (r *Root) Resolve(rel string) (string, error) {
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || strings.ContainsAny(rel, "\\\x00") {
		return "", ErrNotFound
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == "" || strings.HasPrefix(seg, ".") {
			return "", ErrNotFound
		}
	}

	abs := filepath.Join(r.dir, filepath.FromSlash(rel))
	if !strings.HasPrefix(abs, r.dir+string(filepath.Separator)) {
		return "", ErrNotFound
	}
	return abs, nil
}

// CreateTemp opens an exclusive staging file for fileName outside the public tree.
func (r *Root) CreateTemp(fileName string) (*os.File, error) {
	return os.OpenFile(filepath.Join(r.tmpDir(), fileName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// Commit moves a staged file to storagePath. Both live on the same
// filesystem, so the file appears complete or not at all.
func (r *Root) Commit(tmpPath, storagePath string) error {
	dst := filepath.Join(r.dir, filepath.FromSlash(storagePath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.Rename(tmpPath, dst)
}

func (r *Root) WriteMetadata(storagePath string, m *Metadata) error {
	p := r.metaPath(storagePath)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// ReadMetadata returns the sidecar for storagePath, or nil if none exists.
func (r *Root) ReadMetadata(storagePath string) (*Metadata, error) {
	data, err := os.ReadFile(r.metaPath(storagePath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CountVideos counts regular files directly under the upload directory.
func (r *Root) CountVideos() (int, error) {
	entries, err := os.ReadDir(r.UploadDir())
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			n++
		}
	}
	return n, nil
}

func (r *Root) tmpDir() string  { return filepath.Join(r.dir, tmpDirName) }
func (r *Root) metaDir() string { return filepath.Join(r.dir, metaDirName) }

func (r *Root) metaPath(storagePath string) string {
	return filepath.Join(r.metaDir(), filepath.FromSlash(storagePath)+".json")
}

func (r *Root) probeWritable() error {
	f, err := os.CreateTemp(r.tmpDir(), "probe-*")
	if err != nil {
		return fmt.Errorf("%w: %s is not writable: %v", ErrStorageUnavailable, r.dir, err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
