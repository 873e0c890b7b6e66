package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DiskBackend writes objects below Root and serves them from PublicBase.
type DiskBackend struct {
	root       string
	publicBase string

	mu   sync.Mutex
	dirs map[string]bool
}

func NewDiskBackend(root, publicBase string) (*DiskBackend, error) {
	if root == "" {
		return nil, fmt.Errorf("media: disk root must not be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("media: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("media: create root: %w", err)
	}
	return &DiskBackend{
		root:       abs,
		publicBase: strings.TrimRight(publicBase, "/"),
		dirs:       make(map[string]bool),
	}, nil
}

// Root is the directory the public tier should serve at the public base.
func (d *DiskBackend) Root() string {
	return d.root
}

func (d *DiskBackend) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full, err := d.resolve(key)
	if err != nil {
		return "", err
	}

	if err := d.ensureDir(filepath.Dir(full)); err != nil {
		return "", fmt.Errorf("media: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("media: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("media: write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("media: sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("media: close %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("media: chmod %s: %w", key, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return "", fmt.Errorf("media: rename %s: %w", key, err)
	}
	committed = true

	return d.publicBase + "/" + key, nil
}

func (d *DiskBackend) RemovePrefix(_ context.Context, prefix string) error {
	full, err := d.resolve(prefix)
	if err != nil {
		return err
	}
	if full == d.root {
		return fmt.Errorf("media: refusing to remove storage root")
	}

	d.mu.Lock()
	for dir := range d.dirs {
		if dir == full || strings.HasPrefix(dir, full+string(filepath.Separator)) {
			delete(d.dirs, dir)
		}
	}
	d.mu.Unlock()

	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("media: remove %s: %w", prefix, err)
	}
	return nil
}

func (d *DiskBackend) resolve(key string) (string, error) {
	full := filepath.Join(d.root, filepath.FromSlash(key))
	if full != d.root && !strings.HasPrefix(full, d.root+string(filepath.Separator)) {
		return "", fmt.Errorf("media: key %q escapes storage root", key)
	}
	return full, nil
}

func (d *DiskBackend) ensureDir(dir string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dirs[dir] {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	d.dirs[dir] = true
	return nil
}

var _ Backend = (*DiskBackend)(nil)
