// Package media stores uploaded album images and hands back the public URLs
// the web tier serves them from.
package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strconv"
	"time"

	"github.com/mozillazg/go-unidecode"

	"github.com/Oxyrus/parish/internal/apperr"
)

// Backend persists objects under a slash separated key.
type Backend interface {
	// Put durably writes the object before returning and reports its public URL.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// RemovePrefix deletes every object below prefix.
	RemovePrefix(ctx context.Context, prefix string) error
}

// Upload is a single file payload as received at the boundary.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// StoredFile describes a file that reached the backend.
type StoredFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	// Source is the index of the Upload this file was written from.
	Source int `json:"-"`
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFilename transliterates name to ASCII and replaces every character
// other than letters, digits, dots and dashes with an underscore.
func SanitizeFilename(name string) string {
	base := path.Base(name)
	if base == "." || base == "/" {
		base = ""
	}
	cleaned := unsafeChars.ReplaceAllString(unidecode.Unidecode(base), "_")
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "file"
	}
	return cleaned
}

// AlbumPrefix is the key prefix holding every file of an album.
func AlbumPrefix(albumID int64) string {
	return "albums/" + strconv.FormatInt(albumID, 10) + "/"
}

type Ingestor struct {
	logger  *slog.Logger
	backend Backend
	now     func() time.Time
}

func NewIngestor(logger *slog.Logger, backend Backend) *Ingestor {
	return &Ingestor{
		logger:  logger,
		backend: backend,
		now:     time.Now,
	}
}

// Ingest writes every upload under the album's prefix, in order. Files are
// named "<unix millis>-<sanitized original name>". When a write fails the
// files already stored stay in place and are returned alongside the error.
func (i *Ingestor) Ingest(ctx context.Context, albumID int64, uploads []Upload) ([]StoredFile, error) {
	if len(uploads) == 0 {
		return nil, apperr.BadRequest("no files provided")
	}

	prefix := AlbumPrefix(albumID)
	stored := make([]StoredFile, 0, len(uploads))
	used := make(map[string]struct{}, len(uploads))
	stamp := i.now().UnixMilli()

	for idx, upload := range uploads {
		name := SanitizeFilename(upload.Filename)
		filename := fmt.Sprintf("%d-%s", stamp, name)
		for {
			if _, taken := used[filename]; !taken {
				break
			}
			stamp++
			filename = fmt.Sprintf("%d-%s", stamp, name)
		}
		used[filename] = struct{}{}

		url, err := i.put(ctx, prefix+filename, upload)
		if err != nil {
			i.logger.Error("failed to store upload", "albumID", albumID, "filename", filename, "error", err)
			return stored, apperr.StorageWrite("failed to store "+upload.Filename, err)
		}

		stored = append(stored, StoredFile{
			Filename: filename,
			URL:      url,
			Size:     upload.Size,
			Source:   idx,
		})
	}

	i.logger.Info("stored uploads", "albumID", albumID, "count", len(stored))
	return stored, nil
}

// RemoveAlbum deletes every stored file of an album.
func (i *Ingestor) RemoveAlbum(ctx context.Context, albumID int64) error {
	return i.backend.RemovePrefix(ctx, AlbumPrefix(albumID))
}

func (i *Ingestor) put(ctx context.Context, key string, upload Upload) (string, error) {
	if upload.Open == nil {
		return "", fmt.Errorf("media: upload %q has no content", upload.Filename)
	}

	rc, err := upload.Open()
	if err != nil {
		return "", fmt.Errorf("media: open %q: %w", upload.Filename, err)
	}
	defer rc.Close()

	return i.backend.Put(ctx, key, rc, upload.Size, upload.ContentType)
}
