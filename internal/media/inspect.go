package media

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/Oxyrus/parish/internal/apperr"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Inspector runs the checks the upload boundary applies before ingestion.
type Inspector struct {
	// Decode fully decodes each image to reject corrupt payloads.
	Decode bool
}

// Info is what inspection learned about an upload.
type Info struct {
	ContentType string
	TakenAt     *time.Time
}

// Inspect requires an image extension and an image/* content signature. It
// reads the EXIF capture time when present.
func (in Inspector) Inspect(u Upload) (Info, error) {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if !allowedExtensions[ext] {
		return Info{}, apperr.BadRequest(fmt.Sprintf("%s: unsupported file type", u.Filename))
	}

	var info Info

	err := withReader(u, func(r io.Reader) error {
		mt, err := mimetype.DetectReader(r)
		if err != nil {
			return err
		}
		info.ContentType = mt.String()
		return nil
	})
	if err != nil {
		return Info{}, apperr.BadRequest(fmt.Sprintf("%s: unreadable file", u.Filename))
	}
	if !strings.HasPrefix(info.ContentType, "image/") {
		return Info{}, apperr.BadRequest(fmt.Sprintf("%s: not an image", u.Filename))
	}

	if in.Decode && info.ContentType != "image/webp" {
		err := withReader(u, func(r io.Reader) error {
			_, err := imaging.Decode(r)
			return err
		})
		if err != nil {
			return Info{}, apperr.BadRequest(fmt.Sprintf("%s: corrupt image", u.Filename))
		}
	}

	if info.ContentType == "image/jpeg" {
		_ = withReader(u, func(r io.Reader) error {
			info.TakenAt = captureTime(r)
			return nil
		})
	}

	return info, nil
}

func captureTime(r io.Reader) *time.Time {
	x, err := exif.Decode(r)
	if err != nil {
		return nil
	}
	t, err := x.DateTime()
	if err != nil || t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func withReader(u Upload, fn func(io.Reader) error) error {
	if u.Open == nil {
		return fmt.Errorf("media: upload %q has no content", u.Filename)
	}
	rc, err := u.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return fn(rc)
}
