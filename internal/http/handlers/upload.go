package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/parish/internal/apperr"
	"github.com/Oxyrus/parish/internal/gallery"
	"github.com/Oxyrus/parish/internal/media"
	"github.com/Oxyrus/parish/internal/storage"
)

// Inspector checks one upload before it is handed to the ingestor.
type Inspector interface {
	Inspect(u media.Upload) (media.Info, error)
}

// Uploads reads the multipart "files" (or "files[]") fields of a request.
type Uploads struct {
	inspector Inspector
	maxBytes  int64
}

func NewUploads(inspector Inspector, maxBytes int64) *Uploads {
	return &Uploads{
		inspector: inspector,
		maxBytes:  maxBytes,
	}
}

// Read parses the form and inspects every file. The request body is capped at
// the configured size.
func (u *Uploads) Read(c *gin.Context) ([]gallery.UploadFile, error) {
	if u.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, u.maxBytes)
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.BadRequest(fmt.Sprintf("upload exceeds %d MB", u.maxBytes>>20))
		}
		return nil, apperr.BadRequest("expected a multipart form")
	}

	var headers []*multipart.FileHeader
	headers = append(headers, form.File["files"]...)
	headers = append(headers, form.File["files[]"]...)
	if len(headers) == 0 {
		return nil, apperr.BadRequest("no files provided")
	}

	files := make([]gallery.UploadFile, 0, len(headers))
	for _, fh := range headers {
		upload := fileUpload(fh)

		if u.inspector != nil {
			info, err := u.inspector.Inspect(upload)
			if err != nil {
				return nil, err
			}
			upload.ContentType = info.ContentType
			files = append(files, gallery.UploadFile{Upload: upload, TakenAt: info.TakenAt})
			continue
		}

		files = append(files, gallery.UploadFile{Upload: upload})
	}

	return files, nil
}

func fileUpload(fh *multipart.FileHeader) media.Upload {
	return media.Upload{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FileIngester stores uploads under an album's prefix.
type FileIngester interface {
	Ingest(ctx context.Context, albumID int64, uploads []media.Upload) ([]media.StoredFile, error)
}

// UploadHandler serves the standalone upload endpoint, which stores files
// without attaching them to the album.
type UploadHandler struct {
	logger  *slog.Logger
	albums  storage.Albums
	files   FileIngester
	uploads *Uploads
}

func NewUploadHandler(logger *slog.Logger, albums storage.Albums, files FileIngester, uploads *Uploads) *UploadHandler {
	return &UploadHandler{
		logger:  logger,
		albums:  albums,
		files:   files,
		uploads: uploads,
	}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	files, err := h.uploads.Read(c)
	if err != nil {
		writeError(c, err)
		return
	}

	albumID, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("albumId")), 10, 64)
	if err != nil || albumID <= 0 {
		writeError(c, apperr.BadRequest("albumId is required"))
		return
	}

	if _, err := h.albums.GetByID(ctx, albumID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(c, apperr.NotFound("album not found"))
			return
		}
		h.logger.Error("failed to load album for upload", "albumID", albumID, "error", err)
		writeError(c, apperr.From(err, "failed to load album"))
		return
	}

	uploads := make([]media.Upload, len(files))
	for i, f := range files {
		uploads[i] = f.Upload
	}

	stored, err := h.files.Ingest(ctx, albumID, uploads)
	if err != nil {
		kind := apperr.KindOf(err)
		msg := "failed to store files"
		var e *apperr.Error
		if errors.As(err, &e) && e.Message != "" {
			msg = e.Message
		}
		c.JSON(kind.Status(), gin.H{"error": msg, "files": nonNil(stored)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": stored})
}

func nonNil(files []media.StoredFile) []media.StoredFile {
	if files == nil {
		return []media.StoredFile{}
	}
	return files
}
