// Package gallery orchestrates the album and photo lifecycle on top of the
// storage layer and the media ingestor.
package gallery

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Oxyrus/parish/internal/apperr"
	"github.com/Oxyrus/parish/internal/media"
	"github.com/Oxyrus/parish/internal/storage"
)

// ErrNotAttempted marks batch items skipped after an earlier write failed.
var ErrNotAttempted = errors.New("gallery: not attempted after earlier failure")

// Ingester writes uploaded files to the media tier.
type Ingester interface {
	Ingest(ctx context.Context, albumID int64, uploads []media.Upload) ([]media.StoredFile, error)
	RemoveAlbum(ctx context.Context, albumID int64) error
}

type Manager struct {
	logger *slog.Logger
	albums storage.Albums
	photos storage.Photos
	files  Ingester
}

func NewManager(logger *slog.Logger, albums storage.Albums, photos storage.Photos, files Ingester) *Manager {
	return &Manager{
		logger: logger,
		albums: albums,
		photos: photos,
		files:  files,
	}
}

// AlbumDetail is an album with its photos, newest first.
type AlbumDetail struct {
	Album  storage.Album
	Photos []storage.Photo
}

type AlbumInput struct {
	Title     string
	Date      string
	EventType string
}

// AlbumPatch holds the fields of a partial album update. Nil pointers and
// unset optionals leave the stored value untouched.
type AlbumPatch struct {
	Title      *string
	Date       *string
	EventType  *string
	CoverImage storage.Optional[string]
}

type PhotoInput struct {
	URL     string
	Caption *string
	TakenAt *time.Time
}

// UploadFile is an upload plus what the boundary learned while inspecting it.
type UploadFile struct {
	media.Upload
	TakenAt *time.Time
}

// ItemOutcome reports what happened to one file of a bulk upload. File is set
// once the bytes were stored, Photo once the row was attached.
type ItemOutcome struct {
	Filename string
	File     *media.StoredFile
	Photo    *storage.Photo
	Err      error
}

// BatchResult is the per-item outcome of AddPhotosFromUpload. The batch is not
// atomic: Attached may be anywhere between zero and len(Items).
type BatchResult struct {
	Items    []ItemOutcome
	Attached int
}

// Complete reports whether every file was stored and attached.
func (r BatchResult) Complete() bool {
	return r.Attached == len(r.Items)
}

// FirstError returns the first per-item failure, if any.
func (r BatchResult) FirstError() error {
	for _, item := range r.Items {
		if item.Err != nil {
			return item.Err
		}
	}
	return nil
}

func (m *Manager) CreateAlbum(ctx context.Context, input AlbumInput) (AlbumDetail, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return AlbumDetail{}, apperr.BadRequest("title is required")
	}
	date, err := parseDate(input.Date)
	if err != nil {
		return AlbumDetail{}, err
	}
	eventType, err := parseEventType(input.EventType)
	if err != nil {
		return AlbumDetail{}, err
	}

	album, err := m.albums.Create(ctx, storage.AlbumCreate{
		Title:     title,
		Date:      date,
		EventType: eventType,
	})
	if err != nil {
		m.logger.Error("failed to create album", "error", err)
		return AlbumDetail{}, apperr.From(err, "failed to create album")
	}

	m.logger.Info("album created", "albumID", album.ID, "eventType", album.EventType)
	return AlbumDetail{Album: album, Photos: []storage.Photo{}}, nil
}

func (m *Manager) ListAlbums(ctx context.Context, filter storage.AlbumFilter) ([]storage.Album, error) {
	albums, err := m.albums.List(ctx, filter)
	if err != nil {
		m.logger.Error("failed to list albums", "eventType", filter.EventType, "error", err)
		return nil, apperr.From(err, "failed to load albums")
	}
	return albums, nil
}

func (m *Manager) GetAlbum(ctx context.Context, id int64) (AlbumDetail, error) {
	album, photos, err := m.albums.GetWithPhotos(ctx, id)
	if err != nil {
		return AlbumDetail{}, m.fail(err, "album not found", "failed to load album", "albumID", id)
	}
	if photos == nil {
		photos = []storage.Photo{}
	}
	return AlbumDetail{Album: album, Photos: photos}, nil
}

func (m *Manager) UpdateAlbum(ctx context.Context, id int64, patch AlbumPatch) (storage.Album, error) {
	var update storage.AlbumUpdate

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return storage.Album{}, apperr.BadRequest("title must not be empty")
		}
		update.Title = &title
	}
	if patch.Date != nil {
		date, err := parseDate(*patch.Date)
		if err != nil {
			return storage.Album{}, err
		}
		update.Date = &date
	}
	if patch.EventType != nil {
		eventType, err := parseEventType(*patch.EventType)
		if err != nil {
			return storage.Album{}, err
		}
		update.EventType = &eventType
	}
	update.CoverImage = patch.CoverImage

	album, err := m.albums.Update(ctx, id, update)
	if err != nil {
		return storage.Album{}, m.fail(err, "album not found", "failed to update album", "albumID", id)
	}

	m.logger.Info("album updated", "albumID", album.ID)
	return album, nil
}

// DeleteAlbum removes the album and its photos. Stored files are removed
// afterwards on a best-effort basis.
func (m *Manager) DeleteAlbum(ctx context.Context, id int64) error {
	if err := m.albums.Delete(ctx, id); err != nil {
		return m.fail(err, "album not found", "failed to delete album", "albumID", id)
	}

	if m.files != nil {
		m.removeAlbumFiles(ctx, id)
	}

	m.logger.Info("album deleted", "albumID", id)
	return nil
}

// removeAlbumFiles drops the album's stored files unless another album
// still points at one of them through a photo URL or its cover.
func (m *Manager) removeAlbumFiles(ctx context.Context, id int64) {
	fragment := "/" + media.AlbumPrefix(id)
	refs, err := m.photos.CountReferences(ctx, fragment, id)
	if err != nil {
		m.logger.Warn("failed to check album file references", "albumID", id, "error", err)
		return
	}
	if refs > 0 {
		m.logger.Warn("keeping album files referenced elsewhere", "albumID", id, "references", refs)
		return
	}

	if err := m.files.RemoveAlbum(ctx, id); err != nil {
		m.logger.Warn("failed to remove album files", "albumID", id, "error", err)
	}
}

func (m *Manager) AddPhotoToAlbum(ctx context.Context, albumID int64, input PhotoInput) (storage.Photo, error) {
	url := strings.TrimSpace(input.URL)
	if url == "" {
		return storage.Photo{}, apperr.BadRequest("url is required")
	}

	photo, err := m.photos.Create(ctx, storage.PhotoCreate{
		AlbumID: albumID,
		URL:     url,
		Caption: normalizeCaption(input.Caption),
		TakenAt: input.TakenAt,
	})
	if err != nil {
		return storage.Photo{}, m.fail(err, "album not found", "failed to add photo", "albumID", albumID)
	}

	return photo, nil
}

// AddPhotosFromUpload stores every file and attaches one photo per stored
// file, applying caption to each. Failures are reported per item; files
// stored before a failure stay stored and attached.
func (m *Manager) AddPhotosFromUpload(ctx context.Context, albumID int64, files []UploadFile, caption *string) (BatchResult, error) {
	if len(files) == 0 {
		return BatchResult{}, apperr.BadRequest("no files provided")
	}
	if _, err := m.albums.GetByID(ctx, albumID); err != nil {
		return BatchResult{}, m.fail(err, "album not found", "failed to load album", "albumID", albumID)
	}

	uploads := make([]media.Upload, len(files))
	for i, f := range files {
		uploads[i] = f.Upload
	}

	stored, ingestErr := m.files.Ingest(ctx, albumID, uploads)

	result := BatchResult{Items: make([]ItemOutcome, len(files))}
	for i, f := range files {
		result.Items[i] = ItemOutcome{Filename: f.Filename, Err: ErrNotAttempted}
	}
	if ingestErr != nil && len(stored) < len(files) {
		result.Items[len(stored)].Err = ingestErr
	}

	for _, file := range stored {
		file := file // per-iteration copy (go1.21 loop-variable semantics)
		item := &result.Items[file.Source]
		item.File = &file

		photo, err := m.AddPhotoToAlbum(ctx, albumID, PhotoInput{
			URL:     file.URL,
			Caption: caption,
			TakenAt: files[file.Source].TakenAt,
		})
		if err != nil {
			item.Err = err
			continue
		}
		item.Photo = &photo
		item.Err = nil
		result.Attached++
	}

	if result.Complete() {
		m.logger.Info("photos uploaded", "albumID", albumID, "count", result.Attached)
	} else {
		m.logger.Warn("photo upload partially failed", "albumID", albumID, "attached", result.Attached, "total", len(files))
	}

	return result, nil
}

// DeletePhoto removes the photo row. The stored file is left in place.
func (m *Manager) DeletePhoto(ctx context.Context, id int64) error {
	if err := m.photos.Delete(ctx, id); err != nil {
		return m.fail(err, "photo not found", "failed to delete photo", "photoID", id)
	}
	m.logger.Info("photo deleted", "photoID", id)
	return nil
}

// SetCover makes one of the album's photos its cover image.
func (m *Manager) SetCover(ctx context.Context, albumID, photoID int64) (storage.Album, error) {
	photo, err := m.photos.GetByID(ctx, photoID)
	if err != nil {
		return storage.Album{}, m.fail(err, "photo not found", "failed to load photo", "photoID", photoID)
	}
	if photo.AlbumID != albumID {
		return storage.Album{}, apperr.BadRequest("photo does not belong to this album")
	}

	return m.UpdateAlbum(ctx, albumID, AlbumPatch{CoverImage: storage.Some(photo.URL)})
}

// fail converts a storage error, logging anything other than a missing row.
func (m *Manager) fail(err error, notFound, failed string, attrs ...any) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &apperr.Error{Kind: apperr.KindNotFound, Message: notFound, Err: err}
	}
	m.logger.Error(failed, append(attrs, "error", err)...)
	return apperr.From(err, failed)
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperr.BadRequest("date is required")
	}
	date, err := time.Parse(storage.DateLayout, raw)
	if err != nil {
		return time.Time{}, apperr.BadRequest("date must be formatted as YYYY-MM-DD")
	}
	return date, nil
}

func parseEventType(raw string) (storage.EventType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperr.BadRequest("eventType is required")
	}
	eventType := storage.EventType(strings.ToLower(raw))
	if !eventType.Valid() {
		return "", apperr.BadRequest("eventType must be weekly or special")
	}
	return eventType, nil
}

func normalizeCaption(caption *string) *string {
	if caption == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*caption)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
