package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/parish/internal/apperr"
	"github.com/Oxyrus/parish/internal/gallery"
	"github.com/Oxyrus/parish/internal/storage"
)

type AlbumHandler struct {
	logger  *slog.Logger
	manager *gallery.Manager
	query   *gallery.Query
	uploads *Uploads
}

func NewAlbumHandler(logger *slog.Logger, manager *gallery.Manager, query *gallery.Query, uploads *Uploads) *AlbumHandler {
	return &AlbumHandler{
		logger:  logger,
		manager: manager,
		query:   query,
		uploads: uploads,
	}
}

type albumResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Date       string    `json:"date"`
	EventType  string    `json:"eventType"`
	CoverImage *string   `json:"coverImage"`
	PhotoCount int       `json:"photoCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type albumDetailResponse struct {
	albumResponse
	Photos []photoResponse `json:"photos"`
}

type photoResponse struct {
	ID        int64      `json:"id"`
	AlbumID   int64      `json:"albumId"`
	URL       string     `json:"url"`
	Caption   *string    `json:"caption"`
	TakenAt   *time.Time `json:"takenAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type createAlbumRequest struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	EventType string `json:"eventType"`
}

type updateAlbumRequest struct {
	Title      *string                  `json:"title"`
	Date       *string                  `json:"date"`
	EventType  *string                  `json:"eventType"`
	CoverImage storage.Optional[string] `json:"coverImage"`
}

type addPhotoRequest struct {
	URL     string  `json:"url"`
	Caption *string `json:"caption"`
}

type setCoverRequest struct {
	PhotoID int64 `json:"photoId" binding:"required,gt=0"`
}

func (h *AlbumHandler) List(c *gin.Context) {
	eventType, err := gallery.ParseFilter(c.Query("type"))
	if err != nil {
		writeError(c, err)
		return
	}
	order, err := gallery.ParseOrder(c.Query("sort"))
	if err != nil {
		writeError(c, err)
		return
	}

	albums, err := h.query.Albums(c.Request.Context(), storage.AlbumFilter{EventType: eventType, Order: order})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, albums)
}

func (h *AlbumHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id", "album")
	if !ok {
		return
	}

	album, err := h.query.Album(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, album)
}

func (h *AlbumHandler) Create(c *gin.Context) {
	var req createAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	created, err := h.manager.CreateAlbum(c.Request.Context(), gallery.AlbumInput{
		Title:     req.Title,
		Date:      req.Date,
		EventType: req.EventType,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	photos := make([]photoResponse, 0, len(created.Photos))
	for _, p := range created.Photos {
		photos = append(photos, toPhotoResponse(p))
	}
	c.JSON(http.StatusCreated, albumDetailResponse{
		albumResponse: toAlbumResponse(created.Album),
		Photos:        photos,
	})
}

func (h *AlbumHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id", "album")
	if !ok {
		return
	}

	var req updateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	updated, err := h.manager.UpdateAlbum(c.Request.Context(), id, gallery.AlbumPatch{
		Title:      req.Title,
		Date:       req.Date,
		EventType:  req.EventType,
		CoverImage: storage.Optional[string]{Set: req.CoverImage.Set, Value: trimmedOrNil(req.CoverImage.Value)},
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAlbumResponse(updated))
}

func (h *AlbumHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id", "album")
	if !ok {
		return
	}

	if err := h.manager.DeleteAlbum(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	writeDeleted(c)
}

func (h *AlbumHandler) AddPhoto(c *gin.Context) {
	id, ok := idParam(c, "id", "album")
	if !ok {
		return
	}

	var req addPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	photo, err := h.manager.AddPhotoToAlbum(c.Request.Context(), id, gallery.PhotoInput{
		URL:     req.URL,
		Caption: req.Caption,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPhotoResponse(photo))
}

type uploadItemResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	PhotoID  int64  `json:"photoId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type batchResponse struct {
	Attached int                  `json:"attached"`
	Total    int                  `json:"total"`
	Photos   []photoResponse      `json:"photos"`
	Results  []uploadItemResponse `json:"results"`
}

// UploadPhotos stores the multipart files and attaches one photo per file.
// A partially attached batch answers 207 with the per-file results.
func (h *AlbumHandler) UploadPhotos(c *gin.Context) {
	id, ok := idParam(c, "id", "album")
	if !ok {
		return
	}

	files, err := h.uploads.Read(c)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.manager.AddPhotosFromUpload(c.Request.Context(), id, files, trimmedOrNil(optionalForm(c, "caption")))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := batchResponse{
		Attached: result.Attached,
		Total:    len(result.Items),
		Photos:   make([]photoResponse, 0, result.Attached),
		Results:  make([]uploadItemResponse, 0, len(result.Items)),
	}
	for _, item := range result.Items {
		r := uploadItemResponse{Filename: item.Filename}
		if item.File != nil {
			r.URL = item.File.URL
		}
		if item.Photo != nil {
			r.PhotoID = item.Photo.ID
			resp.Photos = append(resp.Photos, toPhotoResponse(*item.Photo))
		}
		if item.Err != nil {
			r.Error = itemMessage(item.Err)
		}
		resp.Results = append(resp.Results, r)
	}

	switch {
	case result.Complete():
		c.JSON(http.StatusCreated, resp)
	case result.Attached > 0:
		c.JSON(http.StatusMultiStatus, resp)
	default:
		c.JSON(apperr.KindOf(result.FirstError()).Status(), resp)
	}
}

func (h *AlbumHandler) SetCover(c *gin.Context) {
	id, ok := idParam(c, "id", "album")
	if !ok {
		return
	}

	var req setCoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	album, err := h.manager.SetCover(c.Request.Context(), id, req.PhotoID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAlbumResponse(album))
}

func toAlbumResponse(a storage.Album) albumResponse {
	return albumResponse{
		ID:         a.ID,
		Title:      a.Title,
		Date:       formatDate(a.Date),
		EventType:  string(a.EventType),
		CoverImage: a.CoverImage,
		PhotoCount: a.PhotoCount,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func toPhotoResponse(p storage.Photo) photoResponse {
	return photoResponse{
		ID:        p.ID,
		AlbumID:   p.AlbumID,
		URL:       p.URL,
		Caption:   p.Caption,
		TakenAt:   p.TakenAt,
		CreatedAt: p.CreatedAt,
	}
}

func itemMessage(err error) string {
	if errors.Is(err, gallery.ErrNotAttempted) {
		return "skipped after an earlier failure"
	}
	var e *apperr.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "failed to add photo"
}

func optionalForm(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}
