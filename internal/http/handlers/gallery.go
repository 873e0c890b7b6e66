package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/parish/internal/apperr"
	"github.com/Oxyrus/parish/internal/gallery"
	"github.com/Oxyrus/parish/internal/http/render"
	"github.com/Oxyrus/parish/internal/storage"
	"github.com/Oxyrus/parish/web/pages"
)

// GalleryPageHandler renders the public HTML gallery.
type GalleryPageHandler struct {
	logger   *slog.Logger
	query    *gallery.Query
	settings SettingsService
}

func NewGalleryPageHandler(logger *slog.Logger, query *gallery.Query, settings SettingsService) *GalleryPageHandler {
	return &GalleryPageHandler{
		logger:   logger,
		query:    query,
		settings: settings,
	}
}

func (h *GalleryPageHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()

	eventType, err := gallery.ParseFilter(c.Query("type"))
	if err != nil {
		c.String(http.StatusBadRequest, "unknown album type")
		return
	}
	order, err := gallery.ParseOrder(c.Query("sort"))
	if err != nil {
		c.String(http.StatusBadRequest, "unknown sort order")
		return
	}

	albums, err := h.query.Albums(ctx, storage.AlbumFilter{EventType: eventType, Order: order})
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load albums")
		return
	}

	sort := "newest"
	if order == storage.OldestFirst {
		sort = "oldest"
	}

	render.HTML(c, http.StatusOK, pages.Gallery(pages.GalleryData{
		ChurchName: h.churchName(ctx),
		Albums:     albums,
		Type:       string(eventType),
		Sort:       sort,
	}))
}

func (h *GalleryPageHandler) Album(c *gin.Context) {
	id, ok := idParam(c, "id", "album")
	if !ok {
		return
	}

	album, err := h.query.Album(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.String(http.StatusNotFound, "album not found")
			return
		}
		c.String(http.StatusInternalServerError, "failed to load album")
		return
	}

	render.HTML(c, http.StatusOK, pages.Album(pages.AlbumData{
		ChurchName: h.churchName(c.Request.Context()),
		Album:      album,
	}))
}

func (h *GalleryPageHandler) churchName(ctx context.Context) string {
	if h.settings == nil {
		return ""
	}
	s, err := h.settings.Get(ctx)
	if err != nil {
		h.logger.Warn("failed to load settings for page header", "error", err)
		return ""
	}
	return s.ChurchName
}
