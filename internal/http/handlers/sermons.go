package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/parish/internal/apperr"
	"github.com/Oxyrus/parish/internal/storage"
)

type SermonHandler struct {
	logger  *slog.Logger
	sermons storage.Sermons
}

func NewSermonHandler(logger *slog.Logger, sermons storage.Sermons) *SermonHandler {
	return &SermonHandler{
		logger:  logger,
		sermons: sermons,
	}
}

type sermonResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	Date         string    `json:"date"`
	Speaker      string    `json:"speaker"`
	Scripture    *string   `json:"scripture"`
	VideoURL     *string   `json:"videoUrl"`
	AudioURL     *string   `json:"audioUrl"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type createSermonRequest struct {
	Title        string  `json:"title" binding:"required"`
	Description  *string `json:"description"`
	Date         string  `json:"date" binding:"required,caldate"`
	Speaker      string  `json:"speaker" binding:"required"`
	Scripture    *string `json:"scripture"`
	VideoURL     *string `json:"videoUrl"`
	AudioURL     *string `json:"audioUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

type updateSermonRequest struct {
	Title        *string                  `json:"title"`
	Date         *string                  `json:"date" binding:"omitempty,caldate"`
	Speaker      *string                  `json:"speaker"`
	Description  storage.Optional[string] `json:"description"`
	Scripture    storage.Optional[string] `json:"scripture"`
	VideoURL     storage.Optional[string] `json:"videoUrl"`
	AudioURL     storage.Optional[string] `json:"audioUrl"`
	ThumbnailURL storage.Optional[string] `json:"thumbnailUrl"`
}

func (h *SermonHandler) List(c *gin.Context) {
	sermons, err := h.sermons.List(c.Request.Context(), limitParam(c))
	if err != nil {
		h.logger.Error("failed to list sermons", "error", err)
		writeError(c, apperr.From(err, "failed to load sermons"))
		return
	}

	out := make([]sermonResponse, 0, len(sermons))
	for _, s := range sermons {
		out = append(out, toSermonResponse(s))
	}
	c.JSON(http.StatusOK, out)
}

func (h *SermonHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id", "sermon")
	if !ok {
		return
	}

	sermon, err := h.sermons.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load sermon", id)
		return
	}

	c.JSON(http.StatusOK, toSermonResponse(sermon))
}

func (h *SermonHandler) Create(c *gin.Context) {
	var req createSermonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	title := strings.TrimSpace(req.Title)
	speaker := strings.TrimSpace(req.Speaker)
	if title == "" || speaker == "" {
		writeError(c, apperr.BadRequest("title and speaker are required"))
		return
	}
	date, err := parseCalendarDate(req.Date)
	if err != nil {
		writeError(c, apperr.BadRequest("date must be formatted as YYYY-MM-DD"))
		return
	}

	sermon, err := h.sermons.Create(c.Request.Context(), storage.SermonCreate{
		Title:        title,
		Description:  trimmedOrNil(req.Description),
		Date:         date,
		Speaker:      speaker,
		Scripture:    trimmedOrNil(req.Scripture),
		VideoURL:     trimmedOrNil(req.VideoURL),
		AudioURL:     trimmedOrNil(req.AudioURL),
		ThumbnailURL: trimmedOrNil(req.ThumbnailURL),
	})
	if err != nil {
		h.logger.Error("failed to create sermon", "error", err)
		writeError(c, apperr.From(err, "failed to create sermon"))
		return
	}

	h.logger.Info("sermon created", "sermonID", sermon.ID)
	c.JSON(http.StatusCreated, toSermonResponse(sermon))
}

func (h *SermonHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id", "sermon")
	if !ok {
		return
	}

	var req updateSermonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	input := storage.SermonUpdate{
		Title:        req.Title,
		Speaker:      req.Speaker,
		Description:  blankOptional(req.Description),
		Scripture:    blankOptional(req.Scripture),
		VideoURL:     blankOptional(req.VideoURL),
		AudioURL:     blankOptional(req.AudioURL),
		ThumbnailURL: blankOptional(req.ThumbnailURL),
	}
	if req.Date != nil {
		date, err := parseCalendarDate(*req.Date)
		if err != nil {
			writeError(c, apperr.BadRequest("date must be formatted as YYYY-MM-DD"))
			return
		}
		input.Date = &date
	}

	sermon, err := h.sermons.Update(c.Request.Context(), id, input)
	if err != nil {
		h.fail(c, err, "failed to update sermon", id)
		return
	}

	c.JSON(http.StatusOK, toSermonResponse(sermon))
}

func (h *SermonHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id", "sermon")
	if !ok {
		return
	}

	if err := h.sermons.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to delete sermon", id)
		return
	}

	h.logger.Info("sermon deleted", "sermonID", id)
	writeDeleted(c)
}

func (h *SermonHandler) fail(c *gin.Context, err error, msg string, id int64) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(c, apperr.NotFound("sermon not found"))
		return
	}
	h.logger.Error(msg, "sermonID", id, "error", err)
	writeError(c, apperr.From(err, msg))
}

func toSermonResponse(s storage.Sermon) sermonResponse {
	return sermonResponse{
		ID:           s.ID,
		Title:        s.Title,
		Description:  s.Description,
		Date:         formatDate(s.Date),
		Speaker:      s.Speaker,
		Scripture:    s.Scripture,
		VideoURL:     s.VideoURL,
		AudioURL:     s.AudioURL,
		ThumbnailURL: s.ThumbnailURL,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// blankOptional turns an explicitly empty string into a null.
func blankOptional(o storage.Optional[string]) storage.Optional[string] {
	if o.Set {
		o.Value = trimmedOrNil(o.Value)
	}
	return o
}
