package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/parish/internal/gallery"
)

type PhotoHandler struct {
	logger  *slog.Logger
	manager *gallery.Manager
}

func NewPhotoHandler(logger *slog.Logger, manager *gallery.Manager) *PhotoHandler {
	return &PhotoHandler{
		logger:  logger,
		manager: manager,
	}
}

// Delete removes the photo record; the stored file stays where it is.
func (h *PhotoHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id", "photo")
	if !ok {
		return
	}

	if err := h.manager.DeletePhoto(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	writeDeleted(c)
}
