package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/parish/internal/storage"
)

type SettingsService interface {
	Get(ctx context.Context) (storage.Settings, error)
	Upsert(ctx context.Context, next storage.Settings) (storage.Settings, error)
	Update(ctx context.Context, input storage.SettingsUpdate) (storage.Settings, error)
}

type SettingsHandler struct {
	logger   *slog.Logger
	settings SettingsService
}

func NewSettingsHandler(logger *slog.Logger, settings SettingsService) *SettingsHandler {
	return &SettingsHandler{
		logger:   logger,
		settings: settings,
	}
}

type settingsResponse struct {
	ChurchName   string    `json:"churchName"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	AboutUs      string    `json:"aboutUs"`
	Vision       string    `json:"vision"`
	Mission      string    `json:"mission"`
	FacebookURL  *string   `json:"facebookUrl"`
	InstagramURL *string   `json:"instagramUrl"`
	YoutubeURL   *string   `json:"youtubeUrl"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type replaceSettingsRequest struct {
	ChurchName   string  `json:"churchName" binding:"required"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	AboutUs      string  `json:"aboutUs"`
	Vision       string  `json:"vision"`
	Mission      string  `json:"mission"`
	FacebookURL  *string `json:"facebookUrl"`
	InstagramURL *string `json:"instagramUrl"`
	YoutubeURL   *string `json:"youtubeUrl"`
}

type updateSettingsRequest struct {
	ChurchName   *string                  `json:"churchName"`
	Address      *string                  `json:"address"`
	City         *string                  `json:"city"`
	Phone        *string                  `json:"phone"`
	Email        *string                  `json:"email"`
	AboutUs      *string                  `json:"aboutUs"`
	Vision       *string                  `json:"vision"`
	Mission      *string                  `json:"mission"`
	FacebookURL  storage.Optional[string] `json:"facebookUrl"`
	InstagramURL storage.Optional[string] `json:"instagramUrl"`
	YoutubeURL   storage.Optional[string] `json:"youtubeUrl"`
}

func (h *SettingsHandler) Get(c *gin.Context) {
	current, err := h.settings.Get(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettingsResponse(current))
}

// Replace overwrites every field, as the admin settings form submits them all.
func (h *SettingsHandler) Replace(c *gin.Context) {
	var req replaceSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	saved, err := h.settings.Upsert(c.Request.Context(), storage.Settings{
		ChurchName:   req.ChurchName,
		Address:      req.Address,
		City:         req.City,
		Phone:        req.Phone,
		Email:        req.Email,
		AboutUs:      req.AboutUs,
		Vision:       req.Vision,
		Mission:      req.Mission,
		FacebookURL:  req.FacebookURL,
		InstagramURL: req.InstagramURL,
		YoutubeURL:   req.YoutubeURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSettingsResponse(saved))
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	saved, err := h.settings.Update(c.Request.Context(), storage.SettingsUpdate{
		ChurchName:   req.ChurchName,
		Address:      req.Address,
		City:         req.City,
		Phone:        req.Phone,
		Email:        req.Email,
		AboutUs:      req.AboutUs,
		Vision:       req.Vision,
		Mission:      req.Mission,
		FacebookURL:  req.FacebookURL,
		InstagramURL: req.InstagramURL,
		YoutubeURL:   req.YoutubeURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSettingsResponse(saved))
}

func toSettingsResponse(s storage.Settings) settingsResponse {
	return settingsResponse{
		ChurchName:   s.ChurchName,
		Address:      s.Address,
		City:         s.City,
		Phone:        s.Phone,
		Email:        s.Email,
		AboutUs:      s.AboutUs,
		Vision:       s.Vision,
		Mission:      s.Mission,
		FacebookURL:  s.FacebookURL,
		InstagramURL: s.InstagramURL,
		YoutubeURL:   s.YoutubeURL,
		UpdatedAt:    s.UpdatedAt,
	}
}
