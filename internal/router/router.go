package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/parish/internal/auth"
	"github.com/Oxyrus/parish/internal/config"
	"github.com/Oxyrus/parish/internal/gallery"
	"github.com/Oxyrus/parish/internal/http/handlers"
	"github.com/Oxyrus/parish/internal/http/middleware"
	"github.com/Oxyrus/parish/internal/http/validation"
	"github.com/Oxyrus/parish/internal/settings"
	"github.com/Oxyrus/parish/internal/storage"
)

// Deps are the services the routes are served from.
type Deps struct {
	Store     storage.Store
	Gate      *auth.Gate
	Tokens    *auth.Tokens
	Settings  *settings.Service
	Files     gallery.Ingester
	Inspector handlers.Inspector
}

func New(cfg *config.Config, logger *slog.Logger, deps Deps) (*gin.Engine, error) {
	if err := validation.RegisterGin(); err != nil {
		return nil, err
	}

	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{cfg.PublicBase})))

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.SessionCookie, store))

	manager := gallery.NewManager(logger, deps.Store.Albums(), deps.Store.Photos(), deps.Files)
	query := gallery.NewQuery(manager)
	uploads := handlers.NewUploads(deps.Inspector, cfg.MaxUploadBytes())

	albumHandler := handlers.NewAlbumHandler(logger, manager, query, uploads)
	photoHandler := handlers.NewPhotoHandler(logger, manager)
	uploadHandler := handlers.NewUploadHandler(logger, deps.Store.Albums(), deps.Files, uploads)
	sermonHandler := handlers.NewSermonHandler(logger, deps.Store.Sermons())
	postHandler := handlers.NewPostHandler(logger, deps.Store.Posts())
	departmentHandler := handlers.NewDepartmentHandler(logger, deps.Store.Departments())
	settingsHandler := handlers.NewSettingsHandler(logger, deps.Settings)
	authHandler := handlers.NewAuthHandler(logger, deps.Gate, deps.Tokens)
	pageHandler := handlers.NewGalleryPageHandler(logger, query, deps.Settings)

	r.GET("/healthz", handlers.Health(logger, deps.Store))

	if cfg.Storage == config.StorageDisk {
		r.Static(cfg.PublicBase, cfg.UploadDir)
	}

	r.GET("/gallery", pageHandler.Index)
	r.GET("/gallery/:id", pageHandler.Album)

	r.GET("/albums", albumHandler.List)
	r.GET("/albums/:id", albumHandler.Get)
	r.GET("/sermons", sermonHandler.List)
	r.GET("/sermons/:id", sermonHandler.Get)
	r.GET("/posts", postHandler.List)
	r.GET("/posts/:id", postHandler.Get)
	r.GET("/departments", departmentHandler.List)
	r.GET("/departments/:id", departmentHandler.Get)
	r.GET("/settings", settingsHandler.Get)

	r.POST("/login", middleware.RateLimit(logger, cfg.LoginRPS, cfg.LoginBurst), authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	admin := r.Group("/")
	admin.Use(middleware.RequireAdmin(deps.Gate, deps.Tokens))
	admin.GET("/me", authHandler.Me)

	admin.POST("/albums", albumHandler.Create)
	admin.PATCH("/albums/:id", albumHandler.Update)
	admin.DELETE("/albums/:id", albumHandler.Delete)
	admin.POST("/albums/:id/photos", albumHandler.AddPhoto)
	admin.POST("/albums/:id/photos/upload", albumHandler.UploadPhotos)
	admin.PUT("/albums/:id/cover", albumHandler.SetCover)
	admin.DELETE("/photos/:id", photoHandler.Delete)
	admin.POST("/upload", uploadHandler.Upload)

	admin.POST("/sermons", sermonHandler.Create)
	admin.PATCH("/sermons/:id", sermonHandler.Update)
	admin.DELETE("/sermons/:id", sermonHandler.Delete)

	admin.POST("/posts", postHandler.Create)
	admin.PATCH("/posts/:id", postHandler.Update)
	admin.DELETE("/posts/:id", postHandler.Delete)

	admin.POST("/departments", departmentHandler.Create)
	admin.PATCH("/departments/:id", departmentHandler.Update)
	admin.DELETE("/departments/:id", departmentHandler.Delete)

	admin.PUT("/settings", settingsHandler.Replace)
	admin.PATCH("/settings", settingsHandler.Update)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r, nil
}
