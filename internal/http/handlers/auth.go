package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/parish/internal/auth"
	"github.com/Oxyrus/parish/internal/http/middleware"
)

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (auth.Principal, error)
}

type TokenIssuer interface {
	Issue(p auth.Principal) (string, error)
}

type AuthHandler struct {
	logger *slog.Logger
	gate   Authenticator
	tokens TokenIssuer
}

func NewAuthHandler(logger *slog.Logger, gate Authenticator, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		gate:   gate,
		tokens: tokens,
	}
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login accepts JSON or form credentials. On success it stores the admin id
// in the session cookie and also returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		writeBindError(c, err)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		h.logger.Warn("login attempt missing credentials", "ip", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	principal, err := h.gate.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrAuthFailed) {
			h.logger.Error("login failed unexpectedly", "ip", c.ClientIP(), "error", err)
		}
		h.logger.Warn("invalid login attempt", "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionAdminKey, principal.AdminID)
	if err := session.Save(); err != nil {
		h.logger.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}

	token, err := h.tokens.Issue(principal)
	if err != nil {
		h.logger.Error("failed to issue token", "adminID", principal.AdminID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}

	h.logger.Info("admin login successful", "adminID", principal.AdminID, "ip", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"admin": principal, "token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		h.logger.Error("failed to clear session", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": principal})
}
