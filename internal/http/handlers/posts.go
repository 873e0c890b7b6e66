package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/Oxyrus/parish/internal/apperr"
	"github.com/Oxyrus/parish/internal/storage"
)

var contentPolicy = bluemonday.UGCPolicy()

// renderContent converts post markdown to sanitized HTML.
func renderContent(src string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return contentPolicy.Sanitize(buf.String()), nil
}

type PostHandler struct {
	logger *slog.Logger
	posts  storage.Posts
}

func NewPostHandler(logger *slog.Logger, posts storage.Posts) *PostHandler {
	return &PostHandler{
		logger: logger,
		posts:  posts,
	}
}

type postResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"contentHtml"`
	Type        string    `json:"type"`
	Author      *string   `json:"author"`
	ImageURL    *string   `json:"imageUrl"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type createPostRequest struct {
	Title    string  `json:"title" binding:"required"`
	Content  string  `json:"content" binding:"required"`
	Type     string  `json:"type" binding:"required,oneof=testimony news"`
	Author   *string `json:"author"`
	ImageURL *string `json:"imageUrl"`
}

type updatePostRequest struct {
	Title    *string                  `json:"title"`
	Content  *string                  `json:"content"`
	Type     *string                  `json:"type" binding:"omitempty,oneof=testimony news"`
	Author   storage.Optional[string] `json:"author"`
	ImageURL storage.Optional[string] `json:"imageUrl"`
}

func (h *PostHandler) List(c *gin.Context) {
	filter := storage.PostFilter{Limit: limitParam(c)}
	switch t := strings.ToLower(strings.TrimSpace(c.Query("type"))); t {
	case "", "all":
	default:
		filter.Type = storage.PostType(t)
		if !filter.Type.Valid() {
			writeError(c, apperr.BadRequest("type must be all, testimony or news"))
			return
		}
	}

	posts, err := h.posts.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list posts", "type", filter.Type, "error", err)
		writeError(c, apperr.From(err, "failed to load posts"))
		return
	}

	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, h.toPostResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id", "post")
	if !ok {
		return
	}

	post, err := h.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load post", id)
		return
	}

	c.JSON(http.StatusOK, h.toPostResponse(post))
}

func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" || strings.TrimSpace(req.Content) == "" {
		writeError(c, apperr.BadRequest("title and content are required"))
		return
	}

	post, err := h.posts.Create(c.Request.Context(), storage.PostCreate{
		Title:    title,
		Content:  req.Content,
		Type:     storage.PostType(req.Type),
		Author:   trimmedOrNil(req.Author),
		ImageURL: trimmedOrNil(req.ImageURL),
	})
	if err != nil {
		h.logger.Error("failed to create post", "error", err)
		writeError(c, apperr.From(err, "failed to create post"))
		return
	}

	h.logger.Info("post created", "postID", post.ID, "type", post.Type)
	c.JSON(http.StatusCreated, h.toPostResponse(post))
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id", "post")
	if !ok {
		return
	}

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	input := storage.PostUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Author:   blankOptional(req.Author),
		ImageURL: blankOptional(req.ImageURL),
	}
	if req.Type != nil {
		t := storage.PostType(*req.Type)
		input.Type = &t
	}

	post, err := h.posts.Update(c.Request.Context(), id, input)
	if err != nil {
		h.fail(c, err, "failed to update post", id)
		return
	}

	c.JSON(http.StatusOK, h.toPostResponse(post))
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id", "post")
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to delete post", id)
		return
	}

	h.logger.Info("post deleted", "postID", id)
	writeDeleted(c)
}

func (h *PostHandler) fail(c *gin.Context, err error, msg string, id int64) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(c, apperr.NotFound("post not found"))
		return
	}
	h.logger.Error(msg, "postID", id, "error", err)
	writeError(c, apperr.From(err, msg))
}

func (h *PostHandler) toPostResponse(p storage.Post) postResponse {
	html, err := renderContent(p.Content)
	if err != nil {
		h.logger.Warn("failed to render post content", "postID", p.ID, "error", err)
	}

	return postResponse{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		ContentHTML: html,
		Type:        string(p.Type),
		Author:      p.Author,
		ImageURL:    p.ImageURL,
		Date:        p.Date,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
