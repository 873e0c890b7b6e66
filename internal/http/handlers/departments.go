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

type DepartmentHandler struct {
	logger      *slog.Logger
	departments storage.Departments
}

func NewDepartmentHandler(logger *slog.Logger, departments storage.Departments) *DepartmentHandler {
	return &DepartmentHandler{
		logger:      logger,
		departments: departments,
	}
}

type departmentResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Leader      *string   `json:"leader"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type createDepartmentRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Leader      *string `json:"leader"`
	ImageURL    *string `json:"imageUrl"`
}

type updateDepartmentRequest struct {
	Name        *string                  `json:"name"`
	Description *string                  `json:"description"`
	Leader      storage.Optional[string] `json:"leader"`
	ImageURL    storage.Optional[string] `json:"imageUrl"`
}

func (h *DepartmentHandler) List(c *gin.Context) {
	departments, err := h.departments.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list departments", "error", err)
		writeError(c, apperr.From(err, "failed to load departments"))
		return
	}

	out := make([]departmentResponse, 0, len(departments))
	for _, d := range departments {
		out = append(out, toDepartmentResponse(d))
	}
	c.JSON(http.StatusOK, out)
}

func (h *DepartmentHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id", "department")
	if !ok {
		return
	}

	department, err := h.departments.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load department", id)
		return
	}

	c.JSON(http.StatusOK, toDepartmentResponse(department))
}

func (h *DepartmentHandler) Create(c *gin.Context) {
	var req createDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(c, apperr.BadRequest("name is required"))
		return
	}

	department, err := h.departments.Create(c.Request.Context(), storage.DepartmentCreate{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Leader:      trimmedOrNil(req.Leader),
		ImageURL:    trimmedOrNil(req.ImageURL),
	})
	if err != nil {
		h.logger.Error("failed to create department", "error", err)
		writeError(c, apperr.From(err, "failed to create department"))
		return
	}

	h.logger.Info("department created", "departmentID", department.ID)
	c.JSON(http.StatusCreated, toDepartmentResponse(department))
}

// Update merges the supplied fields. Empty name or description are ignored;
// an empty leader or image clears it.
func (h *DepartmentHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id", "department")
	if !ok {
		return
	}

	var req updateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	department, err := h.departments.Update(c.Request.Context(), id, storage.DepartmentUpdate{
		Name:        trimmedOrNil(req.Name),
		Description: trimmedOrNil(req.Description),
		Leader:      blankOptional(req.Leader),
		ImageURL:    blankOptional(req.ImageURL),
	})
	if err != nil {
		h.fail(c, err, "failed to update department", id)
		return
	}

	c.JSON(http.StatusOK, toDepartmentResponse(department))
}

func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id", "department")
	if !ok {
		return
	}

	if err := h.departments.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to delete department", id)
		return
	}

	h.logger.Info("department deleted", "departmentID", id)
	writeDeleted(c)
}

func (h *DepartmentHandler) fail(c *gin.Context, err error, msg string, id int64) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(c, apperr.NotFound("department not found"))
		return
	}
	h.logger.Error(msg, "departmentID", id, "error", err)
	writeError(c, apperr.From(err, msg))
}

func toDepartmentResponse(d storage.Department) departmentResponse {
	return departmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Leader:      d.Leader,
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
