package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/parish/internal/apperr"
	"github.com/Oxyrus/parish/internal/http/validation"
	"github.com/Oxyrus/parish/internal/storage"
)

// writeError answers with the status of err's kind and its short message.
// Wrapped causes are never sent to the client.
func writeError(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil && e.Kind.Status() >= http.StatusInternalServerError {
		_ = c.Error(e.Err)
	}
	c.JSON(e.Kind.Status(), gin.H{"error": msg})
}

func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message(err)})
}

func writeDeleted(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// idParam reads a positive integer path parameter, answering 404 otherwise.
func idParam(c *gin.Context, name, entity string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
		return 0, false
	}
	return id, true
}

// limitParam reads ?limit=, treating anything missing or invalid as no limit.
func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseCalendarDate(raw string) (time.Time, error) {
	return time.Parse(storage.DateLayout, strings.TrimSpace(raw))
}

func formatDate(t time.Time) string {
	return t.Format(storage.DateLayout)
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
