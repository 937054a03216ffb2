package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessChecker reports whether the location data can serve queries.
type ReadinessChecker interface {
	Ready() error
}

// Handler manages health check endpoints
type Handler struct {
	checker ReadinessChecker
}

// NewHandler creates a new health check handler. A nil checker is always ready.
func NewHandler(checker ReadinessChecker) *Handler {
	return &Handler{checker: checker}
}

// Health is the liveness probe endpoint
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready is the readiness probe endpoint; it fails until the dataset is loaded
// GET /ready
func (h *Handler) Ready(c *gin.Context) {
	if h.checker != nil {
		if err := h.checker.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
