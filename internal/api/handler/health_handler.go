package handler

import (
	"net/http"
	"slices"
	"sort"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and backing service health
type HealthHandler struct {
	service  string
	checkers map[string]HealthChecker
	critical []string
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(deps *Dependencies) *HealthHandler {
	return &HealthHandler{
		service:  deps.ServiceName,
		checkers: deps.Health,
		critical: deps.Critical,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	components := make(gin.H, len(names))
	for _, name := range names {
		if err := h.checkers[name].HealthCheck(c.Request.Context()); err != nil {
			components[name] = err.Error()
			if slices.Contains(h.critical, name) {
				status = http.StatusServiceUnavailable
			}
			continue
		}
		components[name] = "ok"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":     overall,
		"service":    h.service,
		"components": components,
	})
}
