package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheckFunc checks one dependency
type HealthCheckFunc func(ctx context.Context) error

// Component is a dependency reported by the readiness check. A nil Check
// means the dependency is not configured.
type Component struct {
	Name  string
	Check HealthCheckFunc
	// Optional components report unhealthy without failing readiness
	Optional bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	components []Component
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(components ...Component) *HealthHandler {
	return &HealthHandler{components: components}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadyResponse represents readiness check response
type ReadyResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// Health returns a simple health check (liveness)
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready returns a readiness check (readiness)
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string, len(h.components))
	allHealthy := true

	for _, comp := range h.components {
		if comp.Check == nil {
			components[comp.Name] = "not configured"
			continue
		}
		if err := comp.Check(ctx); err != nil {
			components[comp.Name] = "unhealthy: " + err.Error()
			if !comp.Optional {
				allHealthy = false
			}
			continue
		}
		components[comp.Name] = "healthy"
	}

	response := ReadyResponse{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	if allHealthy {
		response.Status = "ready"
		c.JSON(http.StatusOK, response)
	} else {
		response.Status = "not ready"
		c.JSON(http.StatusServiceUnavailable, response)
	}
}
