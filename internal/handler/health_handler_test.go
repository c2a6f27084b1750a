package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy(ctx context.Context) error { return nil }

func failing(ctx context.Context) error { return errors.New("connection refused") }

func TestHealthHandler_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", NewHealthHandler().Health)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"healthy"`)
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		components []Component
		wantStatus int
		want       map[string]string
	}{
		{
			name: "all healthy",
			components: []Component{
				{Name: "database", Check: healthy},
				{Name: "redis", Check: healthy},
			},
			wantStatus: http.StatusOK,
			want:       map[string]string{"database": "healthy", "redis": "healthy"},
		},
		{
			name: "database down",
			components: []Component{
				{Name: "database", Check: failing},
				{Name: "redis", Check: healthy},
			},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"database": "unhealthy: connection refused", "redis": "healthy"},
		},
		{
			name: "optional kafka down",
			components: []Component{
				{Name: "database", Check: healthy},
				{Name: "kafka", Check: failing, Optional: true},
			},
			wantStatus: http.StatusOK,
			want:       map[string]string{"database": "healthy", "kafka": "unhealthy: connection refused"},
		},
		{
			name:       "not configured",
			components: []Component{{Name: "redis"}},
			wantStatus: http.StatusOK,
			want:       map[string]string{"redis": "not configured"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.GET("/ready", NewHealthHandler(tt.components...).Ready)

			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantStatus, resp.Code)
			var body ReadyResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Components)
		})
	}
}
