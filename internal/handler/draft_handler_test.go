package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/session-planner/internal/domain"
	"github.com/prohmpiriya/session-planner/internal/dto"
	"github.com/prohmpiriya/session-planner/internal/planner"
	"github.com/prohmpiriya/session-planner/internal/repository"
	"github.com/prohmpiriya/session-planner/internal/service"
	"github.com/prohmpiriya/session-planner/pkg/logger"
	"github.com/prohmpiriya/session-planner/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSessionConfigService is a mock implementation of SessionConfigService
type MockSessionConfigService struct {
	mock.Mock
}

func (m *MockSessionConfigService) CreateDraft(ctx context.Context, createdBy string, req *dto.CreateDraftRequest) (*dto.DraftResponse, error) {
	args := m.Called(ctx, createdBy, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DraftResponse), args.Error(1)
}

func (m *MockSessionConfigService) GetDraft(ctx context.Context, id string) (*dto.DraftResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DraftResponse), args.Error(1)
}

func (m *MockSessionConfigService) ListDrafts(ctx context.Context, filter *dto.DraftListFilter) ([]*dto.DraftResponse, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*dto.DraftResponse), args.Int(1), args.Error(2)
}

func (m *MockSessionConfigService) DeleteDraft(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionConfigService) ApplyAction(ctx context.Context, id string, req *dto.ActionRequest) (*dto.ActionResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ActionResponse), args.Error(1)
}

func (m *MockSessionConfigService) Payload(ctx context.Context, id string) (*dto.Payload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Payload), args.Error(1)
}

func (m *MockSessionConfigService) Completeness(ctx context.Context, id string) (*dto.CompletenessResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CompletenessResponse), args.Error(1)
}

func (m *MockSessionConfigService) Wait() {}

func setupDraftRouter(h *DraftHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.ContextKeyUserID, userID)
		}
		c.Next()
	})
	drafts := router.Group("/drafts")
	{
		drafts.POST("", h.Create)
		drafts.GET("", h.List)
		drafts.GET("/:id", h.GetByID)
		drafts.DELETE("/:id", h.Delete)
		drafts.POST("/:id/actions", h.ApplyAction)
		drafts.GET("/:id/payload", h.Payload)
		drafts.GET("/:id/completeness", h.Completeness)
	}
	return router
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Page    int   `json:"page"`
		PerPage int   `json:"per_page"`
		Total   int64 `json:"total"`
	} `json:"meta"`
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func TestDraftHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockSessionConfigService)
		svc.On("CreateDraft", mock.Anything, "user-1", &dto.CreateDraftRequest{Currency: "EUR"}).
			Return(&dto.DraftResponse{ID: "d-1", Version: 1, CreatedBy: "user-1"}, nil)
		router := setupDraftRouter(NewDraftHandler(svc), "user-1")

		resp := doJSON(router, http.MethodPost, "/drafts", map[string]any{"currency": "EUR"})

		assert.Equal(t, http.StatusCreated, resp.Code)
		env := decode(t, resp)
		assert.True(t, env.Success)
		assert.Contains(t, string(env.Data), `"id":"d-1"`)
		svc.AssertExpectations(t)
	})

	t.Run("empty body uses defaults", func(t *testing.T) {
		svc := new(MockSessionConfigService)
		svc.On("CreateDraft", mock.Anything, "user-1", &dto.CreateDraftRequest{}).
			Return(&dto.DraftResponse{ID: "d-2", Version: 1}, nil)
		router := setupDraftRouter(NewDraftHandler(svc), "user-1")

		req := httptest.NewRequest(http.MethodPost, "/drafts", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusCreated, resp.Code)
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name       string
		userID     string
		body       string
		wantStatus int
	}{
		{name: "unauthenticated", userID: "", body: `{}`, wantStatus: http.StatusUnauthorized},
		{name: "malformed json", userID: "user-1", body: `{"currency":`, wantStatus: http.StatusBadRequest},
		{name: "bad currency", userID: "user-1", body: `{"currency":"EURO"}`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSessionConfigService)
			router := setupDraftRouter(NewDraftHandler(svc), tt.userID)

			req := httptest.NewRequest(http.MethodPost, "/drafts", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tt.wantStatus, resp.Code)
			svc.AssertNotCalled(t, "CreateDraft", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDraftHandler_List(t *testing.T) {
	svc := new(MockSessionConfigService)
	svc.On("ListDrafts", mock.Anything, &dto.DraftListFilter{CreatedBy: "user-1", Limit: 10, Offset: 10}).
		Return([]*dto.DraftResponse{{ID: "d-3"}}, 21, nil)
	router := setupDraftRouter(NewDraftHandler(svc), "user-1")

	resp := doJSON(router, http.MethodGet, "/drafts?limit=10&offset=10", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	env := decode(t, resp)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, 10, env.Meta.PerPage)
	assert.Equal(t, int64(21), env.Meta.Total)
	svc.AssertExpectations(t)
}

func TestDraftHandler_ApplyAction(t *testing.T) {
	index := 0
	valid := &dto.ActionRequest{Type: dto.ActionCommitTime, Date: "2024-03-04", Index: &index, Time: "930"}

	tests := []struct {
		name       string
		body       any
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "applied", body: valid, wantStatus: http.StatusOK},
		{name: "missing index", body: map[string]any{"type": "commit_time", "date": "2024-03-04"}, wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST"},
		{name: "unknown type", body: map[string]any{"type": "explode"}, wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST"},
		{name: "draft not found", body: valid, svcErr: service.ErrDraftNotFound, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "another user's draft", body: valid, svcErr: service.ErrForbidden, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "version conflict", body: valid, svcErr: service.ErrVersionConflict, wantStatus: http.StatusConflict, wantCode: "CONFLICT"},
		{name: "date not selected", body: valid, svcErr: fmt.Errorf("%w: 2024-03-04", domain.ErrDateNotSelected), wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "default group", body: valid, svcErr: domain.ErrDefaultGroup, wantStatus: http.StatusConflict, wantCode: "CONFLICT"},
		{name: "invalid price", body: valid, svcErr: domain.ErrInvalidPrice, wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST"},
		{name: "store down", body: valid, svcErr: errors.New("connection refused"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSessionConfigService)
			if tt.svcErr != nil {
				svc.On("ApplyAction", mock.Anything, "d-1", mock.AnythingOfType("*dto.ActionRequest")).Return(nil, tt.svcErr)
			} else {
				svc.On("ApplyAction", mock.Anything, "d-1", valid).Return(&dto.ActionResponse{
					DraftID: "d-1",
					Version: 4,
					View:    planner.View{Currency: "USD"},
				}, nil)
			}
			router := setupDraftRouter(NewDraftHandler(svc), "user-1")

			resp := doJSON(router, http.MethodPost, "/drafts/d-1/actions", tt.body)

			assert.Equal(t, tt.wantStatus, resp.Code)
			env := decode(t, resp)
			if tt.wantCode == "" {
				assert.True(t, env.Success)
				assert.Contains(t, string(env.Data), `"version":4`)
				return
			}
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestDraftHandler_ReadEndpoints(t *testing.T) {
	svc := new(MockSessionConfigService)
	svc.On("GetDraft", mock.Anything, "d-1").Return(&dto.DraftResponse{ID: "d-1", Version: 2}, nil)
	svc.On("GetDraft", mock.Anything, "missing").Return(nil, service.ErrDraftNotFound)
	svc.On("Payload", mock.Anything, "d-1").Return(&dto.Payload{
		Dates:  map[string]dto.DatePayload{"2024-03-04": {Times: []string{"09:30"}, Groups: []string{"A"}}},
		Groups: map[string]dto.GroupPayload{},
	}, nil)
	svc.On("Completeness", mock.Anything, "d-1").Return(&dto.CompletenessResponse{
		DraftID:  "d-1",
		Complete: false,
		Problems: []planner.Problem{{Rule: planner.RuleInvalidPrice, Slot: -1, Area: 0, Tier: 0, Group: "A"}},
	}, nil)
	svc.On("DeleteDraft", mock.Anything, "d-1").Return(nil)
	svc.On("DeleteDraft", mock.Anything, "missing").Return(service.ErrDraftNotFound)
	router := setupDraftRouter(NewDraftHandler(svc), "user-1")

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"get", http.MethodGet, "/drafts/d-1", http.StatusOK, `"version":2`},
		{"get missing", http.MethodGet, "/drafts/missing", http.StatusNotFound, `"NOT_FOUND"`},
		{"payload", http.MethodGet, "/drafts/d-1/payload", http.StatusOK, `"times":["09:30"]`},
		{"completeness", http.MethodGet, "/drafts/d-1/completeness", http.StatusOK, `"rule":"invalid_price"`},
		{"delete", http.MethodDelete, "/drafts/d-1", http.StatusOK, `Draft deleted successfully`},
		{"delete missing", http.MethodDelete, "/drafts/missing", http.StatusNotFound, `"NOT_FOUND"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(router, tt.method, tt.path, nil)
			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.wantBody)
		})
	}
	svc.AssertExpectations(t)
}

func TestDraftHandler_OwnerScoping(t *testing.T) {
	svc := service.NewSessionConfigService(repository.NewMemoryDraftRepository(), nil, &service.SessionConfigServiceConfig{
		Logger: logger.NewNop(),
	})
	draft, err := svc.CreateDraft(context.Background(), "owner", nil)
	require.NoError(t, err)

	newRouter := func(userID, role string) *gin.Engine {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyUserID, userID)
			c.Set(middleware.ContextKeyRole, role)
			c.Next()
		})
		h := NewDraftHandler(svc)
		router.GET("/drafts/:id", h.GetByID)
		router.DELETE("/drafts/:id", h.Delete)
		router.POST("/drafts/:id/actions", h.ApplyAction)
		router.GET("/drafts/:id/payload", h.Payload)
		router.GET("/drafts/:id/completeness", h.Completeness)
		return router
	}
	path := "/drafts/" + draft.ID
	action := map[string]any{"type": "select_dates", "dates": []string{"2024-03-04"}}

	t.Run("other organizer is forbidden", func(t *testing.T) {
		router := newRouter("intruder", "organizer")
		for _, req := range []struct{ method, path string }{
			{http.MethodGet, path},
			{http.MethodGet, path + "/payload"},
			{http.MethodGet, path + "/completeness"},
			{http.MethodPost, path + "/actions"},
			{http.MethodDelete, path},
		} {
			var body any
			if req.method == http.MethodPost {
				body = action
			}
			resp := doJSON(router, req.method, req.path, body)
			assert.Equal(t, http.StatusForbidden, resp.Code, "%s %s", req.method, req.path)
		}
	})

	t.Run("owner can act", func(t *testing.T) {
		resp := doJSON(newRouter("owner", "organizer"), http.MethodPost, path+"/actions", action)
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("admin reaches every draft", func(t *testing.T) {
		router := newRouter("root", "admin")
		assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, path, nil).Code)
		assert.Equal(t, http.StatusOK, doJSON(router, http.MethodDelete, path, nil).Code)
	})

	svc.Wait()
}
