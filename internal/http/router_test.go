package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func TestRouter_Endpoints(t *testing.T) {
	api := newTestAPI(t, []model.Product{tofu()})

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"healthz", http.MethodGet, "/healthz", http.StatusOK},
		{"readyz", http.MethodGet, "/readyz", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"swagger", http.MethodGet, "/swagger/index.html", http.StatusOK},
		{"products", http.MethodGet, "/api/products", http.StatusOK},
		{"planner", http.MethodGet, "/api/planner", http.StatusOK},
		{"session", http.MethodGet, "/api/session", http.StatusOK},
		{"backup export", http.MethodGet, "/api/transfer/backup", http.StatusOK},
		{"share import without body", http.MethodPost, "/api/share/import", http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/recipes", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(tt.method, tt.path, "")
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRouter_RequestID(t *testing.T) {
	api := newTestAPI(t, nil)

	w := api.do(http.MethodGet, "/api/products", "", middleware.RequestIDHeader, "req-42")

	assert.Equal(t, "req-42", w.Header().Get(middleware.RequestIDHeader))
	assert.Contains(t, w.Body.String(), `"request_id":"req-42"`)
}

func TestRouter_RateLimit(t *testing.T) {
	router := NewRouter(NewHandler(Services{}), NewHealthHandler(), RouterConfig{
		RateLimit:  2,
		RateWindow: time.Minute,
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_LookupDisabledWithoutSearcher(t *testing.T) {
	router := NewRouter(NewHandler(Services{}), nil, DefaultRouterConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/lookup/products?q=tofu", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SwaggerBasicAuth(t *testing.T) {
	router := NewRouter(nil, nil, RouterConfig{SwaggerUser: "docs", SwaggerPass: "secret"})

	tests := []struct {
		name           string
		auth           bool
		expectedStatus int
	}{
		{"without credentials", false, http.StatusUnauthorized},
		{"with credentials", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
			if tt.auth {
				req.SetBasicAuth("docs", "secret")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestNewRouter_NilHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	assert.NotNil(t, NewRouter(nil, nil, DefaultRouterConfig()))
}
