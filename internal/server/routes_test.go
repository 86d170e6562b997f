package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimestats/querygateway/internal/constants"
	"github.com/crimestats/querygateway/internal/models"
)

func TestRoutes_AnalyticsEndpointsRegistered(t *testing.T) {
	s, _ := newMockServer(t, createTestConfig())

	registered := map[string]bool{}
	for _, route := range s.GetRouter().Routes() {
		registered[route.Pattern] = true
	}

	for _, info := range RouteCatalog() {
		assert.True(t, registered[info.Path], "route %s is not registered", info.Path)
	}
	assert.True(t, registered[constants.HealthPath])
	assert.True(t, registered[constants.VersionPath])
	assert.True(t, registered[constants.RoutesPath])
}

func TestRoutes_MissingYear(t *testing.T) {
	for _, path := range []string{"/shootings", "/neighborhood-breakdown", "/shootingsmap", "/shootingsmap?crime_type=Homicide"} {
		t.Run(path, func(t *testing.T) {
			s, mock := newMockServer(t, createTestConfig())

			rr := serve(s, http.MethodGet, path)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, `{"error":"Year query parameter is required"}`, rr.Body.String())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoutes_StorageErrors(t *testing.T) {
	tests := []struct {
		name         string
		redact       bool
		expectedBody string
	}{
		{
			name:         "Forwarded",
			expectedBody: `{"error":"no such table: CaseInfo"}`,
		},
		{
			name:         "Redacted",
			redact:       true,
			expectedBody: `{"error":"` + constants.MsgStorageFailure + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			cfg.API.RedactStorageErrors = tt.redact
			s, mock := newMockServer(t, cfg)

			mock.ExpectQuery("FROM CaseInfo").
				WithArgs("2023").
				WillReturnError(errors.New("no such table: CaseInfo"))

			rr := serve(s, http.MethodGet, "/shootings?year=2023")

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoutes_EmptyResult(t *testing.T) {
	s, mock := newMockServer(t, createTestConfig())

	mock.ExpectQuery("FROM CaseInfo").
		WithArgs("2023", "Homicide").
		WillReturnRows(sqlmock.NewRows([]string{"id", "lat", "lon", "crime_type", "date"}))

	rr := serve(s, http.MethodGet, "/shootingsmap?year=2023&crime_type=Homicide")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutes_NotFoundAndMethodNotAllowed(t *testing.T) {
	s, _ := newMockServer(t, createTestConfig())

	rr := serve(s, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(s, http.MethodPost, "/totalincidents")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.JSONEq(t, `{"error":"`+constants.MsgMethodNotAllowed+`"}`, rr.Body.String())
}

func TestRoutes_CORS(t *testing.T) {
	cfg := createTestConfig()
	cfg.CORS.AllowedOrigins = []string{"http://dashboard.example"}
	s, mock := newMockServer(t, cfg)

	t.Run("Preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/totalincidents", nil)
		req.Header.Set("Origin", "http://dashboard.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)

		rr := httptest.NewRecorder()
		s.GetRouter().ServeHTTP(rr, req)

		assert.Equal(t, "http://dashboard.example", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
	})

	t.Run("Simple request", func(t *testing.T) {
		mock.ExpectQuery("FROM CaseInfo").
			WillReturnRows(sqlmock.NewRows([]string{"year", "total_shootings"}))

		req := httptest.NewRequest(http.MethodGet, "/totalincidents", nil)
		req.Header.Set("Origin", "http://dashboard.example")

		rr := httptest.NewRecorder()
		s.GetRouter().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "http://dashboard.example", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Foreign origin", func(t *testing.T) {
		mock.ExpectQuery("FROM CaseInfo").
			WillReturnRows(sqlmock.NewRows([]string{"year", "total_shootings"}))

		req := httptest.NewRequest(http.MethodGet, "/totalincidents", nil)
		req.Header.Set("Origin", "http://elsewhere.example")

		rr := httptest.NewRecorder()
		s.GetRouter().ServeHTTP(rr, req)

		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRoutes_ResponseHeaders(t *testing.T) {
	s, mock := newMockServer(t, createTestConfig())
	mock.ExpectQuery("FROM CaseInfo").
		WillReturnRows(sqlmock.NewRows([]string{"year", "Crime_Type", "total_shootings"}))

	rr := serve(s, http.MethodGet, "/shootingtype")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(constants.HeaderXRequestID))
	assert.Equal(t, constants.ContentTypeOptionsNoSniff, rr.Header().Get(constants.HeaderXContentTypeOptions))
	assert.Contains(t, rr.Header().Get("Cache-Control"), "no-cache")
}

func TestRoutes_SystemEndpoints(t *testing.T) {
	s, mock := newMockServer(t, createTestConfig())

	t.Run("Health", func(t *testing.T) {
		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		rr := serve(s, http.MethodGet, "/health")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"healthy","version":"1.0.0-test"}`, rr.Body.String())
	})

	t.Run("Unhealthy", func(t *testing.T) {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		rr := serve(s, http.MethodGet, "/health")

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"error":"`+constants.MsgServiceUnavailable+`"}`, rr.Body.String())
	})

	t.Run("Version", func(t *testing.T) {
		rr := serve(s, http.MethodGet, "/version")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"version":"1.0.0-test","environment":"testing"}`, rr.Body.String())
	})

	t.Run("Routes", func(t *testing.T) {
		rr := serve(s, http.MethodGet, "/api/routes")
		require.Equal(t, http.StatusOK, rr.Code)

		var routes []models.RouteInfo
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &routes))
		assert.Equal(t, RouteCatalog(), routes)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutes_RateLimit(t *testing.T) {
	cfg := createTestConfig()
	cfg.API.RateLimit = 0.001
	cfg.API.RateBurst = 1
	s, mock := newMockServer(t, cfg)
	t.Cleanup(s.rateLimiter.Stop)

	mock.ExpectQuery("FROM CaseInfo").
		WillReturnRows(sqlmock.NewRows([]string{"year", "total_shootings"}))

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/totalincidents").Code)

	rr := serve(s, http.MethodGet, "/totalincidents")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	// Operational endpoints are not limited
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/version").Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// serveForwarded sends a request from one peer address carrying the given
// X-Forwarded-For value.
func serveForwarded(s *Server, target, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "198.51.100.4:52100"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rr := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(rr, req)
	return rr
}

func TestRoutes_RateLimitIgnoresForwardedFor(t *testing.T) {
	cfg := createTestConfig()
	cfg.API.RateLimit = 0.001
	cfg.API.RateBurst = 1
	s, mock := newMockServer(t, cfg)
	t.Cleanup(s.rateLimiter.Stop)

	mock.ExpectQuery("FROM CaseInfo").
		WillReturnRows(sqlmock.NewRows([]string{"year", "total_shootings"}))

	allowed := 0
	for i := 0; i < 5; i++ {
		if serveForwarded(s, "/totalincidents", fmt.Sprintf("10.0.0.%d", i)).Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 1, allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutes_RateLimitTrustedProxyHeaders(t *testing.T) {
	cfg := createTestConfig()
	cfg.API.RateLimit = 0.001
	cfg.API.RateBurst = 1
	cfg.Server.TrustProxyHeaders = true
	s, mock := newMockServer(t, cfg)
	t.Cleanup(s.rateLimiter.Stop)

	for i := 0; i < 2; i++ {
		mock.ExpectQuery("FROM CaseInfo").
			WillReturnRows(sqlmock.NewRows([]string{"year", "total_shootings"}))
	}

	assert.Equal(t, http.StatusOK, serveForwarded(s, "/totalincidents", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, serveForwarded(s, "/totalincidents", "10.0.0.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, serveForwarded(s, "/totalincidents", "10.0.0.1").Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
