package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crimestats/querygateway/internal/handlers"
	"github.com/crimestats/querygateway/internal/models"
	"github.com/crimestats/querygateway/internal/utils"
)

// MockAnalyticsService is a mock implementation of the AnalyticsService
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) rows(args mock.Arguments) ([]models.Row, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Row), args.Error(1)
}

func (m *MockAnalyticsService) TotalIncidents(ctx context.Context) ([]models.Row, error) {
	return m.rows(m.Called(ctx))
}

func (m *MockAnalyticsService) ShootingTypes(ctx context.Context) ([]models.Row, error) {
	return m.rows(m.Called(ctx))
}

func (m *MockAnalyticsService) Neighborhoods(ctx context.Context) ([]models.Row, error) {
	return m.rows(m.Called(ctx))
}

func (m *MockAnalyticsService) Shootings(ctx context.Context, params models.YearParams) ([]models.Row, error) {
	return m.rows(m.Called(ctx, params))
}

func (m *MockAnalyticsService) NeighborhoodBreakdown(ctx context.Context, params models.YearParams) ([]models.Row, error) {
	return m.rows(m.Called(ctx, params))
}

func (m *MockAnalyticsService) ShootingsByMonth(ctx context.Context, params models.MonthlyParams) ([]models.Row, error) {
	return m.rows(m.Called(ctx, params))
}

func (m *MockAnalyticsService) ShootingsMap(ctx context.Context, params models.MapParams) ([]models.Row, error) {
	return m.rows(m.Called(ctx, params))
}

func decodeRows(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows), "body: %s", rr.Body.String())
	return rows
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body: %s", rr.Body.String())
	return body.Error
}

func TestAnalyticsHandler_UnparameterizedQueries(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		handler func(h *handlers.AnalyticsHandler) http.HandlerFunc
		rows    []models.Row
	}{
		{
			name:    "TotalIncidents",
			method:  "TotalIncidents",
			handler: func(h *handlers.AnalyticsHandler) http.HandlerFunc { return h.TotalIncidents },
			rows:    []models.Row{{"year": "2023", "total_shootings": int64(12)}},
		},
		{
			name:    "ShootingType",
			method:  "ShootingTypes",
			handler: func(h *handlers.AnalyticsHandler) http.HandlerFunc { return h.ShootingType },
			rows:    []models.Row{{"year": "2023", "Crime_Type": "Homicide", "total_shootings": int64(3)}},
		},
		{
			name:    "Neighborhoods",
			method:  "Neighborhoods",
			handler: func(h *handlers.AnalyticsHandler) http.HandlerFunc { return h.Neighborhoods },
			rows:    []models.Row{{"year": "2023", "neighborhoods_impacted": int64(4)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAnalyticsService)
			h := handlers.NewAnalyticsHandler(svc)

			svc.On(tt.method, mock.Anything).Return(tt.rows, nil)

			rr := httptest.NewRecorder()
			tt.handler(h)(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			rows := decodeRows(t, rr)
			require.Len(t, rows, 1)
			for k := range tt.rows[0] {
				assert.Contains(t, rows[0], k)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestAnalyticsHandler_Shootings(t *testing.T) {
	t.Run("Rows for the year", func(t *testing.T) {
		svc := new(MockAnalyticsService)
		h := handlers.NewAnalyticsHandler(svc)

		svc.On("Shootings", mock.Anything, models.YearParams{Year: "2023"}).Return([]models.Row{
			{"date": "2023-06-02", "neighborhood": "1 Main St", "crime_type": "Homicide", "id": int64(11)},
			{"date": "2023-01-15", "neighborhood": nil, "crime_type": "Shotspotter Alert", "id": int64(3)},
		}, nil)

		rr := httptest.NewRecorder()
		h.Shootings(rr, httptest.NewRequest(http.MethodGet, "/shootings?year=2023", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		rows := decodeRows(t, rr)
		require.Len(t, rows, 2)
		assert.Equal(t, float64(11), rows[0]["id"])
		assert.Nil(t, rows[1]["neighborhood"])
		svc.AssertExpectations(t)
	})

	t.Run("Missing year never reaches the service", func(t *testing.T) {
		svc := new(MockAnalyticsService)
		h := handlers.NewAnalyticsHandler(svc)

		rr := httptest.NewRecorder()
		h.Shootings(rr, httptest.NewRequest(http.MethodGet, "/shootings", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Year query parameter is required", decodeError(t, rr))
		svc.AssertNotCalled(t, "Shootings", mock.Anything, mock.Anything)
	})

	t.Run("Malformed year", func(t *testing.T) {
		svc := new(MockAnalyticsService)
		h := handlers.NewAnalyticsHandler(svc)

		rr := httptest.NewRecorder()
		h.Shootings(rr, httptest.NewRequest(http.MethodGet, "/shootings?year=23", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Year query parameter must be a four-digit year", decodeError(t, rr))
		svc.AssertNotCalled(t, "Shootings", mock.Anything, mock.Anything)
	})

	t.Run("Empty result is an empty array", func(t *testing.T) {
		svc := new(MockAnalyticsService)
		h := handlers.NewAnalyticsHandler(svc)

		svc.On("Shootings", mock.Anything, models.YearParams{Year: "1999"}).Return([]models.Row{}, nil)

		rr := httptest.NewRecorder()
		h.Shootings(rr, httptest.NewRequest(http.MethodGet, "/shootings?year=1999", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]", rr.Body.String())
	})
}

func TestAnalyticsHandler_NeighborhoodBreakdown(t *testing.T) {
	svc := new(MockAnalyticsService)
	h := handlers.NewAnalyticsHandler(svc)

	svc.On("NeighborhoodBreakdown", mock.Anything, models.YearParams{Year: "2024"}).Return([]models.Row{
		{"year": "2024", "neighborhood": "Downtown", "Injured": int64(1), "Fatal": int64(1), "AI": int64(1)},
	}, nil)

	rr := httptest.NewRecorder()
	h.NeighborhoodBreakdown(rr, httptest.NewRequest(http.MethodGet, "/neighborhood-breakdown?year=2024", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	rows := decodeRows(t, rr)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(1), rows[0]["AI"])

	t.Run("Missing year", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.NeighborhoodBreakdown(rr, httptest.NewRequest(http.MethodGet, "/neighborhood-breakdown?year=", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Year query parameter is required", decodeError(t, rr))
	})

	svc.AssertNumberOfCalls(t, "NeighborhoodBreakdown", 1)
}

func TestAnalyticsHandler_ShootingsByMonth(t *testing.T) {
	tests := []struct {
		name   string
		target string
		params models.MonthlyParams
	}{
		{name: "Unfiltered", target: "/shootingsbymonth", params: models.MonthlyParams{}},
		{name: "Filtered", target: "/shootingsbymonth?crime_type=Homicide", params: models.MonthlyParams{CrimeType: "Homicide"}},
		{name: "Encoded filter", target: "/shootingsbymonth?crime_type=Non-Fatal%20Shooting", params: models.MonthlyParams{CrimeType: "Non-Fatal Shooting"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAnalyticsService)
			h := handlers.NewAnalyticsHandler(svc)

			svc.On("ShootingsByMonth", mock.Anything, tt.params).Return([]models.Row{}, nil)

			rr := httptest.NewRecorder()
			h.ShootingsByMonth(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestAnalyticsHandler_ShootingsMap(t *testing.T) {
	t.Run("Year and category", func(t *testing.T) {
		svc := new(MockAnalyticsService)
		h := handlers.NewAnalyticsHandler(svc)

		svc.On("ShootingsMap", mock.Anything, models.MapParams{Year: "2023", CrimeType: "Homicide"}).Return([]models.Row{
			{"date": "2023-02-01", "neighborhood": nil, "crime_type": "Homicide", "lat": nil, "lon": nil, "id": int64(2)},
		}, nil)

		rr := httptest.NewRecorder()
		h.ShootingsMap(rr, httptest.NewRequest(http.MethodGet, "/shootingsmap?year=2023&crime_type=Homicide", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		rows := decodeRows(t, rr)
		require.Len(t, rows, 1)
		assert.Contains(t, rows[0], "lat")
		assert.Nil(t, rows[0]["lat"])
		assert.Nil(t, rows[0]["lon"])
		svc.AssertExpectations(t)
	})

	t.Run("Missing year with category", func(t *testing.T) {
		svc := new(MockAnalyticsService)
		h := handlers.NewAnalyticsHandler(svc)

		rr := httptest.NewRecorder()
		h.ShootingsMap(rr, httptest.NewRequest(http.MethodGet, "/shootingsmap?crime_type=Homicide", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Year query parameter is required", decodeError(t, rr))
		svc.AssertNotCalled(t, "ShootingsMap", mock.Anything, mock.Anything)
	})
}

func TestAnalyticsHandler_StorageError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "Forwarded storage message",
			err:     utils.NewStorageError(fmt.Errorf("failed to query yearly totals: %w", errors.New("no such table: CaseInfo")), false),
			wantMsg: "no such table: CaseInfo",
		},
		{
			name:    "Redacted storage message",
			err:     utils.NewStorageError(errors.New("no such table: CaseInfo"), true),
			wantMsg: "The incident database could not answer the query",
		},
		{
			name:    "Unclassified error",
			err:     errors.New("boom"),
			wantMsg: "An internal server error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAnalyticsService)
			h := handlers.NewAnalyticsHandler(svc)

			svc.On("TotalIncidents", mock.Anything).Return(nil, tt.err)

			rr := httptest.NewRecorder()
			h.TotalIncidents(rr, httptest.NewRequest(http.MethodGet, "/totalincidents", nil))

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, rr))
		})
	}
}
