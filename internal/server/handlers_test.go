package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"parking-facility/internal/parking"
)

func newTestRouter(t *testing.T, facility *parking.Facility) chi.Router {
	t.Helper()
	r, _ := newTestRouterWithHolder(t, facility)
	return r
}

func newTestRouterWithHolder(t *testing.T, facility *parking.Facility) (chi.Router, *parking.FacilityHolder) {
	t.Helper()
	telemetry := parking.NewTelemetryProviderWith("parking-facility-test",
		[]sdktrace.TracerProviderOption{sdktrace.WithSpanProcessor(tracetest.NewSpanRecorder())},
		[]sdkmetric.Option{sdkmetric.WithReader(sdkmetric.NewManualReader())},
	)
	t.Cleanup(func() { _ = telemetry.Shutdown(context.Background()) })

	var instrumented *parking.InstrumentedFacility
	if facility != nil {
		var err error
		instrumented, err = parking.NewInstrumentedFacility(facility, telemetry)
		require.NoError(t, err)
	}
	holder := parking.NewFacilityHolder(instrumented)
	return NewRouter(NewHandler("parking-facility-test", telemetry, parking.DefaultFareTable(), holder)), holder
}

func newTestFacility(t *testing.T, small, medium, large int) *parking.Facility {
	t.Helper()
	f, err := parking.NewFacility(parking.UniformInventory(small, medium, large), parking.DefaultFareTable())
	require.NoError(t, err)
	return f
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t, nil)

	rec, _ := do(t, r, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestFacilityNotCreated(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, path := range []string{"/api/facility/status", "/api/facility/available", "/api/facility/vehicles/KA01"} {
		rec, resp := do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "Facility not created", path)
	}
}

func TestCreateFacility(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "uniform counts",
			body:           `{"small":2,"medium":1,"large":1}`,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"capacity":4`,
		},
		{
			name:           "explicit slots",
			body:           `{"slots":[{"id":7,"class":"large"},{"id":8,"class":"small"}]}`,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"capacity":2`,
		},
		{
			name:           "invalid json",
			body:           `{"small":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: "empty slot inventory",
		},
		{
			name:           "negative",
			body:           `{"small":-1}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown class",
			body:           `{"slots":[{"id":1,"class":"huge"}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: "unknown slot class",
		},
		{
			name:           "duplicate id",
			body:           `{"slots":[{"id":1,"class":"small"},{"id":1,"class":"large"}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: "duplicate slot id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, nil)
			rec, _ := do(t, r, http.MethodPost, "/api/facility/", tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedSubstr != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedSubstr)
			}
		})
	}
}

func TestParkAndUnparkFlow(t *testing.T) {
	r := newTestRouter(t, newTestFacility(t, 2, 2, 2))

	for _, reg := range []string{"B1", "B2"} {
		rec, _ := do(t, r, http.MethodPost, "/api/facility/park", `{"registration":"`+reg+`","type":"bike","entry_hour":1}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, resp := do(t, r, http.MethodPost, "/api/facility/park", `{"registration":"B3","type":"bike","entry_hour":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "medium", data["slot_class"])
	assert.Equal(t, "small", data["vehicle_class"])
	assert.EqualValues(t, 3, data["slot_id"])
	assert.NotEmpty(t, data["ticket_id"])
	assert.NotEmpty(t, resp.Meta.RequestID)

	rec, resp = do(t, r, http.MethodGet, "/api/facility/vehicles/B3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, resp.Data.(map[string]any)["slot_id"])

	rec, resp = do(t, r, http.MethodGet, "/api/facility/available?class=small,medium", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, resp.Data.(map[string]any)["available"])

	rec, resp = do(t, r, http.MethodPost, "/api/facility/unpark", `{"registration":"B3","exit_hour":9}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 70, resp.Data.(map[string]any)["fare"])

	rec, resp = do(t, r, http.MethodGet, "/api/facility/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := resp.Data.(map[string]any)
	assert.EqualValues(t, 6, status["capacity"])
	assert.EqualValues(t, 2, status["occupied"])
	assert.EqualValues(t, 4, status["available"])
	assert.Len(t, status["slots"], 6)
	assert.EqualValues(t, 0, status["free"].(map[string]any)["small"])
	assert.EqualValues(t, 2, status["free"].(map[string]any)["medium"])
}

func TestParkErrors(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedSubstr string
	}{
		{"invalid json", `{"registration":`, http.StatusBadRequest, "Invalid request body"},
		{"missing hour", `{"registration":"X","type":"car"}`, http.StatusBadRequest, "entry_hour"},
		{"unknown type", `{"registration":"X","type":"bus","entry_hour":1}`, http.StatusBadRequest, "unknown vehicle class"},
		{"duplicate", `{"registration":"T1","type":"bike","entry_hour":1}`, http.StatusConflict, "active ticket"},
		{"full", `{"registration":"T2","type":"truck","entry_hour":1}`, http.StatusConflict, "facility is full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, newTestFacility(t, 1, 1, 1))
			rec, _ := do(t, r, http.MethodPost, "/api/facility/park", `{"registration":"T1","type":"truck","entry_hour":0}`)
			require.Equal(t, http.StatusOK, rec.Code)

			rec, resp := do(t, r, http.MethodPost, "/api/facility/park", tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.expectedSubstr)
		})
	}
}

func TestUnparkErrors(t *testing.T) {
	r := newTestRouter(t, newTestFacility(t, 1, 1, 1))

	rec, _ := do(t, r, http.MethodPost, "/api/facility/unpark", `{"registration":"NOPE","exit_hour":3}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, r, http.MethodPost, "/api/facility/unpark", `{"registration":"NOPE"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, r, http.MethodGet, "/api/facility/vehicles/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, r, http.MethodGet, "/api/facility/available?class=huge", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateFacilityReplacesSharedFacility(t *testing.T) {
	r, holder := newTestRouterWithHolder(t, newTestFacility(t, 1, 1, 1))
	before := holder.Current()

	rec, _ := do(t, r, http.MethodPost, "/api/facility/", `{"small":0,"medium":0,"large":4}`)
	require.Equal(t, http.StatusOK, rec.Code)

	current := holder.Current()
	require.NotNil(t, current)
	assert.NotSame(t, before, current)
	assert.Equal(t, 4, current.CapacityOf(parking.SlotLarge))

	_, err := current.Park(context.Background(), parking.NewVehicle("SHELL1", parking.VehicleLarge), 0)
	require.NoError(t, err)

	rec, resp := do(t, r, http.MethodGet, "/api/facility/vehicles/SHELL1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, resp.Data.(map[string]any)["slot_id"])
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/facility/park", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
