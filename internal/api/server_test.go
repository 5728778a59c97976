package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkwanda/healthsim/internal/consumables"
	"github.com/mkwanda/healthsim/internal/healthsystem"
	"github.com/mkwanda/healthsim/internal/params"
	"github.com/mkwanda/healthsim/internal/population"
	"github.com/mkwanda/healthsim/internal/rng"
	"github.com/mkwanda/healthsim/internal/sim"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	p := params.Defaults()
	reg := rng.NewRegistry(1)
	pop := population.NewStore()
	pop.Bootstrap(20, reg.Module("population"), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cons := consumables.New(p.Consumables.Items, 0, 1, 1, reg.Module("consumables"))
	hs := healthsystem.New(p.HealthSystem, pop, cons, reg.Module("healthsystem"))
	s := sim.New(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), pop, hs, p, reg, nil)
	s.Run(3, nil)
	return &Server{Sim: s}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.handleStatus(rr, httptest.NewRequest("GET", "/api/v1/status", nil))

	require.Equal(t, 200, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "2026-01-04", got["date"])
	assert.Equal(t, float64(3), got["day"])
	assert.Equal(t, float64(20), got["alive"])
	assert.NotContains(t, got, "run_id", "no database, no run id")
}

func TestHealthSystemEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.handleHealthSystem(rr, httptest.NewRequest("GET", "/api/v1/healthsystem", nil))

	require.Equal(t, 200, rr.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	for _, key := range []string{"scheduled", "ran", "did_not_run", "never_ran",
		"not_available", "deferred", "dropped_dead", "queued"} {
		assert.Contains(t, got, key)
	}
}

func TestRecordsEndpointWithoutDatabase(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.handleRecords(rr, httptest.NewRequest("GET", "/api/v1/records", nil))

	assert.Equal(t, 503, rr.Code)
}
