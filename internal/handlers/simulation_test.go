package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionsimulator/internal/engines/simulation"
	"optionsimulator/internal/models"
	"optionsimulator/internal/types"
)

type countingSender struct {
	mu     sync.Mutex
	frames int
}

func (s *countingSender) SendMessage(messageType types.MessageType, data interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if messageType == types.SimulationUpdate {
		s.frames++
	}
}

func (s *countingSender) SendError(message string, errorMsg string) {}

func testDefaults() simulation.StartOptions {
	return simulation.StartOptions{
		Contract:      models.DefaultContractParams(),
		ValuationDate: models.NewDate(2022, 6, 1),
		Seed:          11,
		Interval:      time.Millisecond,
		MaxFrames:     10,
	}
}

func setupSimulationRouter(t *testing.T) (*gin.Engine, *simulation.SimulationEngine) {
	gin.SetMode(gin.TestMode)
	engine := simulation.NewSimulationEngine(&countingSender{})
	t.Cleanup(engine.Cleanup)

	router := gin.New()
	RegisterSimulationRoutes(router.Group("/api/v1"), NewSimulationHandler(engine, testDefaults()))
	return router, engine
}

func TestSimulationRunsToFrameLimit(t *testing.T) {
	router, engine := setupSimulationRouter(t)

	w := postJSON(router, "/api/v1/simulation/start", `{"maxFrames": 4, "seed": 3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	select {
	case <-engine.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("simulation did not finish")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/simulation/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status simulation.SimulationStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, string(simulation.StateCompleted), status.State)
	assert.Equal(t, 4, status.Frames)
	assert.Equal(t, uint64(3), status.Seed)
}

func TestSimulationControlErrors(t *testing.T) {
	router, _ := setupSimulationRouter(t)

	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/api/v1/simulation/pause", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/api/v1/simulation/resume", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/api/v1/simulation/interval", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/api/v1/simulation/start", `{"increment": "brownian"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(router, "/api/v1/simulation/start", `{"valuationDate": "2023-02-17"}`).Code)
}

func TestStartOptionsMergesOverDefaults(t *testing.T) {
	seed := uint64(99)
	contract := models.DefaultContractParams()
	contract.AssetPrice = 70

	opts, err := StartSimulationRequest{
		Contract:      &contract,
		ValuationDate: "2023-01-02",
		Seed:          &seed,
		Increment:     "volatility",
		IntervalMs:    250,
	}.StartOptions(testDefaults())
	require.NoError(t, err)

	assert.Equal(t, 70.0, opts.Contract.AssetPrice)
	assert.Equal(t, models.NewDate(2023, 1, 2), opts.ValuationDate)
	assert.Equal(t, uint64(99), opts.Seed)
	assert.Equal(t, simulation.IncrementVolatility, opts.Increment)
	assert.Equal(t, 250*time.Millisecond, opts.Interval)
	assert.Equal(t, 10, opts.MaxFrames)

	defaults, err := StartSimulationRequest{}.StartOptions(simulation.StartOptions{})
	require.NoError(t, err)
	assert.False(t, defaults.ValuationDate.IsZero())
	assert.NotZero(t, defaults.Seed)

	_, err = StartSimulationRequest{IntervalMs: -5}.StartOptions(testDefaults())
	assert.Error(t, err)
}
