package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"optionsimulator/internal/engines/simulation"
	"optionsimulator/internal/models"
)

type SimulationHandler struct {
	engine   *simulation.SimulationEngine
	defaults simulation.StartOptions
}

func NewSimulationHandler(engine *simulation.SimulationEngine, defaults simulation.StartOptions) *SimulationHandler {
	return &SimulationHandler{
		engine:   engine,
		defaults: defaults,
	}
}

// StartSimulationRequest overrides the configured defaults for one run
type StartSimulationRequest struct {
	Contract      *models.ContractParams `json:"contract"`
	ValuationDate string                 `json:"valuationDate"`
	Seed          *uint64                `json:"seed"`
	Increment     string                 `json:"increment"`
	IntervalMs    int                    `json:"intervalMs"`
	MaxFrames     int                    `json:"maxFrames"`
}

type SetIntervalRequest struct {
	IntervalMs int `json:"intervalMs" binding:"required"`
}

// StartOptions merges the request over defaults. A zero seed everywhere
// means a fresh seed from the wall clock.
func (req StartSimulationRequest) StartOptions(defaults simulation.StartOptions) (simulation.StartOptions, error) {
	opts := defaults

	if req.Contract != nil {
		opts.Contract = *req.Contract
	}
	if req.ValuationDate != "" {
		valuationDate, err := models.ParseDate(req.ValuationDate)
		if err != nil {
			return opts, err
		}
		opts.ValuationDate = valuationDate
	}
	if opts.ValuationDate.IsZero() {
		opts.ValuationDate = models.Today()
	}

	if req.Seed != nil {
		opts.Seed = *req.Seed
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	if req.Increment != "" {
		increment, err := simulation.ParseIncrementModel(req.Increment)
		if err != nil {
			return opts, err
		}
		opts.Increment = increment
	}

	if req.IntervalMs < 0 {
		return opts, fmt.Errorf("invalid interval: %dms, must be positive", req.IntervalMs)
	}
	if req.IntervalMs > 0 {
		opts.Interval = time.Duration(req.IntervalMs) * time.Millisecond
	}
	if req.MaxFrames != 0 {
		opts.MaxFrames = req.MaxFrames
	}
	return opts, nil
}

// POST /api/v1/simulation/start
func (sh *SimulationHandler) StartSimulation(c *gin.Context) {
	var req StartSimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts, err := req.StartOptions(sh.defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sh.engine.Start(opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Simulation started",
		"status":  sh.engine.GetStatus(),
	})
}

// POST /api/v1/simulation/pause
func (sh *SimulationHandler) PauseSimulation(c *gin.Context) {
	if err := sh.engine.Pause(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Simulation paused"})
}

// POST /api/v1/simulation/resume
func (sh *SimulationHandler) ResumeSimulation(c *gin.Context) {
	if err := sh.engine.Resume(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Simulation resumed"})
}

// POST /api/v1/simulation/stop
func (sh *SimulationHandler) StopSimulation(c *gin.Context) {
	if err := sh.engine.Stop(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Simulation stopped"})
}

// POST /api/v1/simulation/interval
func (sh *SimulationHandler) SetInterval(c *gin.Context) {
	var req SetIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sh.engine.SetInterval(time.Duration(req.IntervalMs) * time.Millisecond); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Interval updated",
		"intervalMs": req.IntervalMs,
	})
}

// GET /api/v1/simulation/status
func (sh *SimulationHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, sh.engine.GetStatus())
}

// RegisterSimulationRoutes registers all simulation routes
func RegisterSimulationRoutes(router *gin.RouterGroup, handler *SimulationHandler) {
	simulationGroup := router.Group("/simulation")
	{
		simulationGroup.POST("/start", handler.StartSimulation)
		simulationGroup.POST("/pause", handler.PauseSimulation)
		simulationGroup.POST("/resume", handler.ResumeSimulation)
		simulationGroup.POST("/stop", handler.StopSimulation)
		simulationGroup.POST("/interval", handler.SetInterval)
		simulationGroup.GET("/status", handler.GetStatus)
	}
}
