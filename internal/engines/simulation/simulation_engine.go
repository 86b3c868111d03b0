package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"optionsimulator/internal/engines/pricing"
	"optionsimulator/internal/interfaces"
	"optionsimulator/internal/models"
	"optionsimulator/internal/types"
)

type SimulationState string

const (
	StateStopped   SimulationState = "stopped"
	StatePlaying   SimulationState = "playing"
	StatePaused    SimulationState = "paused"
	StateCompleted SimulationState = "completed"
)

const (
	DefaultMaxFrames = 100
	DefaultInterval  = 100 * time.Millisecond
)

// StartOptions configures one simulation run
type StartOptions struct {
	Contract      models.ContractParams
	ValuationDate models.Date
	Seed          uint64
	Increment     IncrementModel
	Interval      time.Duration // Real time between frames
	MaxFrames     int           // Frames to emit before completing
}

// SimulationEngine is the frame source: it advances a Driver once per ticker
// interval and hands every frame to its client.
type SimulationEngine struct {
	mu             sync.RWMutex
	state          SimulationState
	interval       time.Duration
	maxFrames      int
	framesSent     int
	client         interfaces.ClientMessageSender
	runID          string
	options        StartOptions
	driver         *Driver
	terminalReason string

	stopChan chan struct{}
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc

	// Interval changes for the current run
	intervalChangeChan chan time.Duration
}

type SimulationUpdateData struct {
	RunID    string       `json:"runID"`
	Frame    models.Frame `json:"frame"`
	Progress float64      `json:"progress"` // 0-100%
	State    string       `json:"state"`
}

type SimulationStatus struct {
	State             string      `json:"state"`
	RunID             string      `json:"runID"`
	Tick              int         `json:"tick"`
	Frames            int         `json:"frames"`
	MaxFrames         int         `json:"maxFrames"`
	Progress          float64     `json:"progress"`
	IntervalMs        int64       `json:"intervalMs"`
	Seed              uint64      `json:"seed"`
	Increment         string      `json:"increment"`
	ValuationDate     models.Date `json:"valuationDate"`
	CurrentExpiration models.Date `json:"currentExpiration"`
	AssetPrice        float64     `json:"assetPrice"`
	StrikePrice       float64     `json:"strikePrice"`
	OptionPrice       float64     `json:"optionPrice"`
	Delta             float64     `json:"delta"`
	IsRunning         bool        `json:"isRunning"`
	TerminalReason    string      `json:"terminalReason,omitempty"`
	Message           string      `json:"message"`
}

func NewSimulationEngine(client interfaces.ClientMessageSender) *SimulationEngine {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	close(done)

	return &SimulationEngine{
		state:     StateStopped,
		interval:  DefaultInterval,
		maxFrames: DefaultMaxFrames,
		client:    client,
		done:      done,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetClient sets the client message sender for this engine
func (se *SimulationEngine) SetClient(client interfaces.ClientMessageSender) {
	se.mu.Lock()
	defer se.mu.Unlock()
	se.client = client
}

// Start validates the options and prices the initial contract before the
// first frame is scheduled, so bad parameters never reach the client as frames.
func (se *SimulationEngine) Start(opts StartOptions) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	if se.ctx.Err() != nil {
		return fmt.Errorf("simulation engine closed")
	}
	if se.state == StatePlaying || se.state == StatePaused {
		return fmt.Errorf("simulation already running")
	}

	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Interval < 0 {
		return fmt.Errorf("invalid interval: %v, must be positive", opts.Interval)
	}
	if opts.MaxFrames == 0 {
		opts.MaxFrames = DefaultMaxFrames
	}
	if opts.MaxFrames < 0 {
		return fmt.Errorf("invalid max frames: %d, must be positive", opts.MaxFrames)
	}

	driver, err := NewDriver(opts.Contract, opts.ValuationDate, rand.NewSource(opts.Seed), opts.Increment)
	if err != nil {
		return fmt.Errorf("invalid simulation parameters: %w", err)
	}

	se.options = opts
	se.driver = driver
	se.interval = opts.Interval
	se.maxFrames = opts.MaxFrames
	se.framesSent = 0
	se.terminalReason = ""
	se.runID = uuid.NewString()
	se.stopChan = make(chan struct{})
	se.done = make(chan struct{})
	se.intervalChangeChan = make(chan time.Duration, 1)
	se.state = StatePlaying

	log.WithFields(log.Fields{
		"runID":         se.runID,
		"assetPrice":    opts.Contract.AssetPrice,
		"strikePrice":   opts.Contract.StrikePrice,
		"expiration":    opts.Contract.ExpirationDate.String(),
		"valuationDate": opts.ValuationDate.String(),
		"seed":          opts.Seed,
		"increment":     driver.increment,
	}).Infof("Starting simulation: %d frames every %v, initial price %.4f delta %.4f",
		se.maxFrames, se.interval, driver.Contract().Price, driver.Contract().Delta)

	se.sendStatusUpdateUnsafe("Simulation started")

	go se.runSimulation(se.stopChan, se.intervalChangeChan, se.done)

	return nil
}

// runSimulation owns one run. The channels belong to that run, so a stopped
// run never touches the state of the next one.
func (se *SimulationEngine) runSimulation(stop <-chan struct{}, intervals <-chan time.Duration, done chan<- struct{}) {
	defer close(done)

	se.mu.RLock()
	ticker := time.NewTicker(se.interval)
	se.mu.RUnlock()
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			se.mu.Lock()
			if stopped(stop) {
				se.mu.Unlock()
				return
			}
			if se.state == StatePlaying && !se.processNextFrame() {
				se.mu.Unlock()
				return
			}
			se.mu.Unlock()

		case newInterval := <-intervals:
			se.mu.Lock()
			if stopped(stop) {
				se.mu.Unlock()
				return
			}
			log.Infof("Received interval change from %v to %v", se.interval, newInterval)
			se.interval = newInterval
			ticker.Reset(newInterval)
			se.sendStatusUpdateUnsafe(fmt.Sprintf("Interval changed to %v", newInterval))
			se.mu.Unlock()

		case <-stop:
			log.Debug("Simulation goroutine stopped via stop channel")
			return
		case <-se.ctx.Done():
			log.Debug("Simulation goroutine stopped via context")
			return
		}
	}
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

// processNextFrame advances the driver by one tick (caller must hold lock).
// It returns false once the run is complete.
func (se *SimulationEngine) processNextFrame() bool {
	frame, err := se.driver.Advance()
	if err != nil {
		reason := err.Error()
		if errors.Is(err, pricing.ErrExpired) {
			reason = "option expired"
		}
		log.WithError(err).WithField("runID", se.runID).Info("Simulation reached terminal state")
		se.completeUnsafe(reason)
		return false
	}

	se.framesSent++
	se.sendFrame(frame)

	if se.framesSent >= se.maxFrames {
		se.completeUnsafe("frame limit reached")
		return false
	}
	return true
}

func (se *SimulationEngine) completeUnsafe(reason string) {
	se.state = StateCompleted
	se.terminalReason = reason
	log.WithFields(log.Fields{
		"runID":  se.runID,
		"frames": se.framesSent,
	}).Infof("Simulation completed - %s", reason)
	se.sendStatusUpdateUnsafe("Simulation completed - " + reason)
}

// sendFrame sends a single frame to the client
func (se *SimulationEngine) sendFrame(frame models.Frame) {
	log.WithFields(log.Fields{
		"tick":       frame.Tick,
		"assetPrice": frame.Contract.AssetPrice,
		"price":      frame.Contract.Price,
		"delta":      frame.Contract.Delta,
		"moneyness":  frame.Moneyness,
	}).Debug("Sent frame")

	if se.client == nil {
		return // No client to send to
	}

	se.client.SendMessage(types.SimulationUpdate, SimulationUpdateData{
		RunID:    se.runID,
		Frame:    frame,
		Progress: se.progressUnsafe(),
		State:    string(se.state),
	})
}

// SendStatusUpdate gets the current status and sends it to the client (thread-safe)
func (se *SimulationEngine) SendStatusUpdate(message string) {
	status := se.GetStatus()

	se.mu.RLock()
	client := se.client
	se.mu.RUnlock()
	if client == nil {
		return // No client to send to
	}

	if message != "" {
		status.Message = message
	}
	client.SendMessage(types.StatusUpdate, status)
}

// sendStatusUpdateUnsafe sends status update without acquiring locks (caller must hold lock)
func (se *SimulationEngine) sendStatusUpdateUnsafe(message string) {
	if se.client == nil {
		return // No client to send to
	}

	status := se.getStatusUnsafe()
	if message != "" {
		status.Message = message
	}
	se.client.SendMessage(types.StatusUpdate, status)
}

func (se *SimulationEngine) GetStatus() SimulationStatus {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return se.getStatusUnsafe()
}

// getStatusUnsafe returns status without acquiring locks (caller must hold lock)
func (se *SimulationEngine) getStatusUnsafe() SimulationStatus {
	status := SimulationStatus{
		State:          string(se.state),
		RunID:          se.runID,
		Frames:         se.framesSent,
		MaxFrames:      se.maxFrames,
		Progress:       se.progressUnsafe(),
		IntervalMs:     se.interval.Milliseconds(),
		Seed:           se.options.Seed,
		ValuationDate:  se.options.ValuationDate,
		IsRunning:      se.state == StatePlaying || se.state == StatePaused,
		TerminalReason: se.terminalReason,
	}

	if se.driver != nil {
		contract := se.driver.Contract()
		status.Tick = se.driver.TickIndex()
		status.Increment = string(se.driver.increment)
		status.CurrentExpiration = se.driver.CurrentExpiration()
		status.AssetPrice = contract.AssetPrice
		status.StrikePrice = contract.StrikePrice
		status.OptionPrice = contract.Price
		status.Delta = contract.Delta
	}
	return status
}

func (se *SimulationEngine) progressUnsafe() float64 {
	if se.maxFrames <= 0 {
		return 0
	}
	return float64(se.framesSent) / float64(se.maxFrames) * 100
}

// Done returns a channel closed when the current run's goroutine exits
func (se *SimulationEngine) Done() <-chan struct{} {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return se.done
}

// Driver returns the driver of the current or last run
func (se *SimulationEngine) Driver() *Driver {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return se.driver
}

func (se *SimulationEngine) Pause() error {
	se.mu.Lock()
	defer se.mu.Unlock()

	if se.state != StatePlaying {
		return fmt.Errorf("simulation not playing")
	}

	se.state = StatePaused
	log.Infof("Simulation paused at tick %d", se.driver.TickIndex())
	se.sendStatusUpdateUnsafe("Simulation paused")
	return nil
}

func (se *SimulationEngine) Resume() error {
	se.mu.Lock()
	defer se.mu.Unlock()

	if se.state != StatePaused {
		return fmt.Errorf("simulation not paused")
	}

	se.state = StatePlaying
	log.Infof("Simulation resumed at tick %d", se.driver.TickIndex())
	se.sendStatusUpdateUnsafe("Simulation resumed")
	return nil
}

func (se *SimulationEngine) Stop() error {
	se.mu.Lock()
	defer se.mu.Unlock()

	if se.state == StateStopped || se.state == StateCompleted {
		return nil // Already stopped
	}

	se.state = StateStopped
	close(se.stopChan)

	log.Infof("Simulation stopped after %d frames", se.framesSent)
	se.sendStatusUpdateUnsafe("Simulation stopped")
	return nil
}

// SetInterval changes the real time between frames
func (se *SimulationEngine) SetInterval(interval time.Duration) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	if interval <= 0 {
		return fmt.Errorf("invalid interval: %v, must be positive", interval)
	}

	// If simulation is running, send interval change to goroutine via channel
	if se.state == StatePlaying || se.state == StatePaused {
		select {
		case se.intervalChangeChan <- interval:
			log.Infof("Interval change request sent: %v", interval)
		default:
			// Channel full, replace with new value
			select {
			case <-se.intervalChangeChan:
			default:
			}
			se.intervalChangeChan <- interval
			log.Infof("Interval change request replaced: %v", interval)
		}
		return nil
	}

	se.interval = interval
	log.Infof("Interval updated directly to %v (simulation not running)", interval)
	se.sendStatusUpdateUnsafe(fmt.Sprintf("Interval updated to %v", interval))
	return nil
}

// Cleanup releases the engine; it cannot be started again afterwards
func (se *SimulationEngine) Cleanup() {
	se.cancel()
}
