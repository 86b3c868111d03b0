package simulation

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionsimulator/internal/engines/pricing"
	"optionsimulator/internal/models"
	"optionsimulator/internal/types"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []types.WebSocketMessage
	errors   []string
}

func (s *recordingSender) SendMessage(messageType types.MessageType, data interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, types.WebSocketMessage{Type: messageType, Data: data})
}

func (s *recordingSender) SendError(message string, errorMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, message+": "+errorMsg)
}

func (s *recordingSender) frames() []SimulationUpdateData {
	s.mu.Lock()
	defer s.mu.Unlock()
	var frames []SimulationUpdateData
	for _, m := range s.messages {
		if m.Type == types.SimulationUpdate {
			frames = append(frames, m.Data.(SimulationUpdateData))
		}
	}
	return frames
}

func (s *recordingSender) statuses() []SimulationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	var statuses []SimulationStatus
	for _, m := range s.messages {
		if m.Type == types.StatusUpdate {
			statuses = append(statuses, m.Data.(SimulationStatus))
		}
	}
	return statuses
}

func waitDone(t *testing.T, engine *SimulationEngine) {
	t.Helper()
	select {
	case <-engine.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("simulation did not finish")
	}
}

func fastOptions(seed uint64, maxFrames int) StartOptions {
	return StartOptions{
		Contract:      models.DefaultContractParams(),
		ValuationDate: farValuationDate,
		Seed:          seed,
		Increment:     IncrementHorizon,
		Interval:      time.Millisecond,
		MaxFrames:     maxFrames,
	}
}

func TestEngineCompletesAtFrameLimit(t *testing.T) {
	sender := &recordingSender{}
	engine := NewSimulationEngine(sender)
	defer engine.Cleanup()

	require.NoError(t, engine.Start(fastOptions(1, 5)))
	waitDone(t, engine)

	frames := sender.frames()
	require.Len(t, frames, 5)
	for i, f := range frames {
		assert.Equal(t, i+1, f.Frame.Tick)
		assert.Len(t, f.Frame.OptionPrices, i+1)
		assert.Len(t, f.Frame.AssetPrices, i+2)
	}
	assert.Equal(t, 100.0, frames[4].Progress)

	status := engine.GetStatus()
	assert.Equal(t, string(StateCompleted), status.State)
	assert.Equal(t, 5, status.Frames)
	assert.Equal(t, 5, status.Tick)
	assert.Equal(t, "frame limit reached", status.TerminalReason)
	assert.False(t, status.IsRunning)

	statuses := sender.statuses()
	require.NotEmpty(t, statuses)
	assert.Equal(t, "Simulation started", statuses[0].Message)
	assert.Equal(t, "Simulation completed - frame limit reached", statuses[len(statuses)-1].Message)
}

func TestEngineCompletesAtExpiration(t *testing.T) {
	sender := &recordingSender{}
	engine := NewSimulationEngine(sender)
	defer engine.Cleanup()

	opts := fastOptions(2, 100)
	opts.ValuationDate = models.NewDate(2023, 2, 15)
	require.NoError(t, engine.Start(opts))
	waitDone(t, engine)

	assert.Len(t, sender.frames(), 2)
	status := engine.GetStatus()
	assert.Equal(t, string(StateCompleted), status.State)
	assert.Equal(t, "option expired", status.TerminalReason)

	terminal, err := engine.Driver().Terminal()
	assert.True(t, terminal)
	assert.ErrorIs(t, err, pricing.ErrExpired)
}

func TestEngineRejectsInvalidParameters(t *testing.T) {
	sender := &recordingSender{}
	engine := NewSimulationEngine(sender)
	defer engine.Cleanup()

	opts := fastOptions(1, 5)
	opts.Contract.StrikePrice = 0
	err := engine.Start(opts)
	assert.ErrorIs(t, err, pricing.ErrInvalidParameter)

	opts = fastOptions(1, 5)
	opts.ValuationDate = models.NewDate(2023, 3, 1)
	assert.ErrorIs(t, engine.Start(opts), pricing.ErrExpired)

	opts = fastOptions(1, -1)
	assert.Error(t, engine.Start(opts))

	assert.Empty(t, sender.messages)
	assert.Equal(t, string(StateStopped), engine.GetStatus().State)
}

func TestEngineIsDeterministic(t *testing.T) {
	run := func() []SimulationUpdateData {
		sender := &recordingSender{}
		engine := NewSimulationEngine(sender)
		defer engine.Cleanup()
		require.NoError(t, engine.Start(fastOptions(99, 10)))
		waitDone(t, engine)
		return sender.frames()
	}

	first, second := run(), run()
	require.Len(t, first, 10)
	require.Len(t, second, 10)
	assert.Equal(t, first[9].Frame, second[9].Frame)
}

func TestEngineLifecycle(t *testing.T) {
	sender := &recordingSender{}
	engine := NewSimulationEngine(sender)
	defer engine.Cleanup()

	opts := fastOptions(1, 5)
	opts.Interval = time.Hour
	require.NoError(t, engine.Start(opts))
	assert.True(t, engine.GetStatus().IsRunning)
	assert.Error(t, engine.Start(opts))

	assert.Error(t, engine.Resume())
	require.NoError(t, engine.Pause())
	assert.Equal(t, string(StatePaused), engine.GetStatus().State)
	assert.Error(t, engine.Pause())
	require.NoError(t, engine.Resume())

	require.NoError(t, engine.SetInterval(2*time.Hour))
	assert.Error(t, engine.SetInterval(0))

	require.NoError(t, engine.Stop())
	waitDone(t, engine)
	assert.Equal(t, string(StateStopped), engine.GetStatus().State)
	assert.NoError(t, engine.Stop())
	assert.Empty(t, sender.frames())

	require.NoError(t, engine.SetInterval(250*time.Millisecond))
	assert.Equal(t, int64(250), engine.GetStatus().IntervalMs)

	var messages []string
	for _, s := range sender.statuses() {
		messages = append(messages, s.Message)
	}
	joined := strings.Join(messages, "|")
	assert.Contains(t, joined, "Simulation paused")
	assert.Contains(t, joined, "Simulation resumed")
	assert.Contains(t, joined, "Simulation stopped")
}

func TestEngineRestartsAfterCompletion(t *testing.T) {
	sender := &recordingSender{}
	engine := NewSimulationEngine(sender)
	defer engine.Cleanup()

	require.NoError(t, engine.Start(fastOptions(1, 2)))
	waitDone(t, engine)
	firstRun := engine.GetStatus().RunID

	require.NoError(t, engine.Start(fastOptions(2, 3)))
	waitDone(t, engine)

	status := engine.GetStatus()
	assert.NotEqual(t, firstRun, status.RunID)
	assert.Equal(t, 3, status.Frames)
	assert.Len(t, sender.frames(), 5)
}

func TestEngineClosedAfterCleanup(t *testing.T) {
	engine := NewSimulationEngine(nil)
	engine.Cleanup()
	assert.Error(t, engine.Start(fastOptions(1, 1)))
}

func TestEngineRestartIgnoresPendingIntervalChange(t *testing.T) {
	for i := 0; i < 20; i++ {
		engine := NewSimulationEngine(&recordingSender{})

		slow := fastOptions(uint64(i+1), 3)
		slow.Interval = time.Hour
		require.NoError(t, engine.Start(slow))
		require.NoError(t, engine.SetInterval(time.Hour))
		require.NoError(t, engine.Stop())

		sender := &recordingSender{}
		engine.SetClient(sender)
		require.NoError(t, engine.Start(fastOptions(uint64(i+1), 3)))
		waitDone(t, engine)

		status := engine.GetStatus()
		assert.Equal(t, int64(1), status.IntervalMs)
		assert.Equal(t, 3, status.Frames)
		assert.Len(t, sender.frames(), 3)
		engine.Cleanup()
	}
}
