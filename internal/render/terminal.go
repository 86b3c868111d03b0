package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"optionsimulator/internal/engines/pricing"
	"optionsimulator/internal/engines/simulation"
	"optionsimulator/internal/models"
	"optionsimulator/internal/types"
)

// TerminalRenderer draws simulation frames as text lines. It satisfies
// interfaces.ClientMessageSender so an engine can feed it directly.
type TerminalRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	printer *message.Printer
	last    *models.Frame
	frames  int
}

func NewTerminalRenderer(out io.Writer) *TerminalRenderer {
	return &TerminalRenderer{
		out:     out,
		printer: message.NewPrinter(language.English),
	}
}

func (r *TerminalRenderer) SendMessage(messageType types.MessageType, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch messageType {
	case types.SimulationUpdate:
		update, ok := data.(simulation.SimulationUpdateData)
		if !ok {
			return
		}
		frame := update.Frame
		r.last = &frame
		r.frames++

		c := frame.Contract
		fmt.Fprintf(r.out, "tick %4d  expiry %s  asset %s (%s strike)  call %s  delta %s\n",
			frame.Tick, c.ExpirationDate, r.money(c.AssetPrice), frame.Moneyness, r.money(c.Price), r.printer.Sprintf("%.4f", c.Delta))

	case types.StatusUpdate:
		status, ok := data.(simulation.SimulationStatus)
		if !ok {
			return
		}
		fmt.Fprintf(r.out, "== %s [%s, %d/%d frames]\n", status.Message, status.State, status.Frames, status.MaxFrames)
	}
}

func (r *TerminalRenderer) SendError(message string, errorMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "!! %s: %s\n", message, errorMsg)
}

// LastFrame returns the most recent frame, which carries the full histories
func (r *TerminalRenderer) LastFrame() (models.Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return models.Frame{}, false
	}
	return *r.last, true
}

func (r *TerminalRenderer) FrameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// RenderSummary writes per-series statistics of the last frame as a table
func (r *TerminalRenderer) RenderSummary(w io.Writer) error {
	frame, ok := r.LastFrame()
	if !ok {
		return fmt.Errorf("no frames rendered")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Series", "Final", "Mean", "Std Dev", "Min", "Max"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, series := range []struct {
		name   string
		points []models.Point
	}{
		{"Option price", frame.OptionPrices},
		{"Delta", frame.Deltas},
		{"Asset price", frame.AssetPrices},
	} {
		row, err := r.summaryRow(series.name, series.points)
		if err != nil {
			return err
		}
		table.Append(row)
	}

	table.Render()
	return nil
}

func (r *TerminalRenderer) summaryRow(name string, points []models.Point) ([]string, error) {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Y
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate mean of %s: %w", name, err)
	}
	sd, err := stats.StandardDeviation(values)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate the standard deviation of %s: %w", name, err)
	}
	minimum, err := stats.Min(values)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate min of %s: %w", name, err)
	}
	maximum, err := stats.Max(values)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate max of %s: %w", name, err)
	}

	format := func(v float64) string { return r.printer.Sprintf("%.4f", v) }
	return []string{name, format(values[len(values)-1]), format(mean), format(sd), format(minimum), format(maximum)}, nil
}

func (r *TerminalRenderer) money(v float64) string {
	return fmt.Sprintf("$%s", r.printer.Sprintf("%.4f", v))
}

// RenderQuote writes a single valuation as a two-column table
func RenderQuote(w io.Writer, call *pricing.EuropeanCall) {
	p := message.NewPrinter(language.English)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	rows := [][]string{
		{"Asset price", p.Sprintf("%.4f", call.AssetPrice)},
		{"Strike price", p.Sprintf("%.4f", call.StrikePrice)},
		{"Volatility", p.Sprintf("%.4f", call.Volatility)},
		{"Risk free rate", p.Sprintf("%.4f", call.RiskFreeRate)},
		{"Valuation date", call.ValuationDate.String()},
		{"Expiration date", call.ExpirationDate.String()},
		{"Business days", fmt.Sprintf("%d", pricing.BusinessDays(call.ValuationDate, call.ExpirationDate))},
		{"dt (years)", p.Sprintf("%.6f", call.Dt)},
		{"d1", p.Sprintf("%.6f", call.D1)},
		{"d2", p.Sprintf("%.6f", call.D2)},
		{"Call price", p.Sprintf("%.4f", call.Price)},
		{"Delta", p.Sprintf("%.6f", call.Delta)},
		{"Exercise probability", p.Sprintf("%.6f", call.ExerciseProbability())},
	}
	table.AppendBulk(rows)
	table.Render()
}
