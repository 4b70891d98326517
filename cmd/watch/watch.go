package watch

import (
	"fmt"
	"math"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"

	"github.com/ulrichard/uttesla/cmd/root"
	"github.com/ulrichard/uttesla/cmd/snapshot"
	vehiclesnapshot "github.com/ulrichard/uttesla/snapshot"
)

const maxHistorySize = 30

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1).
			MarginBottom(1)

	sparklineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			MarginTop(1)
)

// trends are drawn below the snapshot table. charge_rate comes unconverted
// from the Owner API, in miles per hour.
var trends = []struct {
	label string
	unit  string
	value func(sample) float64
}{
	{label: "Battery", unit: "%", value: func(p sample) float64 { return p.battery }},
	{label: "Charge rate", unit: "mi/h", value: func(p sample) float64 { return p.chargeRate }},
}

var sparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

type sample struct {
	battery    float64
	chargeRate float64
	at         time.Time
}

// history is a bounded window of samples, oldest first.
type history struct {
	mu      sync.Mutex
	samples []sample
}

func (h *history) record(s vehiclesnapshot.Snapshot, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = append(h.samples, sample{
		battery:    float64(s.BatteryLevel),
		chargeRate: s.ChargeRate,
		at:         at,
	})
	if len(h.samples) > maxHistorySize {
		h.samples = h.samples[len(h.samples)-maxHistorySize:]
	}
}

func (h *history) snapshot() []sample {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]sample, len(h.samples))
	copy(out, h.samples)
	return out
}

var (
	interval time.Duration
	once     bool
)

var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Periodically show the state of a vehicle",
	Long: `Fetch a snapshot of the vehicle at a fixed interval and show it together with
a trend of the battery level and charge rate.

Every fetch wakes the vehicle, so keep the interval generous.`,
	Example: `  # Refresh every minute
  uttesla watch

  # Refresh every five minutes
  uttesla watch --interval 5m

  # Fetch once and exit
  uttesla watch --once`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if interval < 10*time.Second {
			return fmt.Errorf("--interval must be at least 10s, got %s", interval)
		}

		a, err := root.Ready(cmd.Context())
		if err != nil {
			return err
		}
		idx := root.VehicleIndex()
		name, first, err := snapshot.Fetch(cmd.Context(), a, idx)
		if err != nil {
			return err
		}

		if once {
			fmt.Println(titleStyle.Render(name))
			fmt.Println(snapshot.Table(first, root.GetConfig()))
			return nil
		}

		h := &history{}
		h.record(first, time.Now())
		render(name, first, h.snapshot())

		refresh := func() {
			s, ok := a.Snapshot(cmd.Context(), idx)
			if !ok {
				root.GetLogger().Warnf("failed to get vehicle %d, retrying in %s", idx, interval)
				return
			}
			h.record(s, time.Now())
			render(name, s, h.snapshot())
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		s, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		defer func() { _ = s.Shutdown() }()

		_, err = s.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(refresh),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}
		s.Start()

		<-ctx.Done()
		return nil
	},
}

func init() {
	WatchCmd.Flags().DurationVar(&interval, "interval", time.Minute, "update interval")
	WatchCmd.Flags().BoolVar(&once, "once", false, "fetch once and exit")

	root.RootCmd.AddCommand(WatchCmd)
}

func render(name string, s vehiclesnapshot.Snapshot, samples []sample) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(titleStyle.Render(name))
	fmt.Println(snapshot.Table(s, root.GetConfig()))

	if len(samples) > 1 {
		duration := samples[len(samples)-1].at.Sub(samples[0].at)

		fmt.Println()
		for _, tr := range trends {
			printTrend(tr.label, tr.unit, pick(samples, tr.value), duration)
		}
	}

	fmt.Println(hintStyle.Render(fmt.Sprintf("Updated %s, press Ctrl+C to exit", time.Now().Format("15:04:05"))))
}

func pick(samples []sample, f func(sample) float64) []float64 {
	values := make([]float64, len(samples))
	for i, p := range samples {
		values[i] = f(p)
	}
	return values
}

func printTrend(label, unit string, values []float64, over time.Duration) {
	minVal, maxVal, avgVal := calculateStats(values)
	fmt.Println(dimStyle.Render(label))
	fmt.Println(sparklineStyle.Render(generateSparkline(values)))
	fmt.Println(dimStyle.Render(fmt.Sprintf(
		"Min: %.1f %s  Max: %.1f %s  Avg: %.1f %s  (%s)",
		minVal, unit, maxVal, unit, avgVal, unit, formatDuration(over),
	)))
}

func generateSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	minVal, maxVal, _ := calculateStats(values)
	valueRange := maxVal - minVal
	if valueRange == 0 {
		valueRange = 1
	}

	var sb strings.Builder
	for _, v := range values {
		index := int((v - minVal) / valueRange * float64(len(sparklineChars)-1))
		index = max(0, min(index, len(sparklineChars)-1))
		sb.WriteRune(sparklineChars[index])
	}
	return sb.String()
}

func calculateStats(values []float64) (lo, hi, avg float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	lo = math.MaxFloat64
	hi = -math.MaxFloat64
	sum := 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	return lo, hi, sum / float64(len(values))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
