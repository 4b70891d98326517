package snapshot

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ulrichard/uttesla/app"
	"github.com/ulrichard/uttesla/cmd/root"
	"github.com/ulrichard/uttesla/config"
	vehiclesnapshot "github.com/ulrichard/uttesla/snapshot"
)

var asJSON bool

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1).
			MarginBottom(1)

	onStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82"))

	offStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

var SnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Show the current state of a vehicle",
	Long: `Wake the vehicle, fetch its data and show a compact summary: position,
temperatures, climate and charging state.

With --json the summary is printed in the same JSON form the HTTP bridge serves.`,
	Example: `  # Show the first vehicle
  uttesla snapshot

  # Raw JSON of the second vehicle
  uttesla snapshot --vehicle 1 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := root.Ready(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON {
			out := a.VehicleSnapshot(cmd.Context(), root.VehicleIndex())
			if out == "" {
				return fmt.Errorf("failed to get vehicle %d", root.VehicleIndex())
			}
			fmt.Println(out)
			return nil
		}

		name, s, err := Fetch(cmd.Context(), a, root.VehicleIndex())
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render(name))
		fmt.Println(Table(s, root.GetConfig()))
		return nil
	},
}

func init() {
	SnapshotCmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")

	root.RootCmd.AddCommand(SnapshotCmd)
}

// Fetch returns the display name and snapshot of vehicle idx. The index is
// checked by the snapshot call, so an index outside the roster ends up in
// the event log instead of panicking here.
func Fetch(ctx context.Context, a *app.App, idx int) (string, vehiclesnapshot.Snapshot, error) {
	s, ok := a.Snapshot(ctx, idx)
	if !ok {
		return "", s, fmt.Errorf("failed to get vehicle %d", idx)
	}
	vehicles := a.Vehicles()
	if idx < 0 || idx >= len(vehicles) {
		return "", s, fmt.Errorf("failed to get vehicle %d", idx)
	}
	return vehicles[idx].DisplayName, s, nil
}

// Table renders s as a two column lipgloss table. The distance from home
// is included when cfg has a home location.
func Table(s vehiclesnapshot.Snapshot, cfg *config.Config) *table.Table {
	rows := [][]string{
		{"State", orDash(s.State)},
		{"Position", orDash(s.GPSPos)},
	}
	if cfg != nil && cfg.ValidateHome() == nil {
		if km, ok := s.DistanceFrom(cfg.Home.Latitude, cfg.Home.Longitude); ok {
			rows = append(rows, []string{"From home", formatDistance(km)})
		}
	}
	rows = append(rows,
		[]string{"Inside", withUnit(s.InsideTemp, "°C")},
		[]string{"Outside", withUnit(s.OutsideTemp, "°C")},
		[]string{"Climate", onOff(s.HVACEnabled, fmt.Sprintf("on, %d°C", s.DriverTempSetting), "off")},
		[]string{"Battery", fmt.Sprintf("%d%% (%.0f km)", s.BatteryLevel, s.BatteryRange)},
		[]string{"Charge limit", fmt.Sprintf("%d%%", s.ChargeLimit)},
		[]string{"Charging", onOff(s.ChargeRate > 0, fmt.Sprintf("%.1f mi/h, %d min to full", s.ChargeRate, s.MinutesToFullCharge), "no")},
		[]string{"Energy added", fmt.Sprintf("%.2f kWh", s.ChargeEnergyAdded)},
	)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			baseStyle := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if col == 0 {
				return baseStyle.Foreground(lipgloss.Color("241"))
			}
			return baseStyle.Bold(true)
		}).
		Rows(rows...)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func withUnit(v, unit string) string {
	if v == "" {
		return "-"
	}
	return v + " " + unit
}

func onOff(on bool, onText, offText string) string {
	if on {
		return onStyle.Render(onText)
	}
	return offStyle.Render(offText)
}

func formatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%.0f m", km*1000)
	}
	return fmt.Sprintf("%.1f km", km)
}
