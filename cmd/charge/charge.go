package charge

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ulrichard/uttesla/bridge"
	"github.com/ulrichard/uttesla/cmd/root"
)

var limit int

var ChargeCmd = &cobra.Command{
	Use:   "charge",
	Short: "Start or stop charging",
}

var chargeStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Set the charge limit and start charging",
	Long: `Set the charge limit and start charging. If the limit cannot be set the
failure is reported and charging is started anyway.`,
	Example: `  # Charge to the default limit
  uttesla charge start

  # Charge the second vehicle to 90%
  uttesla charge start --vehicle 1 --limit 90`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if limit < 0 || limit > 100 {
			return fmt.Errorf("--limit must be between 0 and 100, got %d", limit)
		}

		a, err := root.Ready(cmd.Context())
		if err != nil {
			return err
		}

		root.GetLogger().Debugf("Starting charge of vehicle %d up to %d%%", root.VehicleIndex(), limit)
		if err := root.Check(a.SetCharging(cmd.Context(), root.VehicleIndex(), true, limit), "charge start"); err != nil {
			return err
		}
		fmt.Printf("✅ Charging started up to %d%%\n", limit)
		return nil
	},
}

var chargeStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop charging",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := root.Ready(cmd.Context())
		if err != nil {
			return err
		}

		if err := root.Check(a.SetCharging(cmd.Context(), root.VehicleIndex(), false, 0), "charge stop"); err != nil {
			return err
		}
		fmt.Println("✅ Charging stopped")
		return nil
	},
}

func init() {
	chargeStartCmd.Flags().IntVarP(&limit, "limit", "l", bridge.DefaultChargeLimit, "charge limit in percent")

	ChargeCmd.AddCommand(chargeStartCmd)
	ChargeCmd.AddCommand(chargeStopCmd)

	root.RootCmd.AddCommand(ChargeCmd)
}
