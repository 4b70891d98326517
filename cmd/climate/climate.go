package climate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ulrichard/uttesla/bridge"
	"github.com/ulrichard/uttesla/cmd/root"
)

var temperature int

var ClimateCmd = &cobra.Command{
	Use:       "climate on|off",
	Short:     "Switch the climate control on or off",
	Long:      `Wake the vehicle and switch its climate control. Switching on also sets the driver and passenger temperature.`,
	ValidArgs: []string{"on", "off"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Example: `  # Preheat to 22°C
  uttesla climate on --temp 22

  # Switch it off again
  uttesla climate off`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := root.Ready(cmd.Context())
		if err != nil {
			return err
		}

		enable := args[0] == "on"
		if err := root.Check(a.SetClimate(cmd.Context(), root.VehicleIndex(), enable, temperature), "climate "+args[0]); err != nil {
			return err
		}
		if enable {
			fmt.Printf("✅ Climate on, %d°C\n", temperature)
		} else {
			fmt.Println("✅ Climate off")
		}
		return nil
	},
}

func init() {
	ClimateCmd.Flags().IntVarP(&temperature, "temp", "t", bridge.DefaultTemperature, "target temperature in °C")

	root.RootCmd.AddCommand(ClimateCmd)
}
