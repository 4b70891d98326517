package doors

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ulrichard/uttesla/cmd/root"
)

var DoorsCmd = &cobra.Command{
	Use:       "doors lock|unlock",
	Short:     "Lock or unlock the doors",
	ValidArgs: []string{"lock", "unlock"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := root.Ready(cmd.Context())
		if err != nil {
			return err
		}

		unlock := args[0] == "unlock"
		if err := root.Check(a.SetDoors(cmd.Context(), root.VehicleIndex(), unlock), args[0]); err != nil {
			return err
		}
		fmt.Printf("✅ Doors %sed\n", args[0])
		return nil
	},
}

func init() {
	root.RootCmd.AddCommand(DoorsCmd)
}
