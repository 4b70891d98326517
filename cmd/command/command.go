package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ulrichard/uttesla/app"
	"github.com/ulrichard/uttesla/cmd/root"
)

type action func(a *app.App, ctx context.Context, idx int) bool

func newCommand(use, short, done string, run action) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.Ready(cmd.Context())
			if err != nil {
				return err
			}
			if err := root.Check(run(a, cmd.Context(), root.VehicleIndex()), use); err != nil {
				return err
			}
			fmt.Println("✅ " + done)
			return nil
		},
	}
}

func init() {
	root.RootCmd.AddCommand(
		newCommand("honk", "Honk the horn", "Horn honked", (*app.App).Honk),
		newCommand("flash", "Flash the lights", "Lights flashed", (*app.App).Flash),
		newCommand("drive", "Allow keyless driving for two minutes", "Keyless driving active for two minutes", (*app.App).RemoteStart),
	)
}
