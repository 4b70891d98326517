package login

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ulrichard/uttesla/cmd/root"
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with the stored tokens and list the vehicles",
	Long: `Log in with the stored credentials. A stored refresh token is exchanged for a
fresh access token and both are written back; otherwise the stored access
token is used as is.

There is no interactive login yet. Store a token with "uttesla token set".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := root.GetApp()
		if !a.Login(cmd.Context()) {
			return root.ErrLoginFailed
		}

		names := a.Roster(cmd.Context())
		if names != "" {
			fmt.Println(names)
		}
		root.GetLogger().Debugf("session state: %s", a.State())
		return nil
	},
}

func init() {
	root.RootCmd.AddCommand(LoginCmd)
}
