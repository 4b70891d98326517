package serve

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ulrichard/uttesla/bridge"
	"github.com/ulrichard/uttesla/cmd/root"
)

var (
	listen     string
	loginFirst bool
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the vehicle controls over a local HTTP bridge",
	Long: `Start the HTTP bridge used by graphical front ends. All endpoints live under
/api and call into the same session as the command line; requests are
handled one at a time.

The listen address defaults to bridge.listen from the configuration file.`,
	Example: `  # Serve on the configured address
  uttesla serve

  # Serve on all interfaces, without logging in up front
  uttesla serve --listen 0.0.0.0:8787 --login=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := root.GetConfig().Bridge.Listen
		if cmd.Flags().Changed("listen") {
			addr = listen
		}

		if !root.GetLogger().IsLevelEnabled(logrus.DebugLevel) {
			gin.SetMode(gin.ReleaseMode)
		}

		a := root.GetApp()
		if loginFirst && a.Login(cmd.Context()) {
			a.Roster(cmd.Context())
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return bridge.ListenAndServe(ctx, addr, bridge.NewRouter(a))
	},
}

func init() {
	ServeCmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides bridge.listen)")
	ServeCmd.Flags().BoolVar(&loginFirst, "login", true, "log in and fetch the roster before serving")

	root.RootCmd.AddCommand(ServeCmd)
}
