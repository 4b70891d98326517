package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/ulrichard/uttesla/cmd/root"
	"github.com/ulrichard/uttesla/config"
)

var (
	force     bool
	latitude  float64
	longitude float64
)

var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the current settings",
	Long: `Write the effective configuration (defaults, file, environment and flags)
to the configuration file. An existing file is only replaced with --force.`,
	Example: `  # Create the file and set the home location used by autostart
  uttesla config init --home-latitude 47.3769 --home-longitude 8.5417`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := root.GetConfigPath()
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists, use --force to overwrite it", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		cfg := *root.GetConfig()
		if cmd.Flags().Changed("home-latitude") {
			cfg.Home.Latitude = latitude
		}
		if cmd.Flags().Changed("home-longitude") {
			cfg.Home.Longitude = longitude
		}

		if err := config.SaveConfig(&cfg, path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("✅ Configuration written to %s\n", path)
		if err := cfg.ValidateHome(); err != nil {
			fmt.Printf("Note: %v, autostart will not work until it is set\n", err)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(root.GetConfigPath())
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configInitCmd.Flags().Float64Var(&latitude, "home-latitude", 0, "latitude of the home charger")
	configInitCmd.Flags().Float64Var(&longitude, "home-longitude", 0, "longitude of the home charger")

	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configPathCmd)

	root.RootCmd.AddCommand(ConfigCmd)
}
