package root

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ulrichard/uttesla/app"
	"github.com/ulrichard/uttesla/config"
	"github.com/ulrichard/uttesla/credentials"
	"github.com/ulrichard/uttesla/session"
)

var (
	cfgFile     string
	logLevel    string
	vehicleIdx  int
	cfg         *config.Config
	store       *credentials.Store
	application *app.App
	log         = logrus.StandardLogger()
)

var RootCmd = &cobra.Command{
	Use:   "uttesla",
	Short: "uttesla - control your Tesla from the command line",
	Long: `uttesla talks to the Tesla Owner API to list your vehicles, show a compact
snapshot of their state and send remote commands (climate, doors, charging,
horn, lights, keyless driving).

Credentials are read from tesla_access_token.txt and tesla_refresh_token.txt
in $XDG_DATA_HOME/uttesla.ulrichard; use "uttesla token set" to store them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadDotEnv(); err != nil {
			return err
		}

		if cmd.Name() == "version" || cmd.Name() == "help" {
			return setLogLevel(logLevel)
		}

		if err := initConfig(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		level := logLevel
		if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
			level = cfg.LogLevel
		}
		if err := setLogLevel(level); err != nil {
			return err
		}

		initApp()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		PrintEventLog()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/uttesla/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().String("data-dir", "", "directory holding the token files (default is $XDG_DATA_HOME/uttesla.ulrichard)")
	RootCmd.PersistentFlags().IntVarP(&vehicleIdx, "vehicle", "i", 0, "index of the vehicle in the roster")

	_ = viper.BindPFlag("config", RootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log_level", RootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("data_dir", RootCmd.PersistentFlags().Lookup("data-dir"))

	viper.SetEnvPrefix("UTTESLA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// loadDotEnv reads ./.env if there is one. Variables already set in the
// environment win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func initConfig() error {
	configPath := ""

	if cfgFile != "" {
		configPath = cfgFile
		viper.SetConfigFile(cfgFile)
	} else {
		configPath = config.DefaultConfigFilePath()

		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, config.AppName))
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug("No config file found, using defaults and environment variables")
	} else {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
		configPath = viper.ConfigFileUsed()
	}

	var err error
	cfg, err = config.GetConfigFromFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = config.Default()
	}

	applyOverrides(cfg)
	return nil
}

// applyOverrides copies flag and environment values known to viper over
// the file values.
func applyOverrides(c *config.Config) {
	if v := viper.GetString("data_dir"); v != "" {
		c.DataDir = v
	}
	if viper.IsSet("log_level") && viper.GetString("log_level") != "" {
		c.LogLevel = viper.GetString("log_level")
	}
	if viper.IsSet("api.owner_api_host") {
		c.API.OwnerAPIHost = viper.GetString("api.owner_api_host")
	}
	if viper.IsSet("api.auth_host") {
		c.API.AuthHost = viper.GetString("api.auth_host")
	}
	if viper.IsSet("api.client_id") {
		c.API.ClientID = viper.GetString("api.client_id")
	}
	if viper.IsSet("api.timeout") {
		c.API.Timeout = viper.GetDuration("api.timeout")
	}
	if viper.IsSet("home.latitude") {
		c.Home.Latitude = viper.GetFloat64("home.latitude")
	}
	if viper.IsSet("home.longitude") {
		c.Home.Longitude = viper.GetFloat64("home.longitude")
	}
	if viper.IsSet("bridge.listen") {
		c.Bridge.Listen = viper.GetString("bridge.listen")
	}
}

func initApp() {
	store = credentials.NewStore(cfg.DataDir)
	log.Debugf("Using data directory: %s", store.Dir())
	application = app.New(session.New(store, cfg.API))
}

func setLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", level)
	}
	log.SetLevel(lvl)
	return nil
}

func Execute() error {
	return RootCmd.Execute()
}

func GetApp() *app.App {
	return application
}

func GetStore() *credentials.Store {
	return store
}

func GetConfig() *config.Config {
	return cfg
}

func GetLogger() *logrus.Logger {
	return log
}

// VehicleIndex is the value of --vehicle.
func VehicleIndex() int {
	return vehicleIdx
}

// GetConfigPath returns the config file in use, or where it would be.
func GetConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}
	return config.DefaultConfigFilePath()
}

// PrintEventLog prints the newest event log entries, if any.
func PrintEventLog() {
	if application == nil {
		return
	}
	if entries := application.PollLog(); entries != "" {
		fmt.Println()
		fmt.Println(entries)
	}
}
