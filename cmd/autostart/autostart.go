package autostart

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"

	"github.com/ulrichard/uttesla/app"
	"github.com/ulrichard/uttesla/autostart"
	"github.com/ulrichard/uttesla/cmd/root"
)

var (
	maximumCharge   int
	cronSchedule    string
	highTariffTimes []string
)

var AutostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Automatically start charging when the car is at home",
	Long: `Autostart checks the vehicle's position and battery, and starts charging up
to --maximum-charge when it is parked within 100 m of the home location set
in the configuration file.`,
}

var autostartOnceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run the autostart check once",
	RunE:  runAutostartOnce,
}

var autostartScheduledCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "Run the autostart check on a cron schedule",
	RunE:  runScheduledAutostart,
}

var autostartSmartCmd = &cobra.Command{
	Use:   "smart",
	Short: "Run the autostart check on a cron schedule, during low tariff only",
	Long: `Like "scheduled", but checks that fall into a high tariff window are skipped.
The default high tariff window is Monday to Friday, 07:00-20:00.`,
	Example: `  # Weekday daytime and Saturday morning are expensive
  uttesla autostart smart --high-tariff-times 7:00-20:00:Mon,Tue,Wed,Thu,Fri --high-tariff-times 7:00-13:00:Sat`,
	RunE: runSmartAutostart,
}

func init() {
	AutostartCmd.PersistentFlags().IntVar(&maximumCharge, "maximum-charge", 90, "maximum charge percentage")
	AutostartCmd.PersistentFlags().StringVar(&cronSchedule, "cron", "*/5 * * * *", "cron schedule of the checks")

	autostartSmartCmd.Flags().StringSliceVar(&highTariffTimes, "high-tariff-times", nil,
		"high tariff time ranges (format: 'HH:MM-HH:MM:Mon,Tue,Wed,Thu,Fri')")

	AutostartCmd.AddCommand(autostartOnceCmd)
	AutostartCmd.AddCommand(autostartScheduledCmd)
	AutostartCmd.AddCommand(autostartSmartCmd)

	root.RootCmd.AddCommand(AutostartCmd)
}

func runAutostartOnce(cmd *cobra.Command, args []string) error {
	service, a, err := createService()
	if err != nil {
		return err
	}
	return service.Run(cmd.Context(), a)
}

func runScheduledAutostart(cmd *cobra.Command, args []string) error {
	waitForTimeSync()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	service, a, err := createService()
	if err != nil {
		return err
	}

	return runScheduler(ctx, func() error { return service.Run(ctx, a) })
}

func runSmartAutostart(cmd *cobra.Command, args []string) error {
	waitForTimeSync()

	tariff, err := autostart.ParseTariff(highTariffTimes)
	if err != nil {
		return err
	}
	if len(highTariffTimes) > 0 {
		fmt.Printf("Using custom high tariff schedule: %v\n", highTariffTimes)
	} else {
		fmt.Println("Using default high tariff schedule: Monday-Friday 07:00-20:00")
	}

	now := time.Now()
	if !tariff.IsHigh(now) {
		fmt.Println("Currently in low tariff period - charging attempts will begin")
	} else if next := tariff.NextLow(now); !next.IsZero() {
		fmt.Printf("Next low tariff period starts at: %s\n", next.Format("2006-01-02 15:04 Mon"))
	} else {
		return fmt.Errorf("the high tariff schedule covers the whole week")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	service, a, err := createService()
	if err != nil {
		return err
	}

	return runScheduler(ctx, tariff.Gate(time.Now, func() error { return service.Run(ctx, a) }))
}

func runScheduler(ctx context.Context, check func() error) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	defer func() { _ = s.Shutdown() }()

	_, err = s.NewJob(
		gocron.CronJob(cronSchedule, false),
		gocron.NewTask(func() {
			if err := check(); err != nil {
				root.GetLogger().Errorf("Autostart failed: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	fmt.Printf("Starting scheduled autostart with cron: %s\n", cronSchedule)
	fmt.Println("Press Ctrl+C to stop")
	s.Start()

	<-ctx.Done()
	fmt.Fprintln(os.Stderr, "\nShutting down scheduler...")
	return nil
}

// createService validates the flags and the home location. Logging in is
// left to every single check.
func createService() (*autostart.Service, *app.App, error) {
	if maximumCharge < 1 || maximumCharge > 100 {
		return nil, nil, fmt.Errorf("--maximum-charge must be between 1 and 100, got %d", maximumCharge)
	}

	cfg := root.GetConfig()
	if cfg == nil {
		return nil, nil, fmt.Errorf("configuration not loaded")
	}
	if err := cfg.ValidateHome(); err != nil {
		return nil, nil, fmt.Errorf("invalid home location: %w", err)
	}

	a := root.GetApp()
	if a == nil {
		return nil, nil, fmt.Errorf("app not initialized")
	}
	return autostart.NewService(a, root.VehicleIndex(), maximumCharge, cfg.Home), a, nil
}

func waitForTimeSync() {
	epochPlus1Year := time.Unix(0, 0).Add(365 * 24 * time.Hour)
	for time.Now().Before(epochPlus1Year) {
		root.GetLogger().Debug("Waiting for time to be set...")
		time.Sleep(1 * time.Second)
	}
}
