package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"machine-insights/internal/config"
	"machine-insights/internal/observability/logging"
)

const defaultConfigPath = "config.yaml"

// NewRootCommand builds the machine-insights command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "machine-insights",
		Short:         "Day analytics over machine telemetry logs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(configPath, cmd.Flags().Changed("config"))
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", getenvDefault("MI_CONFIG", defaultConfigPath), "path to the YAML configuration")

	rootCmd.AddCommand(
		newServeCommand(a),
		newAlarmsCommand(a),
		newTimelineCommand(a),
		newTemperaturesCommand(a),
		newEnergyCommand(a),
		newExportCommand(a),
	)
	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		logging.New("error", "console").Error().Err(err).Msg("command failed")
		return 1
	}
	return 0
}

func (a *app) load(path string, required bool) error {
	cfg, err := config.Load(path, required || os.Getenv("MI_CONFIG") != "")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.location = loc
	a.logger = logging.New(cfg.Log.Level, cfg.Log.Format)
	return nil
}

func getenvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func dayOrToday(value string, loc *time.Location) string {
	if value == "" {
		return time.Now().In(loc).Format("2006-01-02")
	}
	return value
}
