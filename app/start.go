package app

import (
	"github.com/spf13/cobra"

	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/config"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/daemon"
	"github.com/JereGun/realtor-internal-hub-main-sub002/internal/logger"
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration directory")

	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd)
}

var (
	configPath string // Path to the configuration file

	cfg     config.Config
	err     error
	devMode bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the authorization core RPC service",
		PreRun: func(_ *cobra.Command, _ []string) {
			loadConfig()

			if devMode {
				cfg.DevMode = true
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := daemon.New(&cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			return d.Start()
		},
	}
)

// loadConfig reads the configuration and initializes logging; shared PreRun
// for every command that touches the database.
func loadConfig() {
	if cfg, err = config.ReadConfig(configPath); err != nil {
		panic(err)
	}

	if err = logger.Init(cfg.Log); err != nil {
		panic(err)
	}
}
