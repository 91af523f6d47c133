package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"webpreview/internal/config"
	"webpreview/internal/device"
	"webpreview/internal/discovery"
	"webpreview/internal/logger"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List discoverable preview devices",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		poller := discovery.NewPoller(logg.Named("discovery"), cfg.Enabled, time.Second, func() []device.Device {
			return []device.Device{newDevice(cfg, logg)}
		})

		devices := poller.Devices()
		if len(devices) == 0 {
			fmt.Println("No preview devices available.")
			return
		}

		for _, d := range devices {
			fmt.Printf("%-12s %-20s supported=%t\n", d.ID(), d.Name(), d.IsSupported())
		}
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
