package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webpreview/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "webpreview",
	Short: "Local web-app preview device",
	Long: `webpreview compiles a web application, serves its build artifacts over a
loopback HTTP endpoint and opens a browser pointed at it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Console format so CLI errors stay readable.
		l, logErr := logger.New(logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
