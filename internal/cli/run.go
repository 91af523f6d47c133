package cli

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webpreview/internal/browser"
	"webpreview/internal/build"
	"webpreview/internal/config"
	"webpreview/internal/device"
	"webpreview/internal/logger"
	"webpreview/pkg/models"
)

var runFlags struct {
	webRoot string
	main    string
	assets  string
	appName string
	release bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compile, serve and open the application",
	Long:  `Compiles the entrypoint, builds the asset bundle, serves everything on a loopback port and launches a browser. Ctrl-C stops the server; the browser window is left open.`,
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
		zap.ReplaceGlobals(logg)

		if !cfg.Enabled {
			logg.Fatal("web preview device is disabled, set WEBPREVIEW_ENABLED=true to use it")
		}

		appName := runFlags.appName
		if appName == "" {
			if wd, err := os.Getwd(); err == nil {
				appName = filepath.Base(wd)
			} else {
				appName = "app"
			}
		}

		app := models.AppPackage{
			Name:     appName,
			WebRoot:  runFlags.webRoot,
			MainPath: runFlags.main,
		}
		opts := models.StartOptions{
			Minify:        runFlags.release,
			EnableAsserts: !runFlags.release,
		}

		dev := newDevice(cfg, logg)

		// Surface the device's own log stream.
		go func() {
			for line := range dev.LogReader().Lines() {
				logg.Info(line, zap.String("device", dev.ID()))
			}
		}()

		handle, err := dev.Start(context.Background(), app, opts)
		if err != nil {
			var compileErr *build.CompileError
			if errors.As(err, &compileErr) {
				// Recoverable: fix the source and run again.
				logg.Error("compile failed", zap.Error(compileErr))
				os.Exit(1)
			}
			// Bind, bundle and launch failures have no degraded mode.
			logg.Fatal("failed to start preview device", zap.Error(err))
		}

		logg.Info("preview available", zap.String("url", handle.URL))

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		logg.Info("shutting down preview server")
		if err := dev.Stop(context.Background()); err != nil {
			logg.Error("stop failed", zap.Error(err))
		}
	},
}

// newDevice builds the preview device selected by configuration.
func newDevice(cfg *config.Config, logg *zap.Logger) *device.WebDevice {
	compiler := build.NewJSCompiler(logg.Named("compiler"), cfg.Compiler, cfg.BuildDir)
	builder := build.NewDirBuilder(logg.Named("bundle"), runFlags.assets)

	var (
		id       string
		name     string
		launcher device.Launcher
	)
	if cfg.Browser == "default" {
		id, name = "browser", "Default Browser"
		launcher = browser.NewSystemLauncher(logg.Named("browser"))
	} else {
		id, name = "chrome", "Chrome"
		launcher = browser.NewLauncher(logg.Named("browser"))
	}

	return device.NewWebDevice(id, name, logg.Named("device"), compiler, builder, launcher, cfg.BuildDir)
}

func init() {
	runCmd.Flags().StringVar(&runFlags.webRoot, "web-root", "web", "directory containing index.html")
	runCmd.Flags().StringVar(&runFlags.main, "main", "web/main.dart", "application entrypoint")
	runCmd.Flags().StringVar(&runFlags.assets, "assets", "assets", "source asset directory")
	runCmd.Flags().StringVar(&runFlags.appName, "name", "", "application name (defaults to the working directory)")
	runCmd.Flags().BoolVar(&runFlags.release, "release", false, "minified build without assertions")

	rootCmd.AddCommand(runCmd)
}
