package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pixelscan/pixelscan/internal/capture"
	"github.com/pixelscan/pixelscan/internal/config"
	"github.com/pixelscan/pixelscan/internal/logging"
	"github.com/pixelscan/pixelscan/internal/scan"
	"github.com/pixelscan/pixelscan/internal/sysinfo"
	"github.com/pixelscan/pixelscan/internal/watch"
)

var (
	version = "0.1.0"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "pixelscan",
	Short: "On-screen color detector",
	Long:  `pixelscan watches a fixed region of the primary display and reports the screen coordinates of pixels matching a target palette`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start watching the screen region",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runScan(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		if err := printConfig(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pixelscan v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./pixelscan.yaml; built-in defaults apply without one)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runScan() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Validate()

	logging.Init(cfg.LogFormat, cfg.LogLevel, nil)
	log := logging.L("main")
	log.Info("starting pixelscan", "version", version)
	sysinfo.LogStartup(log)

	palette, err := cfg.Palette()
	if err != nil {
		return fmt.Errorf("target palette: %w", err)
	}
	if len(palette) == 0 {
		return fmt.Errorf("target palette is empty")
	}

	screenW, screenH, err := capture.PrimaryDisplaySize()
	if err != nil {
		return fmt.Errorf("query primary display: %w", err)
	}
	roi := capture.Centered(screenW/2, screenH/2, cfg.RegionWidth, cfg.RegionHeight)
	log.Info("primary display", "width", screenW, "height", screenH)

	src, err := capture.NewSource(capture.Config{
		DisplayIndex: cfg.DisplayIndex,
		RegionWidth:  cfg.RegionWidth,
		RegionHeight: cfg.RegionHeight,
	})
	if err != nil {
		return fmt.Errorf("initialize capture: %w", err)
	}
	defer src.Close()

	watcher := watch.New(src, scan.New(palette, cfg.Tolerance), roi, watch.Options{
		AcquireTimeout: time.Duration(cfg.AcquireTimeoutMs) * time.Millisecond,
		MaxAttempts:    cfg.MaxAttempts,
		NoFrameBackoff: time.Duration(cfg.NoFrameBackoffMs) * time.Millisecond,
		ErrorBackoff:   time.Duration(cfg.ErrorBackoffMs) * time.Millisecond,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher.Run(ctx)
	log.Info("shutdown complete")
	return nil
}

func printConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Validate()

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
