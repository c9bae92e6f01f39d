package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cjeanneret/MotionFocus/internal/config"
	"github.com/cjeanneret/MotionFocus/internal/debug"
	"github.com/cjeanneret/MotionFocus/internal/logic/selection"
)

var (
	logLevel   = ""
	configPath = filepath.Join("configs", "default.yaml")
)

func setupLogger() error {
	if logLevel != "" {
		if _, err := logrus.ParseLevel(logLevel); err != nil {
			return fmt.Errorf("failed to parse log level: %v", err)
		}
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

// loadConfig reads the config file and sets the debug level from it,
// unless --log-level was given.
func loadConfig() (*config.Config, error) {
	if err := config.ValidateConfigPath(configPath); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	if logLevel == "" {
		debug.Init(cfg.Defaults.DebugLevel)
	} else {
		level, _ := logrus.ParseLevel(logLevel)
		debug.Init(debug.LevelFromLogrus(level))
		logrus.SetLevel(level)
	}
	return cfg, nil
}

func handleCmdError(w io.Writer, err error) {
	if errors.Is(err, selection.ErrNoCameraAvailable) {
		fmt.Fprintln(w, "\nError: no back or front camera found")
		fmt.Fprintln(w, "  - Check camera.devices in the config file")
	} else if errors.Is(err, selection.ErrNoAcceptableFocusMode) {
		fmt.Fprintln(w, "\nError: the selected camera has no usable autofocus mode")
		fmt.Fprintln(w, "  - It must support auto, continuous-picture or continuous-video")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(os.Stderr, err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "motionfocus",
		Short: "motionfocus refocuses a camera whenever the device is moved",
		Long: `motionfocus watches an accelerometer and runs an autofocus cycle on
the camera each time the device is moved, retrying until focus is acquired.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", logLevel, "log level (trace, debug, info, warn, error); overrides defaults.debug_level")
	globalFlags.StringVar(&configPath, "config", configPath, "path to config file")

	cmd.AddCommand(
		NewRunCommand(),
		NewProbeCommand(),
	)

	return cmd
}
