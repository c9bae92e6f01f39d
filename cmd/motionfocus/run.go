package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cjeanneret/MotionFocus/internal/config"
	"github.com/cjeanneret/MotionFocus/internal/debug"
	"github.com/cjeanneret/MotionFocus/internal/hw/camera"
	"github.com/cjeanneret/MotionFocus/internal/hw/gpio"
	"github.com/cjeanneret/MotionFocus/internal/logic/motion"
	"github.com/cjeanneret/MotionFocus/internal/logic/session"
	"github.com/cjeanneret/MotionFocus/internal/web"
)

func NewRunCommand() *cobra.Command {
	var (
		threshold    float64
		retryDelayMs int
	)
	webPort := &webPortFlag{defaultPort: 8080}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Select a camera and refocus it on every movement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateCLIOverrides(threshold, retryDelayMs); err != nil {
				return fmt.Errorf("invalid CLI override: %w", err)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyOverrides(cfg, threshold, retryDelayMs)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runSession(ctx, cfg, webPort.port(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.Var(webPort, "web", "start web server on port; --web for default 8080, --web=8980 for custom port")
	flags.Lookup("web").NoOptDefVal = strconv.Itoa(webPort.defaultPort)
	flags.Float64Var(&threshold, "threshold", 0, "override motion.threshold, the |a|²/g² trigger level (0 = config)")
	flags.IntVar(&retryDelayMs, "retry-delay-ms", noRetryOverride, "override focus.retry_delay_ms (-1 = config)")

	return cmd
}

// runSession wires the hardware to a session and blocks until ctx is done
// or, without a web server, the motion source is exhausted.
func runSession(ctx context.Context, cfg *config.Config, port int, out io.Writer) error {
	debug.Section("Initialization")
	debug.Value("Config path", configPath)
	debug.Value("Debug level", debug.Level())

	var g gpio.Driver
	if cfg.Camera.Type == config.CameraGPIO {
		debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
		debug.Step(1, "Initializing GPIO driver")
		d, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
		if err != nil {
			return fmt.Errorf("init GPIO failed: %w", err)
		}
		defer closeLogged("GPIO driver", d.Close)
		g = d
	}

	debug.Step(2, "Selecting camera and focus mode")
	devices, err := cfg.CameraDevices()
	if err != nil {
		return err
	}
	sel, err := session.Select(camera.NewStaticEnumeration(devices))
	if err != nil {
		return err
	}

	debug.Step(3, "Initializing camera focus")
	cam, err := newFocusFromConfig(g, cfg)
	if err != nil {
		return fmt.Errorf("init camera failed: %w", err)
	}
	debug.Value("Camera type", cfg.Camera.Type)
	debug.Value("Focus delay", cfg.FocusDelay())

	debug.Step(4, "Opening motion source")
	src, closeSrc, err := newSourceFromConfig(cfg, os.Stdin)
	if err != nil {
		return err
	}
	defer closeLogged("motion source", closeSrc)
	debug.Value("Motion source", cfg.Motion.Source)
	debug.Value("Threshold", cfg.Motion.Threshold)
	debug.Value("Retry delay", cfg.RetryDelay())

	sinks := session.MultiSink{}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		sinks = append(sinks, newConsoleSink(out, true))
	} else {
		sinks = append(sinks, session.LogSink{})
	}

	var broadcaster *web.StatusBroadcaster
	if port > 0 {
		broadcaster = web.NewStatusBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stderr, web.BroadcastWriter(broadcaster)))
		sinks = append(sinks, broadcaster)
	}

	gate := motion.NewGate(motion.GateConfig{
		Threshold: cfg.Motion.Threshold,
		Gravity:   cfg.Motion.Gravity,
	})
	orch := session.NewOrchestrator(gate, cam, sinks, cfg.RetryDelay())
	defer orch.Cancel()

	fmt.Fprintf(out, "Mode : %s\n", sel.Mode)
	debug.Section("Watching motion")

	if broadcaster == nil {
		return ignoreCanceled(orch.Run(ctx, src))
	}

	srv, err := web.NewServer(fmt.Sprintf(":%d", port), broadcaster, orch, web.SessionInfo{
		CameraID:     sel.Camera.ID,
		Facing:       sel.Camera.Facing.String(),
		FocusMode:    string(sel.Mode),
		Threshold:    cfg.Motion.Threshold,
		RetryDelayMs: cfg.Focus.RetryDelayMs,
	})
	if err != nil {
		return err
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	srvErr := make(chan error, 1)
	go func() {
		err := srv.Run(ctx)
		if err != nil {
			stop()
		}
		srvErr <- err
	}()

	runErr := orch.Run(ctx, src)
	if runErr == nil {
		debug.Info("motion source finished; web server keeps running until interrupted")
	}
	if err := <-srvErr; err != nil {
		return fmt.Errorf("web server: %w", err)
	}
	return ignoreCanceled(runErr)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
