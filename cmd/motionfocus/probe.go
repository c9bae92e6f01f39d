package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cjeanneret/MotionFocus/internal/hw/camera"
	"github.com/cjeanneret/MotionFocus/internal/logic/session"
)

func NewProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "List the configured cameras and show which camera and focus mode would be used",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			devices, err := cfg.CameraDevices()
			if err != nil {
				return err
			}
			return probe(cmd.OutOrStdout(), devices)
		},
	}
}

func probe(w io.Writer, devices []camera.Device) error {
	bold := func(format string, a ...interface{}) string { return color.New(color.Bold).Sprintf(format, a...) }

	fmt.Fprintln(w, bold("Cameras:"))
	for _, d := range devices {
		modes := make([]string, 0, len(d.FocusModes))
		for _, m := range d.FocusModes {
			if m.Known() {
				modes = append(modes, string(m))
			} else {
				modes = append(modes, color.New(color.Faint).Sprint(string(m)))
			}
		}
		fmt.Fprintf(w, "  %s  %s\n", d.Descriptor, strings.Join(modes, ", "))
	}

	sel, err := session.Select(camera.NewStaticEnumeration(devices))
	if err != nil {
		fmt.Fprintf(w, "\n%s %v\n", bool2Text(false), err)
		return err
	}
	fmt.Fprintf(w, "\n%s Camera : %s\n", bool2Text(true), sel.Camera)
	fmt.Fprintf(w, "%s Mode : %s\n", bool2Text(true), sel.Mode)
	return nil
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}
