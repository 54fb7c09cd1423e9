package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nerrad567/powerline-core/internal/catalog"
)

var devicesCatalogPath string

func devicesCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "devices",
		Short: "List the devices and scenes in a catalog file",
		Args:  cobra.ExactArgs(0),
		RunE:  runDevices,
	}
	cmd.Flags().StringVar(&devicesCatalogPath, "catalog", "./data/catalog.json", "Path to the catalog file")

	return &cmd
}

func runDevices(_ *cobra.Command, _ []string) error {
	cat, err := catalog.Load(devicesCatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	devices := cat.SortedDevices()
	if len(devices) == 0 {
		fmt.Println("catalog is empty")
		return nil
	}

	fmt.Printf("%-8s %s\n", "ADDRESS", "CAPABILITIES")
	for _, addr := range devices {
		device, _ := cat.Device(addr)
		fmt.Printf("%-8s %s\n", addr, capabilitySummary(device))
	}

	scenes := cat.Scenes()
	if len(scenes) > 0 {
		fmt.Println()
		fmt.Printf("%-8s %s\n", "SCENE", "MEMBERS")
		for _, addr := range scenes {
			scene, _ := cat.Scene(addr)
			members := make([]string, 0, len(scene.Members))
			for _, m := range scene.Members {
				members = append(members, fmt.Sprintf("%s@%d", m.Address, m.Level))
			}
			fmt.Printf("%-8s %s\n", addr, strings.Join(members, " "))
		}
	}

	return nil
}

func capabilitySummary(d catalog.Device) string {
	var caps []string
	if d.Dims {
		caps = append(caps, "dims")
	}
	if d.Extended {
		caps = append(caps, "extended")
	}
	if d.Preset {
		caps = append(caps, "preset")
	}
	if d.AllLightsOn {
		caps = append(caps, "allLightsOn")
	}
	if d.AllLightsOff {
		caps = append(caps, "allLightsOff")
	}
	if d.AllUnitsOff {
		caps = append(caps, "allUnitsOff")
	}
	if d.UniversalAllLightsOn || d.UniversalAllLightsOff || d.UniversalAllUnitsOff {
		caps = append(caps, "universal")
	}
	if len(caps) == 0 {
		return "-"
	}
	return strings.Join(caps, ", ")
}
