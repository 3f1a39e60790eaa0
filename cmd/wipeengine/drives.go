package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wipeengine/internal/drive"
)

var drivesCmd = &cobra.Command{
	Use:   "drives",
	Short: "List mountable volumes and their classification",
	RunE:  runDrives,
}

func runDrives(cmd *cobra.Command, args []string) error {
	infos, err := drive.Enumerate()
	if err != nil {
		return fmt.Errorf("enumerate drives: %w", err)
	}
	probe := drive.DefaultProbe()
	for _, d := range infos {
		typ := drive.Classify(d.Path, probe)
		fmt.Printf("%-24s %-8s %12d/%-12d %s\n", d.Path, typ, d.Free, d.Total, d.Device)
	}
	return nil
}

var classifyCmd = &cobra.Command{
	Use:   "classify <path>",
	Short: "Classify a mount path or device node",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	typ := drive.Classify(args[0], drive.DefaultProbe())
	fmt.Println(typ)
	return nil
}
