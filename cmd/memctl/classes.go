package main

import (
	"github.com/spf13/cobra"

	"github.com/framekit/framekit/internal/memfmt"
	"github.com/framekit/framekit/pmem"
	"github.com/framekit/framekit/pmem/buddy"
	"github.com/framekit/framekit/pmem/slub"
)

var classesCompact bool

func init() {
	cmd := newClassesCmd()
	cmd.Flags().BoolVar(&classesCompact, "compact", false, "Show the Compact configuration instead of General")
	rootCmd.AddCommand(cmd)
}

func newClassesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Show the size-class table",
		Long: `The classes command shows how a class configuration maps onto slabs:
the buddy order backing each class, objects per slab, and the bytes a full
slab leaves unused.

Example:
  memctl classes
  memctl classes --compact
  memctl classes --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses()
		},
	}
	return cmd
}

// ClassRow describes one size class of a ClassReport.
type ClassRow struct {
	Class     int    `json:"class"`
	ObjSize   uint32 `json:"obj_size"`
	SlabOrder uint8  `json:"slab_order"`
	SlabBytes uint64 `json:"slab_bytes"`
	Capacity  uint64 `json:"capacity"`
	Unused    uint64 `json:"unused_bytes"`
}

// ClassReport is the JSON form of a size-class table.
type ClassReport struct {
	Name        string     `json:"name"`
	SlabObjects int        `json:"slab_objects"`
	Rows        []ClassRow `json:"classes"`
}

func runClasses() error {
	cfg := slub.ConfigGeneral
	if classesCompact {
		cfg = slub.ConfigCompact
	}

	report := ClassReport{Name: cfg.Name, SlabObjects: cfg.SlabObjects}
	for i, objSize := range cfg.Classes {
		bytes := uint64(objSize) * uint64(cfg.SlabObjects)
		frames := memfmt.AlignUp(bytes, pmem.FrameSize) >> pmem.FrameShift
		order := memfmt.OrderForFrames(frames)
		slabBytes := buddy.BlockBytes(order)
		capacity := slabBytes / uint64(objSize)
		report.Rows = append(report.Rows, ClassRow{
			Class:     i,
			ObjSize:   objSize,
			SlabOrder: order,
			SlabBytes: slabBytes,
			Capacity:  capacity,
			Unused:    slabBytes - capacity*uint64(objSize),
		})
	}

	if jsonOut {
		return printJSON(report)
	}

	printInfo("Size classes: %s (%d objects per slab minimum)\n\n", report.Name, report.SlabObjects)
	printInfo("%-6s %10s %6s %10s %9s %8s\n", "Class", "ObjSize", "Order", "SlabBytes", "Capacity", "Unused")
	for _, row := range report.Rows {
		printInfo("%-6d %10d %6d %10d %9d %8d\n",
			row.Class, row.ObjSize, row.SlabOrder, row.SlabBytes, row.Capacity, row.Unused)
	}
	printInfo("\nRequests above %d bytes go straight to the frame allocator.\n",
		cfg.Classes[len(cfg.Classes)-1])
	return nil
}
