package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framekit/framekit/pmem"
)

var (
	layoutBase    uint64
	layoutSize    string
	layoutReserve string
)

func init() {
	cmd := newLayoutCmd()
	cmd.Flags().Uint64Var(&layoutBase, "base", uint64(pmem.DefaultBase), "Base address of the managed span")
	cmd.Flags().StringVar(&layoutSize, "size", "64M", "Span size (accepts K/M/G suffix)")
	cmd.Flags().StringVar(&layoutReserve, "reserve", "0", "Leading bytes excluded from allocation")
	rootCmd.AddCommand(cmd)
}

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show the derived physical memory layout",
		Long: `The layout command derives the memory map for a span without mapping
any memory: the reserved leading region and the span left for the allocators,
both rounded to frame boundaries.

Example:
  memctl layout
  memctl layout --size 128M --reserve 2M
  memctl layout --base 0x80000000 --size 64M --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout()
		},
	}
	return cmd
}

// LayoutRegion is one region of a LayoutReport.
type LayoutRegion struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Bytes  uint64 `json:"bytes"`
	Frames uint64 `json:"frames"`
}

// LayoutReport is the JSON form of a derived memory map.
type LayoutReport struct {
	FrameSize uint64       `json:"frame_size"`
	RAM       LayoutRegion `json:"ram"`
	Reserved  LayoutRegion `json:"reserved"`
	Free      LayoutRegion `json:"free"`
}

func layoutRegion(r pmem.Region) LayoutRegion {
	return LayoutRegion{
		Start:  r.Start.String(),
		End:    r.End().String(),
		Bytes:  r.Size,
		Frames: r.Frames(),
	}
}

func runLayout() error {
	size, err := parseSize(layoutSize)
	if err != nil {
		return err
	}
	reserve, err := parseSize(layoutReserve)
	if err != nil {
		return err
	}

	printVerbose("Deriving layout: base=%#x size=%d reserve=%d\n", layoutBase, size, reserve)

	m, err := pmem.CalculateMap(pmem.PhysAddr(layoutBase), size, reserve)
	if err != nil {
		return fmt.Errorf("failed to derive layout: %w", err)
	}

	if jsonOut {
		return printJSON(LayoutReport{
			FrameSize: pmem.FrameSize,
			RAM:       layoutRegion(m.RAM),
			Reserved:  layoutRegion(m.Reserved),
			Free:      layoutRegion(m.Free),
		})
	}

	printInfo("%s", m.String())
	printInfo("\nFrame size: %s, %s free for allocation\n",
		formatBytes(pmem.FrameSize), formatBytes(m.Free.Size))
	return nil
}
