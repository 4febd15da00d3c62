package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fat16os/fat16os/internal/blockdev"
	"github.com/fat16os/fat16os/internal/diag"
	"github.com/fat16os/fat16os/internal/fat"
	"github.com/fat16os/fat16os/internal/logger"
)

// DefineFsckCommand builds the fsck subcommand, per SPEC_FULL.md §6.6: a
// read-only consistency pass that exits non-zero when it finds
// cross-linked clusters.
func DefineFsckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "fsck <path>",
		Short:        "Check a FAT16 disk image for cross-linked clusters",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunFsck,
	}
	return cmd
}

func RunFsck(cmd *cobra.Command, args []string) error {
	dev, err := blockdev.NewFileATASim(args[0], 0, false)
	if err != nil {
		return err
	}
	defer dev.Close()

	vol, err := fat.Mount(dev)
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr, logger.InfoLevel)

	report, err := diag.Check(vol)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "free clusters: %d\n", report.FreeClusters)
	fmt.Fprintf(out, "used clusters: %d\n", report.UsedClusters)
	log.Infof("scanned %s: %d free, %d used", args[0], report.FreeClusters, report.UsedClusters)
	if len(report.CrossLinked) == 0 {
		fmt.Fprintln(out, "no cross-linked clusters found")
		return nil
	}

	for _, cl := range report.CrossLinked {
		fmt.Fprintf(out, "cross-linked cluster %d: %s%s (first claimed by %s)\n", cl.Cluster, cl.Path, cl.Name, cl.Original)
		log.Warnf("cross-linked cluster %d at %s%s (first claimed by %s)", cl.Cluster, cl.Path, cl.Name, cl.Original)
	}
	return fmt.Errorf("found %d cross-linked cluster(s)", len(report.CrossLinked))
}
