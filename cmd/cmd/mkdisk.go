package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fat16os/fat16os/internal/blockdev"
	"github.com/fat16os/fat16os/internal/fat"
)

// DefineMkdiskCommand builds the mkdisk subcommand, per SPEC_FULL.md §6.6.
func DefineMkdiskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mkdisk <path> <size-kb>",
		Short:        "Create and format a new FAT16 disk image",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunMkdisk,
	}
	cmd.Flags().Uint8("sectors-per-cluster", 1, "cluster size in sectors")
	cmd.Flags().Uint16("root-entries", 512, "number of root directory entries")
	return cmd
}

func RunMkdisk(cmd *cobra.Command, args []string) error {
	path := args[0]
	sizeKB, err := parseUint32(args[1])
	if err != nil {
		return fmt.Errorf("invalid size-kb: %w", err)
	}

	sectorsPerCluster, _ := cmd.Flags().GetUint8("sectors-per-cluster")
	rootEntries, _ := cmd.Flags().GetUint16("root-entries")

	totalSectors := sizeKB * 1024 / blockdev.SectorSize

	dev, err := blockdev.NewFileATASim(path, totalSectors, true)
	if err != nil {
		return err
	}
	defer dev.Close()

	opts := fat.FormatOptions{SectorsPerCluster: sectorsPerCluster, RootEntries: rootEntries}
	if err := fat.Format(dev, totalSectors, opts); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "formatted %s: %d sectors, %d sectors/cluster, %d root entries\n",
		path, totalSectors, sectorsPerCluster, rootEntries)
	return nil
}

func parseUint32(s string) (uint32, error) {
	var v uint32
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}
