package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fat16os/fat16os/internal/blockdev"
	"github.com/fat16os/fat16os/internal/console"
	"github.com/fat16os/fat16os/internal/editor"
	"github.com/fat16os/fat16os/internal/fat"
	"github.com/fat16os/fat16os/internal/keyboard"
)

// DefineEditCommand builds the edit subcommand, per SPEC_FULL.md §6.6.
func DefineEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "edit <path> <filename>",
		Short:        "Mount a FAT16 disk image and edit a file on it",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunEdit,
	}
	cmd.Flags().Int("width", 80, "console width")
	cmd.Flags().Int("height", 24, "console height")
	return cmd
}

func RunEdit(cmd *cobra.Command, args []string) error {
	dev, err := blockdev.NewFileATASim(args[0], 0, false)
	if err != nil {
		return err
	}
	defer dev.Close()

	vol, err := fat.Mount(dev)
	if err != nil {
		return err
	}

	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	con := console.NewANSI(cmd.OutOrStdout(), width, height)
	kb := keyboard.NewStdin(os.Stdin)

	ed := editor.New(vol, con, kb, args[1])
	return ed.Run()
}
