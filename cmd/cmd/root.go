package cmd

import (
	"github.com/spf13/cobra"
)

const AppName = "fat16os"

// Execute builds the command tree and runs it against os.Args.
func Execute() error {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - a FAT16 filesystem driver and line editor over a simulated ATA disk",
	}

	rootCmd.AddCommand(DefineMkdiskCommand())
	rootCmd.AddCommand(DefineShellCommand())
	rootCmd.AddCommand(DefineEditCommand())
	rootCmd.AddCommand(DefineFsckCommand())
	rootCmd.AddCommand(DefineMountCommand())

	return rootCmd.Execute()
}
