package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fat16os/fat16os/internal/blockdev"
	"github.com/fat16os/fat16os/internal/fat"
)

// DefineShellCommand builds the shell subcommand, per SPEC_FULL.md §6.6: an
// interactive line-oriented command loop over a mounted volume, the Go
// stand-in for the kernel's built-in shell.
func DefineShellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "shell <path>",
		Short:        "Mount a FAT16 disk image and run an interactive shell",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunShell,
	}
	return cmd
}

func RunShell(cmd *cobra.Command, args []string) error {
	dev, err := blockdev.NewFileATASim(args[0], 0, false)
	if err != nil {
		return err
	}
	defer dev.Close()

	vol, err := fat.Mount(dev)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintf(out, "%s> ", vol.Pwd())
	for scanner.Scan() {
		runShellLine(vol, out, scanner.Text())
		fmt.Fprintf(out, "%s> ", vol.Pwd())
	}
	return nil
}

// runShellLine dispatches one shell command, printing last_error followed
// by a newline on failure, per §7's user surface.
func runShellLine(vol *fat.Volume, out io.Writer, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	cmdName, rest := fields[0], fields[1:]
	var err error

	switch cmdName {
	case "ls":
		var entries []fat.Entry
		entries, err = vol.Ls()
		for _, e := range entries {
			if e.IsDir {
				fmt.Fprintf(out, "<DIR> %s\n", e.Name)
			} else {
				fmt.Fprintf(out, "      %s\n", e.Name)
			}
		}
	case "cd":
		if len(rest) >= 1 {
			err = vol.Cd(rest[0])
		} else {
			err = vol.Cd("")
		}
	case "pwd":
		fmt.Fprintln(out, vol.Pwd())
	case "mkdir":
		if len(rest) >= 1 {
			err = vol.Mkdir(rest[0])
		}
	case "touch":
		if len(rest) >= 1 {
			err = vol.Touch(rest[0])
		}
	case "cat":
		if len(rest) >= 1 {
			err = vol.Cat(rest[0], out)
		}
	case "write":
		if len(rest) >= 2 {
			data := strings.Join(rest[1:], " ")
			err = vol.Write(rest[0], []byte(data))
		}
	case "df":
		var usage fat.DiskUsage
		usage, err = vol.Df()
		if err == nil {
			fmt.Fprint(out, usage.String())
		}
	case "rm":
		if len(rest) >= 1 {
			err = vol.Rm(rest[0])
		}
	case "rmdir":
		if len(rest) >= 1 {
			err = vol.Rmdir(rest[0])
		}
	default:
		fmt.Fprintf(out, "unknown command: %s\n", cmdName)
		return
	}

	if err != nil {
		fmt.Fprintln(out, vol.LastError())
	}
}
