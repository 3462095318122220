package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [PATTERN]",
		Short: "List asset names",
		Long: `List the names known to the configured source. PATTERN is a glob where
** matches across directories.

Examples:
  assetctl list
  assetctl list '**/*.xml'`,
		Args: cobra.MaximumNArgs(1),
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) (err error) {
	pattern := ""
	if len(args) == 1 {
		pattern = args[0]
	}

	stack, logger, err := openStack(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer func() {
		if cerr := stack.Close(); err == nil {
			err = cerr
		}
	}()

	names, err := stack.Source.List(pattern)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	if len(names) == 0 {
		color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), "No assets found")
	}
	return nil
}
