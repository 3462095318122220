package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/assets/internal/assets"
	"github.com/conduit-lang/assets/internal/cli/ui"
)

var (
	getType   string
	getOutput string
)

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Decode an asset and write it out",
		Long: `Decode the named asset as the requested type, then encode it again to
stdout or a file. Images are always written as PNG.

Examples:
  assetctl get config.xml --type xml
  assetctl get logo --type image -o logo.png
  assetctl --source archive get greeting`,
		Args: cobra.ExactArgs(1),
		RunE: runGet,
	}

	cmd.Flags().StringVarP(&getType, "type", "t", "text", "Asset type")
	cmd.Flags().StringVarP(&getOutput, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) (err error) {
	tag, err := kindTag(getType)
	if err != nil {
		return err
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

	v, err := stack.Cache.Get(args[0], tag)
	if assets.IsAssetNotFound(err) {
		var suggestions []string
		if names, lerr := stack.Source.List(""); lerr == nil {
			suggestions = ui.Suggest(args[0], names)
		}
		fmt.Fprint(cmd.ErrOrStderr(), ui.NotFound(args[0], getType, suggestions, color.NoColor))
	}
	if err != nil {
		return err
	}

	write := func(w io.Writer) error {
		return stack.Writers.Write(w, v, tag)
	}
	if getOutput == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(getOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", getOutput, err)
	}
	return writeAndClose(f, getOutput, write)
}

// writeAndClose runs write against w and reports the close error when the
// write itself succeeded.
func writeAndClose(w io.WriteCloser, path string, write func(io.Writer) error) (err error) {
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return write(w)
}
