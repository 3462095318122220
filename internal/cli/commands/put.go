package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	putType string
	putFrom string
)

// NewPutCommand creates the put command
func NewPutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put NAME",
		Short: "Decode input and store it as an asset",
		Long: `Decode the input (a file or stdin) as the requested type and store it
under NAME through the configured source. Archive sources store it in the
entry NAME.asset.

Examples:
  assetctl put greeting --from hello.txt
  echo "name: demo" | assetctl put app --type yaml
  assetctl put logo --type image --from logo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: runPut,
	}

	cmd.Flags().StringVarP(&putType, "type", "t", "text", "Asset type")
	cmd.Flags().StringVarP(&putFrom, "from", "f", "-", "Input file, or - for stdin")

	return cmd
}

func runPut(cmd *cobra.Command, args []string) (err error) {
	tag, err := kindTag(putType)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if putFrom != "-" {
		f, err := os.Open(putFrom)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", putFrom, err)
		}
		defer f.Close()
		in = f
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

	v, err := stack.Readers.Read(in, tag)
	if err != nil {
		return fmt.Errorf("failed to decode input as %s: %w", putType, err)
	}
	if c, ok := v.(io.Closer); ok {
		defer c.Close()
	}

	if err := stack.Cache.Write(v, args[0], tag); err != nil {
		return err
	}

	successColor := color.New(color.FgGreen, color.Bold)
	successColor.Fprintf(cmd.OutOrStdout(), "Stored %s (%s)\n", args[0], putType)
	return nil
}
