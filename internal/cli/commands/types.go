package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/assets/internal/cli/ui"
	"github.com/conduit-lang/assets/internal/codec"
)

// NewTypesCommand creates the types command
func NewTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List asset types and the codecs that handle them",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			readers := codec.DefaultReaders()
			writers := codec.DefaultWriters()

			table := ui.NewTable(cmd.OutOrStdout(), color.NoColor, "KIND", "TYPE", "READER", "WRITER")
			for _, kind := range codec.Kinds() {
				tag, _ := codec.KindTag(kind)
				reader, writer := "-", "-"
				if rd, ok := readers.Resolve(tag); ok {
					reader = rd.Capability().Name()
				}
				if wr, ok := writers.Resolve(tag); ok {
					writer = wr.Capability().Name()
				}
				table.AddRow(kind, tag.String(), reader, writer)
			}
			table.Render()
		},
	}
}
