package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/dexlink/dex"
)

func newDumpCmd(g *globalOptions) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "dump <class or dir>...",
		Short: "Print an annotated hex listing of the assembled sections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("width") {
				width = g.cfg.Output.Width
			}
			f, err := assemble(args, dex.WithAnnotations(width))
			if err != nil {
				return err
			}
			return f.WriteAnnotationsTo(cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 79, "listing line width")

	return cmd
}
