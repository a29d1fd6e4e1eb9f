package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/dexlink/dex"
)

func newLayoutCmd(g *globalOptions) *cobra.Command {
	var layoutFormat string

	cmd := &cobra.Command{
		Use:   "layout <class or dir>...",
		Short: "Report where every section and item is placed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				layoutFormat = g.cfg.Output.Layout
			}
			if layoutFormat != "text" && layoutFormat != "cbor" {
				return fmt.Errorf("unknown format: %s (expected text or cbor)", layoutFormat)
			}

			f, err := assemble(args)
			if err != nil {
				return err
			}
			layout, err := f.Layout()
			if err != nil {
				return err
			}

			if layoutFormat == "text" {
				return layout.WriteText(cmd.OutOrStdout())
			}
			data, err := dex.MarshalLayout(layout)
			if err != nil {
				return fmt.Errorf("encode cbor: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&layoutFormat, "format", "f", "text", "output format (text, cbor)")

	return cmd
}
