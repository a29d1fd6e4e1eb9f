package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/dexlink/dex"
)

func newBuildCmd(g *globalOptions) *cobra.Command {
	var output string
	var annotate bool

	cmd := &cobra.Command{
		Use:   "build <class or dir>...",
		Short: "Write the constant sections of the given class files to a dex file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := g.cfg.OutputPath()
			if cmd.Flags().Changed("output") {
				out = output
			}
			if !cmd.Flags().Changed("annotate") {
				annotate = g.cfg.Output.Annotate
			}

			var opts []dex.Option
			if annotate {
				opts = append(opts, dex.WithAnnotations(g.cfg.Output.Width))
			}
			f, err := assemble(args, opts...)
			if err != nil {
				return err
			}

			data, err := f.Bytes()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			if annotate {
				if err := writeListing(f, out+".txt"); err != nil {
					return fmt.Errorf("write listing: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default from dexlink.toml, else out.dex)")
	cmd.Flags().BoolVar(&annotate, "annotate", false, "also write an annotated listing next to the output")

	return cmd
}

// writeListing writes the annotated listing of f to path.
func writeListing(f *dex.File, path string) error {
	listing, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.WriteAnnotationsTo(listing); err != nil {
		listing.Close()
		return err
	}
	return listing.Close()
}
