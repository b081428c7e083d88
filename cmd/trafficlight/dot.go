package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anggasct/moore/visualization"
)

func newDotCmd(a *app) *cobra.Command {
	var (
		output    string
		svg       bool
		short     bool
		selfLoops bool
	)

	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Render the table as a Graphviz graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, entry, err := a.table()
			if err != nil {
				return err
			}

			opts := visualization.DefaultDOTOptions()
			opts.UseShortCodes = short
			opts.ShowSelfLoops = selfLoops
			gen := visualization.NewDOTGenerator(table, entry, opts)

			if output != "" && !svg {
				return gen.GenerateToFile(output)
			}

			var out string
			if svg {
				out, err = gen.GenerateSVG()
			} else {
				out, err = gen.Generate()
			}
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, []byte(out), 0o644)
			}
			_, err = fmt.Fprint(a.stdout, out)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	flags.BoolVar(&svg, "svg", false, "render SVG with the dot binary")
	flags.BoolVar(&short, "short", true, "label nodes with short codes")
	flags.BoolVar(&selfLoops, "self-loops", true, "draw readings that keep the current state")
	return cmd
}
