package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/anggasct/moore"
)

func newTableCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the transition table as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, entry, err := a.table()
			if err != nil {
				return err
			}
			data, err := moore.MarshalTable(table, entry)
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, data, 0o644)
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
