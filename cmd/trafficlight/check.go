package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anggasct/moore"
)

var errNotLive = errors.New("table has unreachable or trap states")

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the table and report reachability",
		Long:  "Validate the table, then report states unreachable from the entry and states that can never be left.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, entry, err := a.table()
			if err != nil {
				return err
			}
			analysis, err := moore.Analyze(table, entry)
			if err != nil {
				return err
			}
			fmt.Fprint(a.stdout, analysis.String())
			if !analysis.Live() {
				return errNotLive
			}
			return nil
		},
	}
}
