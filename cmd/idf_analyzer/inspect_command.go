package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/idf_analyzer_go/internal/parser"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the header fields and data block size of an IDF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parser.ParseIDFFile(args[0])
			if err != nil {
				return err
			}
			m := f.Metadata
			rows := [][]string{
				{"Method", m.Method},
				{"Technique", m.Technique},
				{"Title", m.Title},
				{"Stages", optionalInt(m.Stages)},
				{"Interval time (s)", optionalFloat(m.Interval)},
				{"Marker line", fmt.Sprintf("%d", f.MarkerIndex+1)},
				{"Columns", fmt.Sprintf("%d", m.Columns)},
				{"Points", fmt.Sprintf("%d", m.Points)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
