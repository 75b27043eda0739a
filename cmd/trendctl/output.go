package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"welltrend/internal/output"
)

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "write JSON instead of a table")
	cmd.Flags().Bool("csv", false, "write CSV instead of a table")
	cmd.Flags().String("out", "", "write to this file instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("json", "csv")
}

// emitter renders one result in the format chosen by the output flags.
type emitter struct {
	JSON  any
	CSV   func(io.Writer) error
	Table func(*tablewriter.Table)
}

func emit(cmd *cobra.Command, e emitter) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}
	asCSV, err := cmd.Flags().GetBool("csv")
	if err != nil {
		return fmt.Errorf("failed to get csv flag: %w", err)
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}

	write := func(w io.Writer) error {
		switch {
		case asJSON:
			return output.WriteJSON(w, e.JSON)
		case asCSV:
			return e.CSV(w)
		default:
			table := newTable(w)
			e.Table(table)
			table.Render()
			return nil
		}
	}
	if outPath != "" {
		return output.WriteFile(outPath, write)
	}
	return write(cmd.OutOrStdout())
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	return table
}
