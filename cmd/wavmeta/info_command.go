package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cwbudde/wavmeta"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print the merged metadata of one audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := wavmeta.Extract(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			printRecord(out, rec)

			for _, w := range rec.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		},
	}
}

func recordRows(rec *wavmeta.Record) [][]string {
	rows := [][]string{{"Size", humanize.IBytes(uint64(rec.Size))}}
	if rec.Audio.FormatTag != 0 {
		rows = append(rows, []string{"Format", wavmeta.FormatName(rec.Audio.FormatTag)})
	}

	for _, f := range rec.Fields() {
		label := f.Name
		if _, ok := rec.Info[f.Name]; ok {
			if name := wavmeta.InfoTagName(f.Name); name != f.Name {
				label = fmt.Sprintf("%s (%s)", name, f.Name)
			}
		}
		rows = append(rows, []string{label, f.Value})
	}
	return rows
}

func printRecord(out io.Writer, rec *wavmeta.Record) {
	rows := recordRows(rec)

	if isTerminal(out) {
		fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
		return
	}

	for _, row := range rows {
		fmt.Fprintf(out, "%s: %s\n", row[0], row[1])
	}
}
