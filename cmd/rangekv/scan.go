package main

import (
	"fmt"
	"io"

	"github.com/NethermindEth/rangekv/db"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const (
	fromF     = "from"
	toF       = "to"
	limitF    = "limit"
	reverseF  = "reverse"
	snapshotF = "snapshot"
	formatF   = "format"

	formatTable = "table"
	formatPlain = "plain"
)

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String(fromF, "", "Start of the scan (inclusive). Scans from the first key in scan direction when unset.")
	cmd.Flags().String(toF, "", "End of the scan (inclusive). Scans to the last key in scan direction when unset.")
	cmd.Flags().Int(limitF, db.NoLimit, "Maximum number of entries; negative means unlimited.")
	cmd.Flags().Bool(reverseF, false, "Scan in descending key order.")
}

func scanSpec(cmd *cobra.Command, c codec) (db.ScanSpec, error) {
	var opts []db.ScanOption
	for _, bound := range []struct {
		flag string
		opt  func([]byte) db.ScanOption
	}{{fromF, db.From}, {toF, db.To}} {
		if !cmd.Flags().Changed(bound.flag) {
			continue
		}
		raw, err := cmd.Flags().GetString(bound.flag)
		if err != nil {
			return db.ScanSpec{}, err
		}
		key, err := c.decode(raw)
		if err != nil {
			return db.ScanSpec{}, err
		}
		opts = append(opts, bound.opt(key))
	}

	limit, err := cmd.Flags().GetInt(limitF)
	if err != nil {
		return db.ScanSpec{}, err
	}
	reverse, err := cmd.Flags().GetBool(reverseF)
	if err != nil {
		return db.ScanSpec{}, err
	}
	opts = append(opts, db.WithLimit(limit))
	if reverse {
		opts = append(opts, db.Reversed())
	}
	return db.NewScanSpec(opts...), nil
}

// scope runs fn against the live store, or against a snapshot view when --snapshot is set.
func scope(cmd *cobra.Command, s *session, fn func(db.Iterable) error) error {
	pinned, err := cmd.Flags().GetBool(snapshotF)
	if err != nil {
		return err
	}
	if !pinned {
		return fn(s.store)
	}
	return db.View(s.store, func(view *db.SnapshotView) error {
		return fn(view)
	})
}

func scanCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the entries of a key range",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string, s *session) error {
			spec, err := scanSpec(cmd, s.codec)
			if err != nil {
				return err
			}
			format, err := cmd.Flags().GetString(formatF)
			if err != nil {
				return err
			}

			var rows [][]string
			err = scope(cmd, s, func(from db.Iterable) error {
				return db.NewRangeCursor(from, spec).ForEach(func(key, value []byte) error {
					rows = append(rows, []string{s.codec.encode(key), s.codec.encode(value)})
					return nil
				})
			})
			if err != nil {
				return err
			}
			s.log.Debugw("Scanned range", "entries", len(rows))
			return printRows(cmd.OutOrStdout(), format, rows)
		}),
	}
	addRangeFlags(cmd)
	cmd.Flags().Bool(snapshotF, false, "Read from a snapshot pinned for the duration of the scan.")
	cmd.Flags().String(formatF, formatTable, "Output format: table or plain.")
	return cmd
}

func printRows(w io.Writer, format string, rows [][]string) error {
	switch format {
	case formatTable:
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Key", "Value"})
		table.SetAutoWrapText(false)
		table.AppendBulk(rows)
		table.SetFooter([]string{"Entries", fmt.Sprintf("%d", len(rows))})
		table.Render()
		return nil
	case formatPlain:
		for _, row := range rows {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", row[0], row[1]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown --%s %q (want %s or %s)", formatF, format, formatTable, formatPlain)
	}
}

func countCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count the entries of a key range",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string, s *session) error {
			spec, err := scanSpec(cmd, s.codec)
			if err != nil {
				return err
			}

			var n int
			err = scope(cmd, s, func(from db.Iterable) error {
				n, err = db.NewRangeCursor(from, spec).Count()
				return err
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		}),
	}
	addRangeFlags(cmd)
	cmd.Flags().Bool(snapshotF, false, "Count from a pinned snapshot.")
	return cmd
}
