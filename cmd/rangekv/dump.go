package main

import (
	"fmt"
	"io"
	"os"

	"github.com/NethermindEth/rangekv/db"
	"github.com/NethermindEth/rangekv/db/dump"
	"github.com/NethermindEth/rangekv/utils"
	"github.com/spf13/cobra"
)

const batchSizeF = "batch-size"

func exportCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write a key range to FILE as a CBOR dump; - writes to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string, s *session) (err error) {
			spec, err := scanSpec(cmd, s.codec)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if args[0] != "-" {
				f, openErr := os.Create(args[0])
				if openErr != nil {
					return openErr
				}
				defer func() {
					err = utils.RunAndWrapOnError(f.Close, err)
				}()
				w = f
			}

			// exports always read a consistent view of the range
			return db.View(s.store, func(view *db.SnapshotView) error {
				c, err := view.Scan(spec)
				if err != nil {
					return err
				}
				n, err := dump.Export(w, c)
				if err != nil {
					return err
				}
				s.log.Infow("Exported entries", "entries", n, "file", args[0])
				return nil
			})
		}),
	}
	addRangeFlags(cmd)
	return cmd
}

func importCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load a CBOR dump written by export; - reads from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string, s *session) (err error) {
			batchSize, err := cmd.Flags().GetInt(batchSizeF)
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, openErr := os.Open(args[0])
				if openErr != nil {
					return openErr
				}
				defer func() {
					err = utils.RunAndWrapOnError(f.Close, err)
				}()
				r = f
			}

			n, err := dump.Import(r, s.store, batchSize)
			if err != nil {
				return fmt.Errorf("import stopped after %d entries: %w", n, err)
			}
			s.log.Infow("Imported entries", "entries", n, "file", args[0])
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", n)
			return err
		}),
	}
	cmd.Flags().Int(batchSizeF, dump.DefaultBatchSize, "Number of entries committed per batch.")
	return cmd
}
