package main

import (
	"fmt"

	"github.com/NethermindEth/rangekv/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const waitF = "wait"

func flushCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Flush the memtable to disk",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string, s *session) error {
			wait, err := cmd.Flags().GetBool(waitF)
			if err != nil {
				return err
			}
			return s.store.Flush(wait)
		}),
	}
	cmd.Flags().Bool(waitF, true, "Block until the flush has completed.")
	return cmd
}

func compactCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Compact a key range, or the whole key space when no range is given",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string, s *session) error {
			var bounds [2][]byte
			for i, flag := range []string{fromF, toF} {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				raw, err := cmd.Flags().GetString(flag)
				if err != nil {
					return err
				}
				if bounds[i], err = s.codec.decode(raw); err != nil {
					return err
				}
			}

			s.log.Infow("Compacting", "from", s.codec.encode(bounds[0]), "to", s.codec.encode(bounds[1]))
			if err := s.store.Compact(bounds[0], bounds[1]); err != nil {
				return err
			}
			s.log.Infow("Compaction done")
			return nil
		}),
	}
	cmd.Flags().String(fromF, "", "Start of the range (inclusive). Requires --to.")
	cmd.Flags().String(toF, "", "End of the range (exclusive). Requires --from.")
	return cmd
}

func statsCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print LSM level statistics",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, _ []string, s *session) error {
			stats := s.store.Metrics()

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Level", "Files", "Size", "Score", "Bytes In", "Bytes Read", "Compacted", "Flushed"})
			var files int64
			var size int64
			for _, lvl := range stats.Levels {
				files += lvl.NumFiles
				size += lvl.Size
				table.Append([]string{
					fmt.Sprintf("L%d", lvl.Level),
					fmt.Sprintf("%d", lvl.NumFiles),
					utils.DataSize(lvl.Size).String(),
					fmt.Sprintf("%.2f", lvl.Score),
					utils.DataSize(lvl.BytesIn).String(),
					utils.DataSize(lvl.BytesRead).String(),
					utils.DataSize(lvl.BytesCompacted).String(),
					utils.DataSize(lvl.BytesFlushed).String(),
				})
			}
			table.SetFooter([]string{"Total", fmt.Sprintf("%d", files), utils.DataSize(size).String(), "", "", "", "", ""})
			table.Render()

			summary := tablewriter.NewWriter(cmd.OutOrStdout())
			summary.SetHeader([]string{"Metric", "Value"})
			summary.AppendBulk([][]string{
				{"Memtable size", utils.DataSize(stats.MemtableSize).String()},
				{"Memtables", fmt.Sprintf("%d", stats.MemtableCount)},
				{"Flushes", fmt.Sprintf("%d", stats.FlushCount)},
				{"Compactions", fmt.Sprintf("%d", stats.CompactionCount)},
				{"Compaction debt", utils.DataSize(stats.EstimatedDebt).String()},
				{"Disk usage", utils.DataSize(stats.DiskSpaceUsage).String()},
				{"Open table iterators", fmt.Sprintf("%d", stats.ActiveIterators)},
				{"Open snapshots", fmt.Sprintf("%d", stats.ActiveSnapshots)},
			})
			summary.Render()
			return nil
		}),
	}
}
