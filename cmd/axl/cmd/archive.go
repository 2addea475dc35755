package cmd

import (
	"fmt"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/axlframe/pkg/codec"
	"github.com/ssargent/axlframe/pkg/storage"
	"github.com/ssargent/axlframe/pkg/summary"
)

func newArchiveCmd() *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect the packet archive",
	}
	archiveCmd.PersistentFlags().String("archive", "", "Archive directory (defaults to archive.dir from config)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived packets",
		Long: `List archived packets in id order, one per line.

Example:
  axl archive list --archive ./archive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(cmd, "list", func(arch *storage.Archive) error {
				out := cmd.OutOrStdout()
				n := 0
				err := arch.Scan(func(id ksuid.KSUID, p *codec.Packet) error {
					n++
					_, err := fmt.Fprintf(out, "%s %s\n", id, p)
					return err
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d packets\n", n)
				return nil
			})
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one archived packet",
		Long: `Show one archived packet with its sample statistics.

Example:
  axl archive get 2Fv8mNn6Vq1Wq0KfQ2bXz3J1f9Q`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ksuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid packet id %q: %w", args[0], err)
			}
			return withArchive(cmd, "get", func(arch *storage.Archive) error {
				p, err := arch.Get(id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, p)
				fmt.Fprintf(out, "  %s\n", summary.Packet(p))
				axes := summary.Axes(p)
				fmt.Fprintf(out, "  axes: x=%.4f y=%.4f z=%.4f\n", axes[0], axes[1], axes[2])
				return nil
			})
		},
	}

	archiveCmd.AddCommand(listCmd, getCmd)
	return archiveCmd
}

// withArchive opens the configured archive for the duration of fn and
// records the operation outcome.
func withArchive(cmd *cobra.Command, op string, fn func(*storage.Archive) error) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("archive")
	if dir == "" {
		dir = a.config.Archive.Dir
	}

	arch, err := storage.Open(dir)
	if err != nil {
		a.metrics.RecordArchiveOperation(op, false)
		return err
	}
	defer arch.Close()

	err = fn(arch)
	a.metrics.RecordArchiveOperation(op, err == nil)
	return err
}
