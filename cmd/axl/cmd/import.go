package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/axlframe/pkg/storage"
)

func newImportCmd() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Decode collections into the packet archive",
		Long: `Decode one or more collection files and store every recovered packet in
the local archive. Each packet is assigned a time ordered id.

Example:
  axl import 98.1 99.1 --archive ./archive`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("archive")
			if dir == "" {
				dir = a.config.Archive.Dir
			}

			arch, err := storage.Open(dir)
			a.metrics.RecordArchiveOperation("open", err == nil)
			if err != nil {
				return err
			}
			defer arch.Close()

			builder := a.builder()
			out := cmd.OutOrStdout()
			for _, path := range args {
				c, err := builder.FromFile(path)
				a.metrics.RecordCollection(err == nil)
				if err != nil {
					return err
				}

				ids, err := arch.PutBatch(c.Packets)
				a.metrics.RecordArchiveOperation("put", err == nil)
				if err != nil {
					return fmt.Errorf("archive %s: %w", path, err)
				}
				fmt.Fprintf(out, "%s: imported %d packets (%d dropped)\n", path, len(ids), c.Report.Failed())
				for _, id := range ids {
					a.logger.Debugf("%s: archived %s", path, id)
				}
			}
			return nil
		},
	}

	importCmd.Flags().String("archive", "", "Archive directory (defaults to archive.dir from config)")
	return importCmd
}
