package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/axlframe/pkg/codec"
	"github.com/ssargent/axlframe/pkg/collection"
	"github.com/ssargent/axlframe/pkg/store"
	"github.com/ssargent/axlframe/pkg/summary"
)

func newDecodeCmd() *cobra.Command {
	decodeCmd := &cobra.Command{
		Use:   "decode <file>...",
		Short: "Decode packet collection files",
		Long: `Decode one or more collection files and print every recovered packet.

Frames that fail to decode are logged with their index and byte offset and
left out of the output. A file that cannot be read aborts the command.

Example:
  axl decode 98.1 27.1 --stats`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			showStats, _ := cmd.Flags().GetBool("stats")
			quiet, _ := cmd.Flags().GetBool("quiet")
			strict, _ := cmd.Flags().GetBool("strict")
			stream, _ := cmd.Flags().GetBool("stream")

			out := cmd.OutOrStdout()
			emit := func(p *codec.Packet) {
				if quiet {
					return
				}
				fmt.Fprintln(out, p)
				if showStats {
					fmt.Fprintf(out, "  %s\n", summary.Packet(p))
				}
			}

			builder := a.builder()
			lost := 0
			for _, path := range args {
				var report collection.Report
				if stream {
					report, err = streamFile(a, path, emit)
				} else {
					var c *collection.Collection
					c, err = builder.FromFile(path)
					if err == nil {
						for _, p := range c.Packets {
							emit(p)
						}
						report = c.Report
					}
				}
				a.metrics.RecordCollection(err == nil)
				if err != nil {
					return err
				}

				printReport(out, path, report)
				lost += report.Failed()
			}

			if strict && lost > 0 {
				return fmt.Errorf("%d frames could not be decoded", lost)
			}
			return nil
		},
	}

	decodeCmd.Flags().Bool("stats", false, "Print sample statistics for each packet")
	decodeCmd.Flags().BoolP("quiet", "q", false, "Only print the per-file report")
	decodeCmd.Flags().Bool("strict", false, "Exit with an error if any frame was dropped")
	decodeCmd.Flags().Bool("stream", false, "Read one frame at a time instead of loading whole files")
	return decodeCmd
}

// streamFile decodes path frame by frame, passing packets to emit as they are
// read.
func streamFile(a *app, path string, emit func(*codec.Packet)) (collection.Report, error) {
	var report collection.Report

	reader, err := store.NewFrameReader(store.FrameReaderConfig{
		FilePath:  path,
		FrameSize: a.config.Decode.FrameSize,
	})
	if err != nil {
		return report, err
	}
	defer reader.Close()

	it := reader.Iterator()
	defer it.Close()
	for it.Next() {
		res := it.Frame()
		a.metrics.ObserveFrame(res)
		report.Frames++
		if !res.OK() {
			a.logger.Infof("%s: failed to parse packet %d at offset %d: %v", path, res.Index, res.Offset, res.Err)
			report.Failures = append(report.Failures, collection.FrameFailure{Index: res.Index, Offset: res.Offset, Err: res.Err})
			continue
		}
		report.Decoded++
		emit(res.Packet)
	}
	if err := it.Err(); err != nil {
		return report, err
	}

	report.RemainderBytes = reader.Remainder()
	report.Bytes = int(reader.Offset())
	if report.RemainderBytes != 0 {
		a.metrics.ObserveRemainder(report.RemainderBytes)
		a.logger.Warnf("%s: collection consists of non-integer number of packets (%d trailing bytes ignored)", path, report.RemainderBytes)
	}
	return report, nil
}

func printReport(w io.Writer, path string, r collection.Report) {
	fmt.Fprintf(w, "%s: %d packets from %d frames (%d dropped, %d trailing bytes)\n",
		path, r.Decoded, r.Frames, r.Failed(), r.RemainderBytes)
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  frame %d at offset %d: %v\n", f.Index, f.Offset, f.Err)
	}
}
