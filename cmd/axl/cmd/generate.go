package cmd

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
	"github.com/x448/float16"

	"github.com/ssargent/axlframe/pkg/codec"
	"github.com/ssargent/axlframe/pkg/store"
)

func newGenerateCmd() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate <file>",
		Short: "Write a synthetic packet collection",
		Long: `Write synthetic accelerometer packets to a collection file, the way the
logger commits them. Selected frames can be damaged afterwards to produce
partially corrupted collections for testing.

Example:
  axl generate 27.1 --count 20 --corrupt 3,7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			count, _ := cmd.Flags().GetInt("count")
			samples, _ := cmd.Flags().GetInt("samples")
			freq, _ := cmd.Flags().GetFloat32("freq")
			startMs, _ := cmd.Flags().GetInt64("start")
			corrupt, _ := cmd.Flags().GetIntSlice("corrupt")

			if samples > codec.SampleCapacity {
				return fmt.Errorf("--samples %d exceeds capacity %d", samples, codec.SampleCapacity)
			}
			if freq <= 0 {
				return fmt.Errorf("--freq must be positive")
			}

			frameSize := a.config.Decode.FrameSize
			writer, err := store.NewFrameWriter(store.FrameWriterConfig{
				FilePath:  args[0],
				FrameSize: frameSize,
			})
			if err != nil {
				return err
			}

			burst := time.Duration(float64(samples/codec.SampleSize) / float64(freq) * float64(time.Second))
			for i := 0; i < count; i++ {
				ts := startMs + int64(i)*burst.Milliseconds()
				p, err := codec.NewPacket(ts, uint16(i%512), uint32(ts/1000), 5.3221, 59.9871, freq, synthSamples(i, samples, freq))
				if err != nil {
					_ = writer.Close()
					return err
				}
				if _, _, err := writer.Append(p); err != nil {
					_ = writer.Close()
					return err
				}
			}
			if err := writer.Close(); err != nil {
				return err
			}

			for _, idx := range corrupt {
				if err := store.CorruptFrame(args[0], frameSize, idx, 64, 0xFF); err != nil {
					return err
				}
				a.logger.Debugf("corrupted frame %d", idx)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d packets to %s (%d corrupted)\n", count, args[0], len(corrupt))
			return nil
		},
	}

	generateCmd.Flags().Int("count", 10, "Number of packets to write")
	generateCmd.Flags().Int("samples", 3*256, "Samples per packet (interleaved x,y,z)")
	generateCmd.Flags().Float32("freq", 52, "Sampling frequency in Hz")
	generateCmd.Flags().Int64("start", 1_700_000_000_000, "Timestamp of the first packet in ms")
	generateCmd.Flags().IntSlice("corrupt", nil, "Frame indexes to damage after writing")
	return generateCmd
}

// synthSamples produces a small three axis oscillation around 1 g on z.
func synthSamples(packet, n int, freq float32) []float16.Float16 {
	out := make([]float16.Float16, n)
	for i := 0; i < n; i++ {
		step := float64(packet*n/codec.SampleSize + i/codec.SampleSize)
		t := step / float64(freq)
		var v float64
		switch i % codec.SampleSize {
		case 0:
			v = 0.05 * math.Sin(2*math.Pi*0.5*t)
		case 1:
			v = 0.05 * math.Cos(2*math.Pi*0.5*t)
		default:
			v = 1 + 0.02*math.Sin(2*math.Pi*1.5*t)
		}
		out[i] = float16.Fromfloat32(float32(v))
	}
	return out
}
