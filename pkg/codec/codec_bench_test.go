//go:build bench
// +build bench

package codec

import (
	"fmt"
	"testing"

	"github.com/x448/float16"
)

func benchPacket(n int) *Packet {
	samples := make([]float16.Float16, n)
	for i := range samples {
		samples[i] = float16.Fromfloat32(float32(i%200) / 100)
	}
	p, err := NewPacket(1_700_000_000_000, 12, 1_700_000_000, 5.32, 59.98, 52, samples)
	if err != nil {
		panic(err)
	}
	return p
}

func BenchmarkPacketCodec_Encode(b *testing.B) {
	codec := NewPacketCodec()

	benchmarks := []struct {
		name    string
		samples int
	}{
		{"empty", 0},
		{"quarter", SampleCapacity / 4},
		{"full", SampleCapacity},
	}

	for _, bm := range benchmarks {
		p := benchPacket(bm.samples)
		b.Run(bm.name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := codec.EncodeFrame(p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkPacketCodec_Decode(b *testing.B) {
	codec := NewPacketCodec()

	for _, n := range []int{0, SampleCapacity / 4, SampleCapacity} {
		frame, err := codec.EncodeFrame(benchPacket(n))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("samples=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(frame)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := codec.Decode(frame); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
