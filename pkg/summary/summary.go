// Package summary computes descriptive statistics over decoded packets.
package summary

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ssargent/axlframe/pkg/codec"
)

// Stats describes the sample payload of one packet.
type Stats struct {
	Count    int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	Duration time.Duration // Burst length at the packet's sampling frequency
}

// Packet computes statistics over the samples of p. Samples are interleaved
// per axis, so Count/SampleSize samples span Duration.
func Packet(p *codec.Packet) Stats {
	s := Stats{Count: p.Data.Len()}
	if s.Count == 0 {
		return s
	}

	x := p.Data.Float64s()
	s.Mean, s.StdDev = stat.MeanStdDev(x, nil)
	s.Min = floats.Min(x)
	s.Max = floats.Max(x)
	if p.Freq > 0 {
		steps := float64(s.Count) / codec.SampleSize
		s.Duration = time.Duration(steps / float64(p.Freq) * float64(time.Second))
	}
	return s
}

// Axes splits p's interleaved samples into one series per axis and returns
// the mean of each.
func Axes(p *codec.Packet) [codec.SampleSize]float64 {
	var means [codec.SampleSize]float64
	x := p.Data.Float64s()
	for axis := 0; axis < codec.SampleSize; axis++ {
		var series []float64
		for i := axis; i < len(x); i += codec.SampleSize {
			series = append(series, x[i])
		}
		if len(series) > 0 {
			means[axis] = stat.Mean(series, nil)
		}
	}
	return means
}

func (s Stats) String() string {
	if s.Count == 0 {
		return "samples: 0"
	}
	return fmt.Sprintf("samples: %d, mean: %.4f, stddev: %.4f, min: %.4f, max: %.4f, duration: %s",
		s.Count, s.Mean, s.StdDev, s.Min, s.Max, s.Duration)
}
