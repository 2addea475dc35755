package codec

import (
	"github.com/cockroachdb/errors"
	"github.com/x448/float16"
)

const (
	// SampleSize is the number of axes in one IMU sample.
	SampleSize = 3

	// SampleCapacity is the maximum number of half floats a packet carries.
	SampleCapacity = SampleSize * 1024
)

// SampleBuffer is a fixed-capacity sequence of half precision samples.
// The zero value is an empty buffer ready for use.
type SampleBuffer struct {
	n    int
	vals [SampleCapacity]float16.Float16
}

// NewSampleBuffer creates a buffer holding vals. It fails with
// ErrCapacityExceeded instead of truncating.
func NewSampleBuffer(vals ...float16.Float16) (SampleBuffer, error) {
	var b SampleBuffer
	if len(vals) > SampleCapacity {
		return b, errors.Wrapf(ErrCapacityExceeded, "%d samples", len(vals))
	}
	b.n = copy(b.vals[:], vals)
	return b, nil
}

// SampleBufferFromFloat32s converts vals to half precision.
func SampleBufferFromFloat32s(vals []float32) (SampleBuffer, error) {
	var b SampleBuffer
	if len(vals) > SampleCapacity {
		return b, errors.Wrapf(ErrCapacityExceeded, "%d samples", len(vals))
	}
	for i, v := range vals {
		b.vals[i] = float16.Fromfloat32(v)
	}
	b.n = len(vals)
	return b, nil
}

// Push appends v.
func (b *SampleBuffer) Push(v float16.Float16) error {
	if b.n >= SampleCapacity {
		return ErrCapacityExceeded
	}
	b.vals[b.n] = v
	b.n++
	return nil
}

// Len returns the number of samples held.
func (b *SampleBuffer) Len() int { return b.n }

// Cap returns SampleCapacity.
func (b *SampleBuffer) Cap() int { return SampleCapacity }

// At returns the i'th sample. It panics if i is out of range, like a slice index.
func (b *SampleBuffer) At(i int) float16.Float16 {
	return b.Values()[i]
}

// Values returns a view of the held samples. The slice aliases the buffer.
func (b *SampleBuffer) Values() []float16.Float16 {
	return b.vals[:b.n]
}

// Float32s returns a copy of the samples widened to float32.
func (b *SampleBuffer) Float32s() []float32 {
	out := make([]float32, b.n)
	for i, v := range b.vals[:b.n] {
		out[i] = v.Float32()
	}
	return out
}

// Float64s returns a copy of the samples widened to float64.
func (b *SampleBuffer) Float64s() []float64 {
	out := make([]float64, b.n)
	for i, v := range b.vals[:b.n] {
		out[i] = float64(v.Float32())
	}
	return out
}

// Equal reports whether both buffers hold the same sample bits.
func (b SampleBuffer) Equal(o SampleBuffer) bool {
	if b.n != o.n {
		return false
	}
	for i := 0; i < b.n; i++ {
		if b.vals[i].Bits() != o.vals[i].Bits() {
			return false
		}
	}
	return true
}
