package codec

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestSampleBuffer_Push(t *testing.T) {
	var b SampleBuffer
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, SampleCapacity, b.Cap())

	for i := 0; i < SampleCapacity; i++ {
		require.NoError(t, b.Push(float16.Fromfloat32(float32(i%10))))
	}
	assert.Equal(t, SampleCapacity, b.Len())

	err := b.Push(float16.Fromfloat32(1))
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.Equal(t, SampleCapacity, b.Len(), "failed push must not change length")
}

func TestSampleBuffer_FromFloat32s(t *testing.T) {
	b, err := SampleBufferFromFloat32s([]float32{0.5, -2, 4})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -2, 4}, b.Float32s())
	assert.Equal(t, []float64{0.5, -2, 4}, b.Float64s())
	assert.Equal(t, float32(-2), b.At(1).Float32())

	_, err = SampleBufferFromFloat32s(make([]float32, SampleCapacity+1))
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
}

func TestSampleBuffer_Equal(t *testing.T) {
	a, err := NewSampleBuffer(halfs(1, 2, 3)...)
	require.NoError(t, err)
	b, err := NewSampleBuffer(halfs(1, 2, 3)...)
	require.NoError(t, err)
	c, err := NewSampleBuffer(halfs(1, 2)...)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))

	require.NoError(t, c.Push(float16.Fromfloat32(4)))
	assert.False(t, a.Equal(c))
}

func TestSampleBuffer_ValuesAliases(t *testing.T) {
	b, err := NewSampleBuffer(halfs(1, 2)...)
	require.NoError(t, err)
	vals := b.Values()
	require.Len(t, vals, 2)
	vals[0] = float16.Fromfloat32(9)
	assert.Equal(t, float32(9), b.At(0).Float32())
}
