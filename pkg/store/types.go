package store

import (
	"time"

	"github.com/ssargent/axlframe/pkg/codec"
	"github.com/ssargent/axlframe/pkg/collection"
)

// FrameWriterConfig holds configuration for the frame writer
type FrameWriterConfig struct {
	FilePath      string        // Path to the collection file
	FrameSize     int           // Slot size in bytes (0 = codec.FrameSize)
	FsyncInterval time.Duration // How often to fsync (0 = every frame)
	BufferSize    int           // Write buffer size
}

func (c FrameWriterConfig) withDefaults() FrameWriterConfig {
	if c.FrameSize <= 0 {
		c.FrameSize = codec.FrameSize
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 4 * c.FrameSize
	}
	return c
}

// FrameReaderConfig holds configuration for the frame reader
type FrameReaderConfig struct {
	FilePath   string // Path to the collection file
	FrameSize  int    // Slot size in bytes (0 = codec.FrameSize)
	StartFrame int    // Frame index to start reading from
	BufferSize int    // Read buffer size
}

func (c FrameReaderConfig) withDefaults() FrameReaderConfig {
	if c.FrameSize <= 0 {
		c.FrameSize = codec.FrameSize
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 4 * c.FrameSize
	}
	return c
}

// FrameIterator provides streaming access to decoded frames
type FrameIterator interface {
	Next() bool
	Frame() collection.FrameResult
	Err() error
	Close() error
}
