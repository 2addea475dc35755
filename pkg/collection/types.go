package collection

import (
	"log"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/axlframe/pkg/codec"
)

// ErrSourceUnavailable marks a collection source that could not be read. It
// aborts the whole collection, unlike frame decode failures.
var ErrSourceUnavailable = errors.New("collection source unavailable")

// Config holds configuration for a collection builder
type Config struct {
	FrameSize int                           // Slot size in bytes (0 = codec.FrameSize)
	Workers   int                           // Concurrent frame decoders (<= 1 = sequential)
	Logf      func(format string, v ...any) // Diagnostic logger (nil = log.Printf)
	Observer  Observer                      // Optional per-frame observer
}

func (c Config) withDefaults() Config {
	if c.FrameSize <= 0 {
		c.FrameSize = codec.FrameSize
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Logf == nil {
		c.Logf = log.Printf
	}
	return c
}

// Observer is notified about every frame decoded by a builder.
type Observer interface {
	ObserveFrame(r FrameResult)
	ObserveRemainder(bytes int)
}

// FrameResult is the outcome of decoding one frame slot: either Packet or Err
// is set.
type FrameResult struct {
	Index  int   // Position of the frame in the source
	Offset int64 // Byte offset of the frame in the source
	Packet *codec.Packet
	Err    error
}

// OK reports whether the frame decoded.
func (r FrameResult) OK() bool {
	return r.Err == nil
}

// FrameFailure identifies a dropped frame.
type FrameFailure struct {
	Index  int
	Offset int64
	Err    error
}

// Report summarizes one decode pass.
type Report struct {
	Bytes          int // Size of the source buffer
	Frames         int // Number of whole frame slots
	Decoded        int // Frames that produced a packet
	RemainderBytes int // Bytes after the last whole slot, ignored
	Failures       []FrameFailure
}

// Failed returns the number of dropped frames.
func (r Report) Failed() int {
	return len(r.Failures)
}

// Lost reports whether any frame was dropped.
func (r Report) Lost() bool {
	return len(r.Failures) > 0
}

// Collection is the ordered set of packets recovered from one source.
type Collection struct {
	Source  string
	Packets []*codec.Packet
	Report  Report
}

// Len returns the number of packets.
func (c *Collection) Len() int {
	return len(c.Packets)
}
