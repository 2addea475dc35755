package collection

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ssargent/axlframe/pkg/codec"
)

// Builder splits raw buffers into frame slots and decodes each slot on its
// own. A damaged slot is logged and dropped; it never shifts the boundaries
// of the slots after it.
type Builder struct {
	config Config
	codec  *codec.PacketCodec
}

// NewBuilder creates a builder with the given configuration
func NewBuilder(config Config) *Builder {
	config = config.withDefaults()
	return &Builder{
		config: config,
		codec:  codec.NewPacketCodecWithFrameSize(config.FrameSize),
	}
}

// FrameSize returns the slot size the builder splits on.
func (b *Builder) FrameSize() int {
	return b.config.FrameSize
}

// SplitFrames cuts buf into len(buf)/frameSize contiguous slots. The trailing
// remainder shorter than a slot is returned as a count and otherwise ignored.
// The slots alias buf.
func SplitFrames(buf []byte, frameSize int) ([][]byte, int) {
	if frameSize <= 0 {
		return nil, len(buf)
	}
	n := len(buf) / frameSize
	frames := make([][]byte, n)
	for i := range frames {
		frames[i] = buf[i*frameSize : (i+1)*frameSize : (i+1)*frameSize]
	}
	return frames, len(buf) - n*frameSize
}

// DecodeFrames decodes every whole slot in buf and returns one result per
// slot, in slot order.
func (b *Builder) DecodeFrames(buf []byte) []FrameResult {
	frames, _ := SplitFrames(buf, b.config.FrameSize)
	results := make([]FrameResult, len(frames))

	decode := func(i int) {
		p, err := b.codec.Decode(frames[i])
		results[i] = FrameResult{
			Index:  i,
			Offset: int64(i) * int64(b.config.FrameSize),
			Packet: p,
			Err:    err,
		}
	}

	if b.config.Workers <= 1 || len(frames) < 2 {
		for i := range frames {
			decode(i)
		}
		return results
	}

	// Each goroutine owns results[i]; no locking needed.
	var g errgroup.Group
	g.SetLimit(b.config.Workers)
	for i := range frames {
		i := i
		g.Go(func() error {
			decode(i)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// FromBytes decodes an in-memory buffer. It never fails: damaged slots are
// reported in the collection's Report and logged.
func (b *Builder) FromBytes(buf []byte) *Collection {
	return b.build("", buf)
}

// FromFile reads the whole file at path and decodes it. Only failure to read
// the file is returned as an error.
func (b *Builder) FromFile(path string) (*Collection, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read collection %s", path), ErrSourceUnavailable)
	}
	return b.build(path, buf), nil
}

func (b *Builder) build(source string, buf []byte) *Collection {
	logf := b.config.Logf
	name := source
	if name == "" {
		name = "buffer"
	}

	frameSize := b.config.FrameSize
	remainder := len(buf) % frameSize
	if remainder != 0 {
		logf("warning: %s: collection consists of non-integer number of packets (%d trailing bytes ignored)", name, remainder)
	}
	n := len(buf) / frameSize
	logf("%s: parsing %d bytes of packets into %d packets..", name, len(buf), n)

	results := b.DecodeFrames(buf)

	c := &Collection{
		Source:  source,
		Packets: make([]*codec.Packet, 0, len(results)),
		Report: Report{
			Bytes:          len(buf),
			Frames:         n,
			RemainderBytes: remainder,
		},
	}
	for _, r := range results {
		if b.config.Observer != nil {
			b.config.Observer.ObserveFrame(r)
		}
		if !r.OK() {
			logf("%s: failed to parse packet %d at offset %d: %v", name, r.Index, r.Offset, r.Err)
			c.Report.Failures = append(c.Report.Failures, FrameFailure{Index: r.Index, Offset: r.Offset, Err: r.Err})
			continue
		}
		c.Packets = append(c.Packets, r.Packet)
	}
	c.Report.Decoded = len(c.Packets)

	if b.config.Observer != nil && remainder != 0 {
		b.config.Observer.ObserveRemainder(remainder)
	}
	if c.Report.Lost() {
		logf("%s: dropped %d of %d packets", name, c.Report.Failed(), n)
	}
	return c
}

var defaultBuilder = NewBuilder(Config{})

// FromFile decodes the file at path with the default configuration.
func FromFile(path string) (*Collection, error) {
	return defaultBuilder.FromFile(path)
}

// FromBytes decodes buf with the default configuration.
func FromBytes(buf []byte) *Collection {
	return defaultBuilder.FromBytes(buf)
}
