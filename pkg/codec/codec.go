package codec

import "github.com/cockroachdb/errors"

// FrameSize is the size of one on-disk frame slot. It is an upper bound on an
// encoded packet, with margin since encoded packets are not fixed size.
const FrameSize = 8 * 1024

// PacketCodec encodes packets into self-delimiting frames and back.
type PacketCodec struct {
	frameSize int
}

// NewPacketCodec creates a codec using FrameSize.
func NewPacketCodec() *PacketCodec {
	return &PacketCodec{frameSize: FrameSize}
}

// NewPacketCodecWithFrameSize creates a codec with a custom frame slot size.
func NewPacketCodecWithFrameSize(frameSize int) *PacketCodec {
	if frameSize <= 0 {
		frameSize = FrameSize
	}
	return &PacketCodec{frameSize: frameSize}
}

// FrameSize returns the slot size the codec encodes for.
func (c *PacketCodec) FrameSize() int {
	return c.frameSize
}

// Encode serializes p and byte-stuffs the result. The returned frame ends in
// its zero terminator and is at most FrameSize bytes long, but usually shorter.
func (c *PacketCodec) Encode(p *Packet) ([]byte, error) {
	if p.Data.Len() > SampleCapacity {
		return nil, errors.Wrapf(ErrCapacityExceeded, "%d samples", p.Data.Len())
	}

	payload := marshalPacket(make([]byte, 0, maxPayloadSize), p)
	frame := stuff(payload)
	if len(frame) > c.frameSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "%d > %d bytes", len(frame), c.frameSize)
	}
	return frame, nil
}

// EncodeFrame encodes p and zero pads it to exactly FrameSize bytes, the
// layout written to storage.
func (c *PacketCodec) EncodeFrame(p *Packet) ([]byte, error) {
	frame, err := c.Encode(p)
	if err != nil {
		return nil, err
	}
	slot := make([]byte, c.frameSize)
	copy(slot, frame)
	return slot, nil
}

// Decode parses one frame. Bytes after the frame terminator are ignored, so a
// whole zero padded slot may be passed in.
func (c *PacketCodec) Decode(frame []byte) (*Packet, error) {
	payload, err := unstuff(frame)
	if err != nil {
		return nil, err
	}
	return unmarshalPacket(payload)
}
