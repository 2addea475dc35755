// Package codec provides packet serialization and deserialization for the
// accelerometer logger.
//
// The codec package implements the binary format used for IMU burst samples
// ("packets"). Each packet is serialized into a compact byte stream and then
// byte-stuffed so that the encoded frame contains no zero byte except its
// terminator. The logger writes every frame into a fixed 8192 byte slot.
//
// # Packet Format
//
// Fields are serialized in declaration order:
//
//	[Timestamp][Offset][StorageID][PositionTime][Lon(8)][Lat(8)][Freq(4)][DataLen][Data...]
//
// Fields:
//   - Timestamp: int64 milliseconds, zigzag encoded varint
//   - Offset: uint16 IMU FIFO offset, varint (at most 3 bytes)
//   - StorageID: option tag 0x00 (absent) or 0x01 followed by a uint32 varint
//   - PositionTime: uint32 seconds, varint (at most 5 bytes)
//   - Lon, Lat: IEEE-754 float64, little-endian
//   - Freq: IEEE-754 float32, little-endian
//   - DataLen: varint sample count, at most SampleCapacity (3072)
//   - Data: each half precision sample as its 16 raw bits, varint encoded
//
// Varints are unsigned LEB128. This matches the postcard encoding used by the
// logger firmware, so files copied from a logger decode directly.
//
// # Framing
//
// The serialized packet is framed with consistent overhead byte stuffing
// (COBS). A code byte n (1..255) is followed by n-1 non-zero bytes; unless
// n is 0xFF an implicit zero follows the run. A single 0x00 terminates the
// frame. Anything after the terminator in the slot is ignored, so slots are
// simply zero padded.
//
// # Usage
//
//	c := codec.NewPacketCodec()
//
//	p, err := codec.NewPacket(ts, offset, posTime, lon, lat, freq, samples)
//	if err != nil {
//	    return err // more than SampleCapacity samples
//	}
//
//	slot, err := c.EncodeFrame(p) // exactly FrameSize bytes
//	if err != nil {
//	    return err
//	}
//
//	decoded, err := c.Decode(slot)
//
// # Error Handling
//
// Decode never panics. Malformed input is reported through errors wrapping
// one of ErrInvalidFraming, ErrTruncated, ErrTrailingBytes, ErrBadVarint,
// ErrBadOptionTag or ErrCapacityExceeded. Encoding more than SampleCapacity
// samples fails with ErrCapacityExceeded; samples are never truncated.
//
// # Thread Safety
//
// PacketCodec instances hold no mutable state and are safe for concurrent use.
package codec
