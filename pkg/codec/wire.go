package codec

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/x448/float16"
)

// Maximum encoded varint lengths per integer width.
const (
	maxVarintLen16 = 3
	maxVarintLen32 = 5
	maxVarintLen64 = 10
)

// maxPayloadSize bounds the serialized size of a packet with a full buffer.
const maxPayloadSize = maxVarintLen64 + maxVarintLen16 + 1 + maxVarintLen32 +
	maxVarintLen32 + 8 + 8 + 4 + maxVarintLen32 + SampleCapacity*maxVarintLen16

// marshalPacket appends the serialized form of p to dst.
// Fields are written in declaration order.
func marshalPacket(dst []byte, p *Packet) []byte {
	dst = appendVarint(dst, zigzag(p.Timestamp))
	dst = appendVarint(dst, uint64(p.Offset))
	if p.StorageID == nil {
		dst = append(dst, 0x00)
	} else {
		dst = append(dst, 0x01)
		dst = appendVarint(dst, uint64(*p.StorageID))
	}
	dst = appendVarint(dst, uint64(p.PositionTime))
	dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(p.Lon))
	dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(p.Lat))
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(p.Freq))
	dst = appendVarint(dst, uint64(p.Data.Len()))
	for _, v := range p.Data.Values() {
		dst = appendVarint(dst, uint64(v.Bits()))
	}
	return dst
}

// unmarshalPacket parses exactly one packet from data.
func unmarshalPacket(data []byte) (*Packet, error) {
	d := &wireDecoder{buf: data}
	p := &Packet{}

	ts, err := d.readVarint(maxVarintLen64, "timestamp")
	if err != nil {
		return nil, err
	}
	p.Timestamp = unzigzag(ts)

	off, err := d.readUint(maxVarintLen16, math.MaxUint16, "offset")
	if err != nil {
		return nil, err
	}
	p.Offset = uint16(off)

	tag, err := d.readByte("storage_id")
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0x00:
	case 0x01:
		id, err := d.readUint(maxVarintLen32, math.MaxUint32, "storage_id")
		if err != nil {
			return nil, err
		}
		sid := uint32(id)
		p.StorageID = &sid
	default:
		return nil, errors.Wrapf(ErrBadOptionTag, "storage_id tag 0x%02x at byte %d", tag, d.pos-1)
	}

	pt, err := d.readUint(maxVarintLen32, math.MaxUint32, "position_time")
	if err != nil {
		return nil, err
	}
	p.PositionTime = uint32(pt)

	lon, err := d.readFixed(8, "lon")
	if err != nil {
		return nil, err
	}
	p.Lon = math.Float64frombits(binary.LittleEndian.Uint64(lon))

	lat, err := d.readFixed(8, "lat")
	if err != nil {
		return nil, err
	}
	p.Lat = math.Float64frombits(binary.LittleEndian.Uint64(lat))

	freq, err := d.readFixed(4, "freq")
	if err != nil {
		return nil, err
	}
	p.Freq = math.Float32frombits(binary.LittleEndian.Uint32(freq))

	n, err := d.readUint(maxVarintLen32, math.MaxUint32, "data length")
	if err != nil {
		return nil, err
	}
	if n > SampleCapacity {
		return nil, errors.Wrapf(ErrCapacityExceeded, "data length prefix %d", n)
	}
	for i := uint64(0); i < n; i++ {
		bits, err := d.readUint(maxVarintLen16, math.MaxUint16, "data")
		if err != nil {
			return nil, err
		}
		p.Data.vals[i] = float16.Frombits(uint16(bits))
	}
	p.Data.n = int(n)

	if d.pos != len(d.buf) {
		return nil, errors.Wrapf(ErrTrailingBytes, "%d bytes after packet", len(d.buf)-d.pos)
	}
	return p, nil
}

type wireDecoder struct {
	buf []byte
	pos int
}

func (d *wireDecoder) readByte(field string) (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, errors.Wrapf(ErrTruncated, "reading %s at byte %d", field, d.pos)
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *wireDecoder) readFixed(n int, field string) ([]byte, error) {
	if len(d.buf)-d.pos < n {
		return nil, errors.Wrapf(ErrTruncated, "reading %s at byte %d", field, d.pos)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// readVarint reads an unsigned LEB128 value of at most maxLen bytes.
func (d *wireDecoder) readVarint(maxLen int, field string) (uint64, error) {
	var v uint64
	for i := 0; i < maxLen; i++ {
		b, err := d.readByte(field)
		if err != nil {
			return 0, err
		}
		if i == maxVarintLen64-1 && b > 1 {
			return 0, errors.Wrapf(ErrBadVarint, "%s overflows 64 bits", field)
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, errors.Wrapf(ErrBadVarint, "%s longer than %d bytes", field, maxLen)
}

func (d *wireDecoder) readUint(maxLen int, limit uint64, field string) (uint64, error) {
	v, err := d.readVarint(maxLen, field)
	if err != nil {
		return 0, err
	}
	if v > limit {
		return 0, errors.Wrapf(ErrBadVarint, "%s value %d overflows field", field, v)
	}
	return v, nil
}

func appendVarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

func zigzag(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
