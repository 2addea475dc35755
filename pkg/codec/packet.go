package codec

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/x448/float16"
)

// Packet is one IMU burst sample together with the position and timing
// metadata known when it was captured.
type Packet struct {
	// Timestamp of the sample at Offset, in milliseconds.
	Timestamp int64

	// Offset into the IMU FIFO at the time of Timestamp.
	Offset uint16

	// StorageID is assigned when the packet is committed to the SD-card
	// log. It is nil before that and not necessarily unique.
	StorageID *uint32

	// PositionTime is the time of the last position fix, in seconds.
	PositionTime uint32
	Lon          float64
	Lat          float64

	// Freq is the sampling frequency of Data.
	Freq float32

	Data SampleBuffer
}

// NewPacket creates a packet without a storage id. It fails with
// ErrCapacityExceeded when samples holds more than SampleCapacity values.
func NewPacket(timestamp int64, offset uint16, positionTime uint32, lon, lat float64, freq float32, samples []float16.Float16) (*Packet, error) {
	data, err := NewSampleBuffer(samples...)
	if err != nil {
		return nil, err
	}
	return &Packet{
		Timestamp:    timestamp,
		Offset:       offset,
		PositionTime: positionTime,
		Lon:          lon,
		Lat:          lat,
		Freq:         freq,
		Data:         data,
	}, nil
}

// SetStorageID records the id assigned by storage. It can only be set once.
func (p *Packet) SetStorageID(id uint32) error {
	if p.StorageID != nil {
		return errors.Wrapf(ErrStorageIDAssigned, "packet already has storage id %d", *p.StorageID)
	}
	p.StorageID = &id
	return nil
}

// HasStorageID reports whether the packet has been committed to storage.
func (p *Packet) HasStorageID() bool {
	return p.StorageID != nil
}

// Equal reports whether p and o carry identical field values.
func (p *Packet) Equal(o *Packet) bool {
	if p == nil || o == nil {
		return p == o
	}
	if (p.StorageID == nil) != (o.StorageID == nil) {
		return false
	}
	if p.StorageID != nil && *p.StorageID != *o.StorageID {
		return false
	}
	return p.Timestamp == o.Timestamp &&
		p.Offset == o.Offset &&
		p.PositionTime == o.PositionTime &&
		p.Lon == o.Lon &&
		p.Lat == o.Lat &&
		p.Freq == o.Freq &&
		p.Data.Equal(o.Data)
}

// String prints the packet fields, with only the length of Data.
func (p *Packet) String() string {
	storageID := "None"
	if p.StorageID != nil {
		storageID = fmt.Sprintf("Some(%d)", *p.StorageID)
	}
	return fmt.Sprintf("AxlPacket(timestamp: %d, offset: %d, storage_id: %s, position_time: %d, lon: %v, lat: %v, freq: %v, data (length): %d)",
		p.Timestamp, p.Offset, storageID, p.PositionTime, p.Lon, p.Lat, p.Freq, p.Data.Len())
}
