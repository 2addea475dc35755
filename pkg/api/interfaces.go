package api

import (
	"github.com/segmentio/ksuid"

	"github.com/ssargent/axlframe/pkg/codec"
)

// PacketArchive defines the archive operations the API serves
type PacketArchive interface {
	PutBatch(packets []*codec.Packet) ([]ksuid.KSUID, error)
	Get(id ksuid.KSUID) (*codec.Packet, error)
	Delete(id ksuid.KSUID) error
	Scan(fn func(id ksuid.KSUID, p *codec.Packet) error) error
	Count() (int, error)
}

// ArchiveRecorder receives collection and archive operation outcomes
type ArchiveRecorder interface {
	RecordCollection(success bool)
	RecordArchiveOperation(operation string, success bool)
}
