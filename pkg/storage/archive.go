package storage

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/axlframe/pkg/codec"
)

// ErrNotFound is returned when no packet is archived under an id.
var ErrNotFound = errors.New("packet not found")

var packetPrefix = []byte("pkt/")

// Archive stores decoded packets in an embedded pebble database, keyed by
// time ordered KSUIDs. Values are the packet's COBS frame.
type Archive struct {
	db    *pebble.DB
	codec *codec.PacketCodec
}

// Open opens or creates an archive in dir.
func Open(dir string) (*Archive, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open archive %s", dir)
	}
	return &Archive{db: db, codec: codec.NewPacketCodec()}, nil
}

func packetKey(id ksuid.KSUID) []byte {
	return append(append([]byte{}, packetPrefix...), id.Bytes()...)
}

// Put archives p under a new id.
func (a *Archive) Put(p *codec.Packet) (ksuid.KSUID, error) {
	frame, err := a.codec.Encode(p)
	if err != nil {
		return ksuid.Nil, err
	}
	id := ksuid.New()
	if err := a.db.Set(packetKey(id), frame, pebble.Sync); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

// PutBatch archives packets atomically and returns their ids in order.
func (a *Archive) PutBatch(packets []*codec.Packet) ([]ksuid.KSUID, error) {
	batch := a.db.NewBatch()
	defer batch.Close()

	ids := make([]ksuid.KSUID, len(packets))
	for i, p := range packets {
		frame, err := a.codec.Encode(p)
		if err != nil {
			return nil, errors.Wrapf(err, "packet %d", i)
		}
		// ksuid.New is only second resolution; Next keeps batch order in key order.
		if i == 0 {
			ids[i] = ksuid.New()
		} else {
			ids[i] = ids[i-1].Next()
		}
		if err := batch.Set(packetKey(ids[i]), frame, nil); err != nil {
			return nil, err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, err
	}
	return ids, nil
}

// Get returns the packet archived under id.
func (a *Archive) Get(id ksuid.KSUID) (*codec.Packet, error) {
	data, closer, err := a.db.Get(packetKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "id %s", id)
		}
		return nil, err
	}
	defer closer.Close()

	return a.codec.Decode(data)
}

// Delete removes the packet archived under id.
func (a *Archive) Delete(id ksuid.KSUID) error {
	return a.db.Delete(packetKey(id), pebble.Sync)
}

// Scan calls fn for every archived packet in id order. Returning an error
// from fn stops the scan and returns that error.
func (a *Archive) Scan(fn func(id ksuid.KSUID, p *codec.Packet) error) error {
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: packetPrefix,
		UpperBound: []byte("pkt0"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(packetPrefix):])
		if err != nil {
			return errors.Wrapf(err, "archive key %x", iter.Key())
		}
		p, err := a.codec.Decode(iter.Value())
		if err != nil {
			return errors.Wrapf(err, "archived packet %s", id)
		}
		if err := fn(id, p); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Count returns the number of archived packets.
func (a *Archive) Count() (int, error) {
	n := 0
	err := a.Scan(func(ksuid.KSUID, *codec.Packet) error {
		n++
		return nil
	})
	return n, err
}

// Close closes the archive.
func (a *Archive) Close() error {
	return a.db.Close()
}
