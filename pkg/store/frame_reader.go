package store

import (
	"bufio"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/axlframe/pkg/codec"
	"github.com/ssargent/axlframe/pkg/collection"
)

// FrameReader provides sequential access to the frames of a collection file
// without loading the whole file into memory.
type FrameReader struct {
	file      *os.File
	reader    *bufio.Reader
	codec     *codec.PacketCodec
	config    FrameReaderConfig
	index     int   // Index of the next frame
	offset    int64 // Current read offset
	remainder int   // Bytes of a partial trailing slot, known at EOF
}

// NewFrameReader opens the collection file and positions the reader at
// config.StartFrame.
func NewFrameReader(config FrameReaderConfig) (*FrameReader, error) {
	config = config.withDefaults()

	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read collection %s", config.FilePath), collection.ErrSourceUnavailable)
	}

	r := &FrameReader{
		file:   file,
		codec:  codec.NewPacketCodecWithFrameSize(config.FrameSize),
		config: config,
	}
	if err := r.Seek(config.StartFrame); err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

// ReadNext reads and decodes the next frame slot. A slot that fails to decode
// is returned as a result carrying Err, not as an error; the error return is
// io.EOF at the end of the file or an I/O failure. A partial trailing slot
// ends the file and is counted by Remainder.
func (r *FrameReader) ReadNext() (collection.FrameResult, error) {
	slot := make([]byte, r.config.FrameSize)
	n, err := io.ReadFull(r.reader, slot)
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			r.remainder = n
			r.offset += int64(n)
			return collection.FrameResult{}, io.EOF
		}
		return collection.FrameResult{}, err
	}

	res := collection.FrameResult{Index: r.index, Offset: r.offset}
	res.Packet, res.Err = r.codec.Decode(slot)
	r.index++
	r.offset += int64(n)
	return res, nil
}

// ReadAt decodes the frame at index without moving the sequential position.
func (r *FrameReader) ReadAt(index int) (collection.FrameResult, error) {
	if index < 0 {
		return collection.FrameResult{}, errors.Newf("invalid frame index %d", index)
	}
	off := int64(index) * int64(r.config.FrameSize)
	slot := make([]byte, r.config.FrameSize)
	if _, err := r.file.ReadAt(slot, off); err != nil {
		if err == io.EOF {
			return collection.FrameResult{}, errors.Wrapf(io.ErrUnexpectedEOF, "frame %d", index)
		}
		return collection.FrameResult{}, err
	}

	res := collection.FrameResult{Index: index, Offset: off}
	res.Packet, res.Err = r.codec.Decode(slot)
	return res, nil
}

// Seek positions the reader at the start of frame index.
func (r *FrameReader) Seek(index int) error {
	if index < 0 {
		return errors.Newf("invalid frame index %d", index)
	}
	off := int64(index) * int64(r.config.FrameSize)
	if _, err := r.file.Seek(off, io.SeekStart); err != nil {
		return err
	}

	r.reader = bufio.NewReaderSize(r.file, r.config.BufferSize)
	r.index = index
	r.offset = off
	r.remainder = 0
	return nil
}

// Offset returns the current read offset
func (r *FrameReader) Offset() int64 {
	return r.offset
}

// Remainder returns the size of the partial trailing slot once ReadNext has
// reached the end of the file.
func (r *FrameReader) Remainder() int {
	return r.remainder
}

// Iterator returns a streaming iterator over the remaining frames
func (r *FrameReader) Iterator() FrameIterator {
	return &frameIterator{reader: r}
}

// Close closes the frame reader
func (r *FrameReader) Close() error {
	return r.file.Close()
}

type frameIterator struct {
	reader *FrameReader
	frame  collection.FrameResult
	err    error
}

func (it *frameIterator) Next() bool {
	it.frame, it.err = it.reader.ReadNext()
	return it.err == nil
}

func (it *frameIterator) Frame() collection.FrameResult {
	return it.frame
}

func (it *frameIterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

func (it *frameIterator) Close() error {
	// The reader is owned by the caller.
	return nil
}
