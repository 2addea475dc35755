package store

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/axlframe/pkg/codec"
)

// FrameWriter appends fixed-size packet frames to a collection file and
// assigns storage ids to the packets it commits.
type FrameWriter struct {
	file       *os.File
	writer     *bufio.Writer
	codec      *codec.PacketCodec
	fsyncTimer *time.Timer
	config     FrameWriterConfig
	mutex      sync.Mutex
	offset     int64  // Current write offset
	nextID     uint32 // Storage id for the next frame
}

// NewFrameWriter opens (or creates) the collection file for appending. A
// partially written slot at the end of the file is zero padded so the next
// frame starts on a slot boundary.
func NewFrameWriter(config FrameWriterConfig) (*FrameWriter, error) {
	config = config.withDefaults()

	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	size, err := file.Seek(0, 2)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	frameSize := int64(config.FrameSize)
	if partial := size % frameSize; partial != 0 {
		pad := make([]byte, frameSize-partial)
		if _, err := file.Write(pad); err != nil {
			_ = file.Close()
			return nil, errors.Wrap(err, "pad partial frame")
		}
		size += int64(len(pad))
	}

	w := &FrameWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, config.BufferSize),
		codec:  codec.NewPacketCodecWithFrameSize(config.FrameSize),
		config: config,
		offset: size,
		nextID: uint32(size / frameSize),
	}

	if config.FsyncInterval > 0 {
		w.fsyncTimer = time.AfterFunc(config.FsyncInterval, func() {
			w.mutex.Lock()
			defer w.mutex.Unlock()
			_ = w.sync()
		})
	}

	return w, nil
}

// Append commits p as the next frame and returns the storage id and the byte
// offset of its slot. A packet without a storage id gets the next id; a
// packet that already has one keeps it.
func (w *FrameWriter) Append(p *codec.Packet) (uint32, int64, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	id := w.nextID
	staged := *p
	if p.StorageID == nil {
		staged.StorageID = &id
	} else {
		id = *p.StorageID
	}

	slot, err := w.codec.EncodeFrame(&staged)
	if err != nil {
		return 0, 0, err
	}

	if _, err := w.writer.Write(slot); err != nil {
		return 0, 0, err
	}

	frameOffset := w.offset
	w.offset += int64(len(slot))
	w.nextID++

	if w.config.FsyncInterval == 0 {
		if err := w.sync(); err != nil {
			return 0, 0, err
		}
	} else if w.fsyncTimer != nil {
		w.fsyncTimer.Reset(w.config.FsyncInterval)
	}

	// The id is only recorded on the caller's packet once the frame is written.
	if !p.HasStorageID() {
		if err := p.SetStorageID(id); err != nil {
			return 0, 0, err
		}
	}

	return id, frameOffset, nil
}

// Sync forces a fsync to disk
func (w *FrameWriter) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.sync()
}

func (w *FrameWriter) sync() error {
	if err := w.writer.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close closes the writer after a final sync
func (w *FrameWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.fsyncTimer != nil {
		w.fsyncTimer.Stop()
	}

	if err := w.sync(); err != nil {
		_ = w.file.Close()
		return err
	}

	return w.file.Close()
}

// Size returns the current size of the collection file
func (w *FrameWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Frames returns the number of frame slots in the file
func (w *FrameWriter) Frames() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return int(w.offset / int64(w.config.FrameSize))
}

// Path returns the file path
func (w *FrameWriter) Path() string {
	return w.config.FilePath
}
