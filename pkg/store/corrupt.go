package store

import (
	"os"

	"github.com/cockroachdb/errors"
)

// CorruptFrame overwrites the first n bytes of frame slot index with pattern,
// simulating a storage bit error or an interrupted write. Used to produce test
// collections with known damage.
func CorruptFrame(path string, frameSize, index, n int, pattern byte) error {
	if n > frameSize {
		n = frameSize
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	off := int64(index) * int64(frameSize)
	if index < 0 || off+int64(frameSize) > stat.Size() {
		return errors.Newf("frame %d outside collection of %d bytes", index, stat.Size())
	}

	junk := make([]byte, n)
	for i := range junk {
		junk[i] = pattern
	}
	if _, err := file.WriteAt(junk, off); err != nil {
		return err
	}
	return file.Sync()
}
