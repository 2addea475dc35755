package codec

import "github.com/cockroachdb/errors"

// Errors returned by the codec. Decode errors are wrapped with the field or
// byte position that failed; use errors.Is to classify them.
var (
	ErrCapacityExceeded  = errors.New("sample capacity exceeded")
	ErrStorageIDAssigned = errors.New("storage id already assigned")
	ErrFrameTooLarge     = errors.New("encoded frame exceeds frame size")
	ErrInvalidFraming    = errors.New("invalid byte stuffing")
	ErrTruncated         = errors.New("unexpected end of packet")
	ErrTrailingBytes     = errors.New("trailing bytes after packet")
	ErrBadVarint         = errors.New("malformed varint")
	ErrBadOptionTag      = errors.New("invalid option tag")
)
