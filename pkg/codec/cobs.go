package codec

import "github.com/cockroachdb/errors"

// stuff COBS-encodes src and appends the 0x00 terminator. The output holds
// no zero byte other than the terminator.
func stuff(src []byte) []byte {
	dst := make([]byte, 1, len(src)+len(src)/254+2)
	codeIdx := 0
	code := byte(1)

	for _, b := range src {
		if b == 0 {
			dst[codeIdx] = code
			codeIdx = len(dst)
			dst = append(dst, 0)
			code = 1
			continue
		}
		dst = append(dst, b)
		code++
		if code == 0xFF {
			dst[codeIdx] = code
			codeIdx = len(dst)
			dst = append(dst, 0)
			code = 1
		}
	}
	dst[codeIdx] = code
	return append(dst, 0)
}

// unstuff decodes a COBS frame up to its first zero terminator. Anything
// after the terminator is ignored.
func unstuff(frame []byte) ([]byte, error) {
	out := make([]byte, 0, len(frame))
	i := 0
	for i < len(frame) {
		code := frame[i]
		if code == 0 {
			return out, nil
		}
		start := i + 1
		end := i + int(code)
		if end > len(frame) {
			return nil, errors.Wrapf(ErrInvalidFraming, "code 0x%02x at byte %d runs past frame end", code, i)
		}
		for j := start; j < end; j++ {
			if frame[j] == 0 {
				return nil, errors.Wrapf(ErrInvalidFraming, "zero byte inside run at byte %d", j)
			}
		}
		out = append(out, frame[start:end]...)
		i = end
		if code != 0xFF && i < len(frame) && frame[i] != 0 {
			out = append(out, 0)
		}
	}
	return nil, errors.Wrap(ErrInvalidFraming, "no frame terminator")
}
