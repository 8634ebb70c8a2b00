// Package record reads test files in libsvm sparse format. Each line holds a
// label followed by strictly increasing index:value pairs:
//
//	<label> <index1>:<value1> <index2>:<value2> ...
//
// The Reader returns whole lines of arbitrary length and the Parser turns a
// line into a Record whose feature vector is terminated by an index of -1.
package record

import (
	"bufio"
	"errors"
	"io"

	"osr-predict/internal/common"
)

// Reader reads newline-terminated lines into a buffer that doubles its
// capacity whenever a line does not fit.
type Reader struct {
	br   *bufio.Reader
	line []byte
}

// NewReader returns a Reader with the default initial line capacity.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, common.DefaultLineBufferSize)
}

// NewReaderSize returns a Reader whose line buffer starts at size bytes.
func NewReaderSize(r io.Reader, size int) *Reader {
	if size < 16 {
		size = 16
	}
	return &Reader{
		br:   bufio.NewReaderSize(r, size),
		line: make([]byte, 0, size),
	}
}

// ReadLine returns the next line including its trailing newline, if any.
// The returned slice is only valid until the next call. At the end of the
// input it returns io.EOF.
func (r *Reader) ReadLine() ([]byte, error) {
	r.line = r.line[:0]
	for {
		chunk, err := r.br.ReadSlice('\n')
		r.line = appendDoubling(r.line, chunk)

		switch {
		case err == nil:
			return r.line, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if len(r.line) == 0 {
				return nil, io.EOF
			}
			return r.line, nil
		default:
			return nil, err
		}
	}
}

// Cap returns the current capacity of the line buffer.
func (r *Reader) Cap() int {
	return cap(r.line)
}

// appendDoubling appends src to dst, doubling dst's capacity as often as
// needed instead of relying on append's growth policy.
func appendDoubling(dst, src []byte) []byte {
	need := len(dst) + len(src)
	if need > cap(dst) {
		newCap := cap(dst)
		if newCap == 0 {
			newCap = 1
		}
		for newCap < need {
			newCap *= 2
		}
		grown := make([]byte, len(dst), newCap)
		copy(grown, dst)
		dst = grown
	}
	return append(dst, src...)
}
