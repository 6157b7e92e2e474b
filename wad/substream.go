package wad

import (
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrClosed is returned by a SubStream used after Close.
	ErrClosed = errors.New("sub-stream closed")

	// ErrSeekOutOfRange is returned when a seek targets a position before the
	// start or beyond the end of a SubStream.
	ErrSeekOutOfRange = errors.New("seek out of sub-stream range")
)

// SubStream is a read-only view of the bytes [off, off+n) of a base stream.
// It never copies the window and never reads outside it. A SubStream keeps its
// own position, so several may share one base as long as the base supports
// concurrent ReadAt calls.
type SubStream struct {
	base   io.ReaderAt
	off    int64
	n      int64
	pos    int64
	closed bool
}

// NewSubStream returns a SubStream over length bytes of base starting at offset.
func NewSubStream(base io.ReaderAt, offset, length int64) (*SubStream, error) {
	if offset < 0 || length < 0 {
		return nil, errors.Errorf("sub-stream window [%d,+%d) is negative", offset, length)
	}
	return &SubStream{base: base, off: offset, n: length}, nil
}

// Size returns the length of the window.
func (s *SubStream) Size() int64 {
	return s.n
}

// Read implements io.Reader.
func (s *SubStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if s.pos >= s.n {
		return 0, io.EOF
	}
	if rem := s.n - s.pos; int64(len(p)) > rem {
		p = p[:rem]
	}
	n, err := s.base.ReadAt(p, s.off+s.pos)
	s.pos += int64(n)
	if err == io.EOF && n == len(p) {
		err = nil
	}
	return n, err
}

// ReadAt implements io.ReaderAt relative to the start of the window.
func (s *SubStream) ReadAt(p []byte, off int64) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrSeekOutOfRange
	}
	if off >= s.n {
		return 0, io.EOF
	}
	clamped := false
	if rem := s.n - off; int64(len(p)) > rem {
		p = p[:rem]
		clamped = true
	}
	n, err := s.base.ReadAt(p, s.off+off)
	if err == nil && clamped {
		err = io.EOF
	}
	return n, err
}

// Seek implements io.Seeker. Positions outside [0, Size()] are refused and
// leave the current position unchanged.
func (s *SubStream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = s.n + offset
	default:
		return s.pos, errors.Errorf("invalid whence %d", whence)
	}
	if abs < 0 || abs > s.n {
		return s.pos, errors.Wrapf(ErrSeekOutOfRange, "position %d outside [0,%d]", abs, s.n)
	}
	s.pos = abs
	return abs, nil
}

// Close releases the view. The base stream is not closed.
func (s *SubStream) Close() error {
	s.closed = true
	return nil
}
