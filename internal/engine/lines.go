package engine

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// LineSource yields the lines of one file. Each may be called any number of
// times; every call starts again at line 1. The slice passed to fn is only
// valid for the duration of the call.
type LineSource interface {
	Each(fn func(n int, line []byte) bool) error
	Close() error
}

// openSource opens abs once, classifies it from the same handle and returns
// the matching LineSource. Binary files return a nil source and no error.
func openSource(abs string) (LineSource, Class, error) {
	f, err := os.Open(abs)
	if err != nil {
		return nil, ClassSkipped, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ClassSkipped, err
	}
	if !st.Mode().IsRegular() {
		_ = f.Close()
		return nil, ClassSkipped, fmt.Errorf("%s: not a regular file", abs)
	}
	class, err := Classify(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, ClassSkipped, err
	}
	switch class {
	case ClassBinary:
		_ = f.Close()
		return nil, class, nil
	case ClassLarge:
		src, err := newMappedSource(f)
		if err != nil {
			return nil, ClassSkipped, err
		}
		return src, class, nil
	default:
		return newStreamSource(f), class, nil
	}
}

// trimEOL drops one trailing "\n" and then one trailing "\r".
func trimEOL(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return b
}

// streamSource reads a file line by line through a fixed buffer, so memory
// use is bounded by the longest line rather than the file size.
type streamSource struct {
	f   *os.File
	br  *bufio.Reader
	buf []byte
}

func newStreamSource(f *os.File) *streamSource {
	return &streamSource{f: f, br: bufio.NewReaderSize(f, 64*1024)}
}

func (s *streamSource) Each(fn func(n int, line []byte) bool) error {
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	s.br.Reset(s.f)
	n := 0
	for {
		s.buf = s.buf[:0]
		var err error
		for {
			var chunk []byte
			chunk, err = s.br.ReadSlice('\n')
			s.buf = append(s.buf, chunk...)
			if !errors.Is(err, bufio.ErrBufferFull) {
				break
			}
		}
		if len(s.buf) > 0 {
			n++
			if !fn(n, trimEOL(s.buf)) {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (s *streamSource) Close() error { return s.f.Close() }

// mappedSource scans a memory-mapped copy of the whole file.
type mappedSource struct {
	f    *os.File
	data mmap.MMap
}

func newMappedSource(f *os.File) (*mappedSource, error) {
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &mappedSource{f: f, data: m}, nil
}

func (s *mappedSource) Each(fn func(n int, line []byte) bool) error {
	rest := []byte(s.data)
	n := 0
	for len(rest) > 0 {
		var line []byte
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i+1], rest[i+1:]
		} else {
			line, rest = rest, nil
		}
		n++
		if !fn(n, trimEOL(line)) {
			return nil
		}
	}
	return nil
}

func (s *mappedSource) Close() error {
	err := s.data.Unmap()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}
