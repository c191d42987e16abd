package engine

import (
	"bytes"
	"errors"
	"io"
)

const (
	// LargeFileThreshold is the size above which a file is memory-mapped
	// instead of streamed.
	LargeFileThreshold int64 = 1 << 20
	// BinarySniffBytes is how much of a file is inspected for a NUL byte.
	BinarySniffBytes = 512
)

// Class is the scan strategy chosen for a file.
type Class int

const (
	ClassNormal Class = iota
	ClassLarge
	ClassBinary
	ClassSkipped
)

func (c Class) String() string {
	switch c {
	case ClassNormal:
		return "normal"
	case ClassLarge:
		return "large"
	case ClassBinary:
		return "binary"
	default:
		return "skipped"
	}
}

// FileTask is one discovered file.
type FileTask struct {
	// Path is relative to the scan root and slash separated.
	Path    string
	AbsPath string
	Size    int64
	Class   Class
}

// Classify reads at most BinarySniffBytes from r and decides the strategy
// for a file of the given size. A NUL byte in the prefix wins over size.
func Classify(r io.Reader, size int64) (Class, error) {
	buf := make([]byte, BinarySniffBytes)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return ClassSkipped, err
	}
	if looksBinary(buf[:n]) {
		return ClassBinary, nil
	}
	if size > LargeFileThreshold {
		return ClassLarge, nil
	}
	return ClassNormal, nil
}

func looksBinary(b []byte) bool {
	return bytes.IndexByte(b, 0) >= 0
}
