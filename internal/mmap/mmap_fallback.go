//go:build !unix

package mmap

import (
	"errors"
	"os"
)

// Open reads path fully into memory on platforms without mmap support.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Mapping{f: f, data: data}, nil
}

// Close releases the buffered contents.
func (m *Mapping) Close() error {
	m.data = nil

	return m.f.Close()
}

// Create is unavailable without mmap support and always returns an error;
// writer.New passes that error on to its caller.
func Create(path string, size int64) (*Writable, error) {
	return nil, errors.New("mmap backing is not supported on this platform")
}

// Finalize is unreachable on this platform.
func (m *Writable) Finalize(finalSize int64) error {
	return errors.New("mmap backing is not supported on this platform")
}
