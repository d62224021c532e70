//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// Open maps path read-only. An empty file maps to a nil slice.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		return &Mapping{f: f}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Mapping{f: f, data: data}, nil
}

// Close unmaps the view and closes the underlying file.
func (m *Mapping) Close() error {
	if m.data != nil {
		if err := unix.Munmap(m.data); err != nil {
			m.f.Close()
			return err
		}
		m.data = nil
	}

	return m.f.Close()
}

// Create creates path truncated to size and maps it read-write.
func Create(path string, size int64) (*Writable, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, err
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Writable{f: f, data: data}, nil
}

// Finalize unmaps the view and truncates the file to finalSize.
func (m *Writable) Finalize(finalSize int64) error {
	if m.data != nil {
		if err := unix.Munmap(m.data); err != nil {
			m.f.Close()
			return err
		}
		m.data = nil
	}
	if err := m.f.Truncate(finalSize); err != nil {
		m.f.Close()
		return err
	}

	return m.f.Close()
}
