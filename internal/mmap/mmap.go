// Package mmap wraps the platform memory-mapping primitives used by the
// graph reader (read-only map over an existing file) and the writer's
// mmap backing (pre-sized writable map).
package mmap

import "os"

// Mapping is a read-only view over a whole file. Data stays valid until
// Close.
type Mapping struct {
	f    *os.File
	data []byte
}

// Data returns the mapped file contents.
func (m *Mapping) Data() []byte { return m.data }

// Writable is a pre-sized writable view over a file being produced.
// Finalize unmaps and truncates the file to its final length.
type Writable struct {
	f    *os.File
	data []byte
}

// Data returns the writable backing slice.
func (m *Writable) Data() []byte { return m.data }
