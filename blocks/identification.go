package blocks

import (
	"strconv"
	"strings"

	"github.com/dmagyar-0/mf4-go/errs"
)

// IdentificationSize is the fixed size of the identification block.
const IdentificationSize = 64

const (
	fileMagic      = "MDF     "
	defaultVersion = "4.10    "
	defaultProgram = "mf4go   "
)

// IdentificationBlock is the 64-byte block at file offset 0. It carries no
// common header; its first 8 bytes are the file magic itself.
type IdentificationBlock struct {
	FileID        string // 8 bytes, "MDF     "
	VersionString string // 8 bytes, "4.10    " or higher
	Program       string // 8 bytes, writing application
	Version       uint16 // numeric version, 410 for MDF 4.10
	UnfinFlags    uint16
	CustomFlags   uint16
}

// NewIdentificationBlock returns an identification block for a new 4.10 file.
func NewIdentificationBlock() *IdentificationBlock {
	return &IdentificationBlock{
		FileID:        fileMagic,
		VersionString: defaultVersion,
		Program:       defaultProgram,
		Version:       410,
	}
}

// Parse reads and validates the identification block. It fails fast on a
// wrong file magic, a malformed version field or a version below 4.10.
func (b *IdentificationBlock) Parse(buf []byte) error {
	if len(buf) < IdentificationSize {
		return errs.TooShort(len(buf), IdentificationSize)
	}

	b.FileID = string(buf[0:8])
	if b.FileID != fileMagic {
		return errs.ErrFileIdentifier
	}

	b.VersionString = string(buf[8:16])
	b.Program = string(buf[16:24])
	b.Version = le.Uint16(buf[28:30])
	b.UnfinFlags = le.Uint16(buf[60:62])
	b.CustomFlags = le.Uint16(buf[62:64])

	ver := strings.TrimSpace(b.VersionString)
	parsed, err := strconv.ParseFloat(ver, 64)
	if err != nil {
		return &errs.InvalidVersionError{Found: ver}
	}
	if parsed < 4.10 {
		return &errs.VersionTooLowError{Found: ver}
	}

	return nil
}

// Bytes serializes the identification block to its 64-byte on-disk form.
func (b *IdentificationBlock) Bytes() ([]byte, error) {
	if len(b.FileID) != 8 || len(b.VersionString) != 8 {
		return nil, errs.Serialization("identification fields must be 8 bytes, got id=%d version=%d",
			len(b.FileID), len(b.VersionString))
	}

	buf := make([]byte, IdentificationSize)
	copy(buf[0:8], b.FileID)
	copy(buf[8:16], b.VersionString)
	prog := b.Program
	if prog == "" {
		prog = defaultProgram
	}
	copy(buf[16:24], padded8(prog))
	le.PutUint16(buf[28:30], b.Version)
	le.PutUint16(buf[60:62], b.UnfinFlags)
	le.PutUint16(buf[62:64], b.CustomFlags)

	return buf, nil
}

// padded8 space-pads or truncates s to exactly 8 bytes.
func padded8(s string) []byte {
	out := []byte("        ")
	copy(out, s)

	return out
}
