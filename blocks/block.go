// Package blocks implements the fixed-layout codecs for every MDF 4.1
// block kind used by this library.
//
// Each codec parses exactly one block from a byte slice beginning at the
// block's first byte and serializes it back to its canonical on-disk form.
// Codecs never dereference link fields; offset resolution belongs to the
// graph reader. All multi-byte integers are little-endian and every block
// is a multiple of 8 bytes long, including the common 24-byte header.
package blocks

import (
	"math"

	"github.com/dmagyar-0/mf4-go/endian"
	"github.com/dmagyar-0/mf4-go/errs"
)

var le = endian.GetLittleEndianEngine()

// HeaderSize is the size of the common block header in bytes.
const HeaderSize = 24

// Block magics for the block kinds this library understands.
const (
	IDHeader       = "##HD"
	IDDataGroup    = "##DG"
	IDChannelGroup = "##CG"
	IDChannel      = "##CN"
	IDText         = "##TX"
	IDMetadata     = "##MD"
	IDSource       = "##SI"
	IDConversion   = "##CC"
	IDData         = "##DT"
	IDDataValues   = "##DV"
	IDDataZipped   = "##DZ"
	IDDataList     = "##DL"
	IDSignalData   = "##SD"
)

// BlockHeader is the common 24-byte header that starts every block after
// the identification block: four ASCII magic bytes, a reserved word, the
// total block length (header and padding included) and the link count.
type BlockHeader struct {
	ID       string
	Reserved uint32
	BlockLen uint64
	LinksNr  uint64
}

// ParseBlockHeader reads the common header from buf and validates the
// magic against the expected IDs. With no expected IDs any magic passes.
func ParseBlockHeader(buf []byte, expected ...string) (BlockHeader, error) {
	if len(buf) < HeaderSize {
		return BlockHeader{}, errs.TooShort(len(buf), HeaderSize)
	}

	h := BlockHeader{
		ID:       string(buf[0:4]),
		Reserved: le.Uint32(buf[4:8]),
		BlockLen: le.Uint64(buf[8:16]),
		LinksNr:  le.Uint64(buf[16:24]),
	}

	if len(expected) > 0 {
		ok := false
		for _, id := range expected {
			if h.ID == id {
				ok = true
				break
			}
		}
		if !ok {
			exp := expected[0]
			for _, id := range expected[1:] {
				exp += " / " + id
			}

			return BlockHeader{}, &errs.BlockIDError{Actual: h.ID, Expected: exp}
		}
	}

	return h, nil
}

// Bytes serializes the header into its 24-byte on-disk form.
func (h BlockHeader) Bytes() ([]byte, error) {
	if len(h.ID) != 4 {
		return nil, errs.Serialization("block id %q must be four characters", h.ID)
	}

	buf := make([]byte, 0, HeaderSize)
	buf = append(buf, h.ID...)
	buf = le.AppendUint32(buf, h.Reserved)
	buf = le.AppendUint64(buf, h.BlockLen)
	buf = le.AppendUint64(buf, h.LinksNr)

	return buf, nil
}

// PeekID returns the four-byte magic at addr, or "" when the slice is too
// short to contain one.
func PeekID(file []byte, addr uint64) string {
	off := int(addr)
	if addr == 0 || off+4 > len(file) {
		return ""
	}

	return string(file[off : off+4])
}

// alignedLen rounds n up to the next multiple of 8.
func alignedLen(n int) int {
	return (n + 7) &^ 7
}

func float64Bits(f float64) uint64 {
	return math.Float64bits(f)
}

func float64FromBits(u uint64) float64 {
	return math.Float64frombits(u)
}
