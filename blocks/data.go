package blocks

import (
	"iter"

	"github.com/dmagyar-0/mf4-go/errs"
)

// DataBlock is a ##DT or ##DV block: a 24-byte header followed by packed
// records. Data borrows from the parsed buffer.
type DataBlock struct {
	Header BlockHeader
	Data   []byte
}

// ParseDataBlock reads a DT/DV block beginning at buf.
func ParseDataBlock(buf []byte) (*DataBlock, error) {
	h, err := ParseBlockHeader(buf, IDData, IDDataValues)
	if err != nil {
		return nil, err
	}

	dataLen := 0
	if h.BlockLen > HeaderSize {
		dataLen = int(h.BlockLen - HeaderSize)
	}
	if len(buf) < HeaderSize+dataLen {
		return nil, errs.TooShort(len(buf), HeaderSize+dataLen)
	}

	return &DataBlock{Header: h, Data: buf[HeaderSize : HeaderSize+dataLen]}, nil
}

// Records yields the fixed-size record slices of the block in byte order.
// A trailing partial record is trimmed.
func (b *DataBlock) Records(recordSize int) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		if recordSize <= 0 {
			return
		}
		for off := 0; off+recordSize <= len(b.Data); off += recordSize {
			if !yield(b.Data[off : off+recordSize]) {
				return
			}
		}
	}
}

// SignalDataBlock is a ##SD block holding the concatenated VLSD stream:
// repeated [u32 length][value bytes] pairs.
type SignalDataBlock struct {
	Header BlockHeader
	Data   []byte
}

// ParseSignalDataBlock reads an SD block beginning at buf.
func ParseSignalDataBlock(buf []byte) (*SignalDataBlock, error) {
	h, err := ParseBlockHeader(buf, IDSignalData)
	if err != nil {
		return nil, err
	}
	if uint64(len(buf)) < h.BlockLen {
		return nil, errs.TooShort(len(buf), int(h.BlockLen))
	}

	return &SignalDataBlock{Header: h, Data: buf[HeaderSize:h.BlockLen]}, nil
}

// Values yields each variable-length payload in stream order. A length
// prefix that overruns the block yields a too-short-buffer error and ends
// the sequence.
func (b *SignalDataBlock) Values() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		pos := 0
		for pos+4 <= len(b.Data) {
			n := int(le.Uint32(b.Data[pos : pos+4]))
			start := pos + 4
			end := start + n
			if end > len(b.Data) {
				yield(nil, errs.TooShort(len(b.Data), end))
				return
			}
			if !yield(b.Data[start:end], nil) {
				return
			}
			pos = end
		}
	}
}
