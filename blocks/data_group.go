package blocks

import "github.com/dmagyar-0/mf4-go/errs"

// DataGroupBlockSize is the fixed size of the DGBLOCK.
const DataGroupBlockSize = 64

// DataGroupBlock is a node in the singly-linked data group list. Its data
// link points at a DT/DV/DZ block or at a DL list of fragments.
type DataGroupBlock struct {
	Header BlockHeader

	NextDGAddr    uint64
	FirstCGAddr   uint64
	DataBlockAddr uint64
	CommentAddr   uint64
	RecordIDLen   uint8 // 0 means sorted records without an ID prefix
}

// NewDataGroupBlock returns a data group block with an initialized common
// header and all links unset.
func NewDataGroupBlock() *DataGroupBlock {
	return &DataGroupBlock{
		Header: BlockHeader{ID: IDDataGroup, BlockLen: DataGroupBlockSize, LinksNr: 4},
	}
}

// Parse reads a DataGroupBlock from a 64-byte slice.
func (b *DataGroupBlock) Parse(buf []byte) error {
	h, err := ParseBlockHeader(buf, IDDataGroup)
	if err != nil {
		return err
	}
	if len(buf) < DataGroupBlockSize {
		return errs.TooShort(len(buf), DataGroupBlockSize)
	}

	b.Header = h
	b.NextDGAddr = le.Uint64(buf[24:32])
	b.FirstCGAddr = le.Uint64(buf[32:40])
	b.DataBlockAddr = le.Uint64(buf[40:48])
	b.CommentAddr = le.Uint64(buf[48:56])
	b.RecordIDLen = buf[56]

	return nil
}

// Bytes serializes the DataGroupBlock to its 64-byte on-disk form.
func (b *DataGroupBlock) Bytes() ([]byte, error) {
	if b.Header.ID != IDDataGroup || b.Header.BlockLen != DataGroupBlockSize || b.Header.LinksNr != 4 {
		return nil, errs.Serialization("data group block must have id=%s len=%d links=4, got id=%s len=%d links=%d",
			IDDataGroup, DataGroupBlockSize, b.Header.ID, b.Header.BlockLen, b.Header.LinksNr)
	}

	buf, err := b.Header.Bytes()
	if err != nil {
		return nil, err
	}
	buf = le.AppendUint64(buf, b.NextDGAddr)
	buf = le.AppendUint64(buf, b.FirstCGAddr)
	buf = le.AppendUint64(buf, b.DataBlockAddr)
	buf = le.AppendUint64(buf, b.CommentAddr)
	buf = append(buf, b.RecordIDLen, 0, 0, 0, 0, 0, 0, 0)

	if len(buf) != DataGroupBlockSize {
		return nil, errs.Serialization("data group block expected %d bytes, wrote %d", DataGroupBlockSize, len(buf))
	}

	return buf, nil
}
