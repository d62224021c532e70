package blocks

import "github.com/dmagyar-0/mf4-go/errs"

// HeaderBlockSize is the fixed size of the HDBLOCK.
const HeaderBlockSize = 104

// HeaderBlock is the root of the block graph. It links to the first data
// group and carries the absolute measurement start time.
type HeaderBlock struct {
	Header BlockHeader

	FirstDGAddr    uint64
	FileHistory    uint64
	HierarchyAddr  uint64
	AttachmentAddr uint64
	EventAddr      uint64
	CommentAddr    uint64

	StartTimeNs   uint64 // nanoseconds since epoch, zero when unset
	TZOffsetMin   int16
	DSTOffsetMin  int16
	TimeFlags     uint8
	TimeClass     uint8
	Flags         uint8
	StartAngleRad float64
	StartDistM    float64
}

// NewHeaderBlock returns a header block with an initialized common header
// and all links unset.
func NewHeaderBlock() *HeaderBlock {
	return &HeaderBlock{
		Header: BlockHeader{ID: IDHeader, BlockLen: HeaderBlockSize, LinksNr: 6},
	}
}

// Parse reads a HeaderBlock from a 104-byte slice.
func (b *HeaderBlock) Parse(buf []byte) error {
	h, err := ParseBlockHeader(buf, IDHeader)
	if err != nil {
		return err
	}
	if len(buf) < HeaderBlockSize {
		return errs.TooShort(len(buf), HeaderBlockSize)
	}

	b.Header = h
	b.FirstDGAddr = le.Uint64(buf[24:32])
	b.FileHistory = le.Uint64(buf[32:40])
	b.HierarchyAddr = le.Uint64(buf[40:48])
	b.AttachmentAddr = le.Uint64(buf[48:56])
	b.EventAddr = le.Uint64(buf[56:64])
	b.CommentAddr = le.Uint64(buf[64:72])
	b.StartTimeNs = le.Uint64(buf[72:80])
	b.TZOffsetMin = int16(le.Uint16(buf[80:82]))
	b.DSTOffsetMin = int16(le.Uint16(buf[82:84]))
	b.TimeFlags = buf[84]
	b.TimeClass = buf[85]
	b.Flags = buf[86]
	b.StartAngleRad = float64FromBits(le.Uint64(buf[88:96]))
	b.StartDistM = float64FromBits(le.Uint64(buf[96:104]))

	return nil
}

// Bytes serializes the header block to its 104-byte on-disk form.
func (b *HeaderBlock) Bytes() ([]byte, error) {
	if b.Header.ID != IDHeader || b.Header.BlockLen != HeaderBlockSize || b.Header.LinksNr != 6 {
		return nil, errs.Serialization("header block must have id=%s len=%d links=6, got id=%s len=%d links=%d",
			IDHeader, HeaderBlockSize, b.Header.ID, b.Header.BlockLen, b.Header.LinksNr)
	}

	buf, err := b.Header.Bytes()
	if err != nil {
		return nil, err
	}
	buf = le.AppendUint64(buf, b.FirstDGAddr)
	buf = le.AppendUint64(buf, b.FileHistory)
	buf = le.AppendUint64(buf, b.HierarchyAddr)
	buf = le.AppendUint64(buf, b.AttachmentAddr)
	buf = le.AppendUint64(buf, b.EventAddr)
	buf = le.AppendUint64(buf, b.CommentAddr)
	buf = le.AppendUint64(buf, b.StartTimeNs)
	buf = le.AppendUint16(buf, uint16(b.TZOffsetMin))
	buf = le.AppendUint16(buf, uint16(b.DSTOffsetMin))
	buf = append(buf, b.TimeFlags, b.TimeClass, b.Flags, 0)
	buf = le.AppendUint64(buf, float64Bits(b.StartAngleRad))
	buf = le.AppendUint64(buf, float64Bits(b.StartDistM))

	if len(buf) != HeaderBlockSize {
		return nil, errs.Serialization("header block expected %d bytes, wrote %d", HeaderBlockSize, len(buf))
	}

	return buf, nil
}
