package blocks

import "github.com/dmagyar-0/mf4-go/errs"

// ChannelBlockSize is the fixed size of the CNBLOCK.
const ChannelBlockSize = 160

// Channel types (cn_type).
const (
	ChannelTypeValue  uint8 = 0
	ChannelTypeVLSD   uint8 = 1
	ChannelTypeMaster uint8 = 2
)

// Sync types (cn_sync_type).
const (
	SyncTypeNone uint8 = 0
	SyncTypeTime uint8 = 1
)

// Channel flag bits controlling invalidation handling.
const (
	ChannelFlagAllInvalid     uint32 = 1 << 0
	ChannelFlagInvalidPresent uint32 = 1 << 1
)

// ChannelBlock describes a single signal inside a channel group: its bit
// layout within the record, its storage type and its decoration links
// (name, unit, comment, source, conversion, signal data).
type ChannelBlock struct {
	Header BlockHeader

	NextCNAddr     uint64
	ComponentAddr  uint64
	NameAddr       uint64
	SourceAddr     uint64
	ConversionAddr uint64
	DataAddr       uint64 // for VLSD channels: start of the SD/DL chain
	UnitAddr       uint64
	CommentAddr    uint64

	ChannelType        uint8
	SyncType           uint8
	DataType           DataType
	BitOffset          uint8
	ByteOffset         uint32
	BitCount           uint32
	Flags              uint32
	PosInvalidationBit uint32
	Precision          uint8
	AttachmentNr       uint16
	MinRawValue        float64
	MaxRawValue        float64
	LowerLimit         float64
	UpperLimit         float64
	LowerExtLimit      float64
	UpperExtLimit      float64
}

// NewChannelBlock returns a channel block with an initialized common
// header, unsigned little-endian storage and all links unset.
func NewChannelBlock() *ChannelBlock {
	return &ChannelBlock{
		Header:   BlockHeader{ID: IDChannel, BlockLen: ChannelBlockSize, LinksNr: 8},
		DataType: UnsignedIntegerLE,
	}
}

// Parse reads a ChannelBlock from a 160-byte slice.
func (b *ChannelBlock) Parse(buf []byte) error {
	h, err := ParseBlockHeader(buf, IDChannel)
	if err != nil {
		return err
	}
	if len(buf) < ChannelBlockSize {
		return errs.TooShort(len(buf), ChannelBlockSize)
	}

	b.Header = h
	b.NextCNAddr = le.Uint64(buf[24:32])
	b.ComponentAddr = le.Uint64(buf[32:40])
	b.NameAddr = le.Uint64(buf[40:48])
	b.SourceAddr = le.Uint64(buf[48:56])
	b.ConversionAddr = le.Uint64(buf[56:64])
	b.DataAddr = le.Uint64(buf[64:72])
	b.UnitAddr = le.Uint64(buf[72:80])
	b.CommentAddr = le.Uint64(buf[80:88])
	b.ChannelType = buf[88]
	b.SyncType = buf[89]
	b.DataType = DataType(buf[90])
	b.BitOffset = buf[91]
	b.ByteOffset = le.Uint32(buf[92:96])
	b.BitCount = le.Uint32(buf[96:100])
	b.Flags = le.Uint32(buf[100:104])
	b.PosInvalidationBit = le.Uint32(buf[104:108])
	b.Precision = buf[108]
	b.AttachmentNr = le.Uint16(buf[110:112])
	b.MinRawValue = float64FromBits(le.Uint64(buf[112:120]))
	b.MaxRawValue = float64FromBits(le.Uint64(buf[120:128]))
	b.LowerLimit = float64FromBits(le.Uint64(buf[128:136]))
	b.UpperLimit = float64FromBits(le.Uint64(buf[136:144]))
	b.LowerExtLimit = float64FromBits(le.Uint64(buf[144:152]))
	b.UpperExtLimit = float64FromBits(le.Uint64(buf[152:160]))

	return nil
}

// Bytes serializes the ChannelBlock to its 160-byte on-disk form.
func (b *ChannelBlock) Bytes() ([]byte, error) {
	if b.Header.ID != IDChannel || b.Header.BlockLen != ChannelBlockSize || b.Header.LinksNr != 8 {
		return nil, errs.Serialization("channel block must have id=%s len=%d links=8, got id=%s len=%d links=%d",
			IDChannel, ChannelBlockSize, b.Header.ID, b.Header.BlockLen, b.Header.LinksNr)
	}

	buf, err := b.Header.Bytes()
	if err != nil {
		return nil, err
	}
	buf = le.AppendUint64(buf, b.NextCNAddr)
	buf = le.AppendUint64(buf, b.ComponentAddr)
	buf = le.AppendUint64(buf, b.NameAddr)
	buf = le.AppendUint64(buf, b.SourceAddr)
	buf = le.AppendUint64(buf, b.ConversionAddr)
	buf = le.AppendUint64(buf, b.DataAddr)
	buf = le.AppendUint64(buf, b.UnitAddr)
	buf = le.AppendUint64(buf, b.CommentAddr)
	buf = append(buf, b.ChannelType, b.SyncType, uint8(b.DataType), b.BitOffset)
	buf = le.AppendUint32(buf, b.ByteOffset)
	buf = le.AppendUint32(buf, b.BitCount)
	buf = le.AppendUint32(buf, b.Flags)
	buf = le.AppendUint32(buf, b.PosInvalidationBit)
	buf = append(buf, b.Precision, 0)
	buf = le.AppendUint16(buf, b.AttachmentNr)
	buf = le.AppendUint64(buf, float64Bits(b.MinRawValue))
	buf = le.AppendUint64(buf, float64Bits(b.MaxRawValue))
	buf = le.AppendUint64(buf, float64Bits(b.LowerLimit))
	buf = le.AppendUint64(buf, float64Bits(b.UpperLimit))
	buf = le.AppendUint64(buf, float64Bits(b.LowerExtLimit))
	buf = le.AppendUint64(buf, float64Bits(b.UpperExtLimit))

	if len(buf) != ChannelBlockSize {
		return nil, errs.Serialization("channel block expected %d bytes, wrote %d", ChannelBlockSize, len(buf))
	}

	return buf, nil
}

// IsMaster reports whether the channel is the time master of its group.
func (b *ChannelBlock) IsMaster() bool {
	return b.ChannelType == ChannelTypeMaster && b.SyncType == SyncTypeTime
}
