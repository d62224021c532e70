package record

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmagyar-0/mf4-go/blocks"
)

func invalidationGroup(samplesByteNr, invalBytes uint32) *blocks.ChannelGroupBlock {
	cg := blocks.NewChannelGroupBlock()
	cg.SamplesByteNr = samplesByteNr
	cg.InvalidationBytesNr = invalBytes

	return cg
}

func TestValid_AllInvalidFlag(t *testing.T) {
	ch := blocks.NewChannelBlock()
	ch.Flags = blocks.ChannelFlagAllInvalid

	require.False(t, Valid([]byte{0, 0, 0, 0}, 0, invalidationGroup(2, 1), ch))
}

func TestValid_NoInvalidationInfo(t *testing.T) {
	ch := blocks.NewChannelBlock()

	require.True(t, Valid([]byte{0xFF, 0xFF}, 0, invalidationGroup(2, 0), ch))
}

func TestValid_BitInspection(t *testing.T) {
	cg := invalidationGroup(2, 1)

	ch := blocks.NewChannelBlock()
	ch.Flags = blocks.ChannelFlagInvalidPresent
	ch.PosInvalidationBit = 3

	// Record: 2 data bytes + 1 invalidation byte with bit 3 set.
	rec := []byte{0x11, 0x22, 0x08}
	require.False(t, Valid(rec, 0, cg, ch))

	rec[2] = 0x00
	require.True(t, Valid(rec, 0, cg, ch))

	// Other bits do not affect this channel.
	rec[2] = 0xF7
	require.True(t, Valid(rec, 0, cg, ch))
}

func TestValid_RecordIDOffset(t *testing.T) {
	cg := invalidationGroup(1, 1)

	ch := blocks.NewChannelBlock()
	ch.Flags = blocks.ChannelFlagInvalidPresent
	ch.PosInvalidationBit = 0

	// record id (2) + data (1) + invalidation byte
	rec := []byte{0xAA, 0xAA, 0x55, 0x01}
	require.False(t, Valid(rec, 2, cg, ch))
}

func TestValid_MissingInvalidationByte(t *testing.T) {
	cg := invalidationGroup(2, 1)

	ch := blocks.NewChannelBlock()
	ch.Flags = blocks.ChannelFlagInvalidPresent
	ch.PosInvalidationBit = 0

	// Record too short to contain the invalidation byte: treated as valid.
	require.True(t, Valid([]byte{0x11, 0x22}, 0, cg, ch))
}
