package record

import "github.com/dmagyar-0/mf4-go/blocks"

// Valid reports whether a channel's sample in the given record is valid
// according to the channel's invalidation flags.
//
// Flag bit 0 marks the channel as always invalid. With bits 0 and 1 both
// clear the channel carries no invalidation information and every sample
// is valid. Otherwise the invalidation bit at PosInvalidationBit is
// inspected inside the invalidation byte area that follows the record
// data; a record too short to contain that byte counts as valid.
func Valid(rec []byte, recordIDLen int, cg *blocks.ChannelGroupBlock, ch *blocks.ChannelBlock) bool {
	if ch.Flags&blocks.ChannelFlagAllInvalid != 0 {
		return false
	}
	if ch.Flags&blocks.ChannelFlagInvalidPresent == 0 {
		return true
	}

	pos := int(ch.PosInvalidationBit)
	byteIdx := recordIDLen + int(cg.SamplesByteNr) + pos>>3
	if byteIdx >= len(rec) {
		return true
	}

	return rec[byteIdx]&(1<<uint(pos&7)) == 0
}
