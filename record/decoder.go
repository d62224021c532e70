package record

import (
	"math"
	"unicode/utf16"

	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/endian"
)

var (
	le = endian.GetLittleEndianEngine()
	be = endian.GetBigEndianEngine()
)

// Decode extracts one typed value from a record byte slice using the
// channel's layout fields. It returns ok=false when the slice is shorter
// than the channel's data window requires; callers typically substitute
// Unknown.
//
// For a VLSD channel the whole record slice is the payload and the layout
// fields are ignored.
func Decode(rec []byte, recordIDLen int, ch *blocks.ChannelBlock) (Value, bool) {
	bitOffset := int(ch.BitOffset)
	bitCount := int(ch.BitCount)

	var window []byte
	if ch.ChannelType == blocks.ChannelTypeVLSD {
		window = rec
	} else {
		numBytes := windowBytes(ch.DataType, bitOffset, bitCount)
		base := recordIDLen + int(ch.ByteOffset)
		if base+numBytes > len(rec) {
			return Unknown, false
		}
		window = rec[base : base+numBytes]
	}

	switch ch.DataType {
	case blocks.UnsignedIntegerLE:
		return UnsignedValue(extractBits(rawUint(window, false), bitOffset, bitCount)), true
	case blocks.UnsignedIntegerBE:
		return UnsignedValue(extractBits(rawUint(window, true), bitOffset, bitCount)), true
	case blocks.SignedIntegerLE:
		return SignedValue(signExtend(extractBits(rawUint(window, false), bitOffset, bitCount), bitCount)), true
	case blocks.SignedIntegerBE:
		return SignedValue(signExtend(extractBits(rawUint(window, true), bitOffset, bitCount), bitCount)), true
	case blocks.FloatLE:
		return decodeFloat(rawUint(window, false), bitCount)
	case blocks.FloatBE:
		return decodeFloat(rawUint(window, true), bitCount)
	case blocks.StringLatin1:
		return StringValue(trimNul(decodeLatin1(window))), true
	case blocks.StringUtf8:
		return StringValue(trimNul(string(window))), true
	case blocks.StringUtf16LE:
		return decodeUtf16(window, false)
	case blocks.StringUtf16BE:
		return decodeUtf16(window, true)
	case blocks.ByteArray:
		return BytesValue(cloneBytes(window)), true
	case blocks.MimeSample:
		return MimeSampleValue(cloneBytes(window)), true
	case blocks.MimeStream:
		return MimeStreamValue(cloneBytes(window)), true
	}

	return Unknown, true
}

// windowBytes computes the size of the channel's data window. String and
// byte-like types are stored in whole bytes; numeric windows cover the
// shifted bit field.
func windowBytes(dt blocks.DataType, bitOffset, bitCount int) int {
	if dt.IsStringLike() || dt.IsByteLike() {
		return bitCount / 8
	}

	n := (bitOffset + bitCount + 7) / 8
	if n < 1 {
		n = 1
	}

	return n
}

// rawUint assembles up to eight window bytes into a u64 honoring the
// storage byte order. Longer windows keep the least significant eight
// bytes, matching a shift-and-accumulate assembly.
func rawUint(window []byte, bigEndian bool) uint64 {
	var raw uint64
	if bigEndian {
		for _, b := range window {
			raw = raw<<8 | uint64(b)
		}
	} else {
		for i := len(window) - 1; i >= 0; i-- {
			raw = raw<<8 | uint64(window[i])
		}
	}

	return raw
}

func extractBits(raw uint64, bitOffset, bitCount int) uint64 {
	shifted := raw >> uint(bitOffset)
	if bitCount >= 64 {
		return shifted
	}

	return shifted & (1<<uint(bitCount) - 1)
}

func signExtend(raw uint64, bitCount int) int64 {
	if bitCount <= 0 || bitCount >= 64 {
		return int64(raw)
	}
	sign := uint64(1) << uint(bitCount-1)
	if raw&sign != 0 {
		return int64(raw | ^(1<<uint(bitCount) - 1))
	}

	return int64(raw)
}

func decodeFloat(raw uint64, bitCount int) (Value, bool) {
	switch bitCount {
	case 32:
		return FloatValue(float64(math.Float32frombits(uint32(raw)))), true
	case 64:
		return FloatValue(math.Float64frombits(raw)), true
	}

	return Unknown, false
}

func decodeLatin1(window []byte) string {
	runes := make([]rune, len(window))
	for i, b := range window {
		runes[i] = rune(b)
	}

	return string(runes)
}

func decodeUtf16(window []byte, bigEndian bool) (Value, bool) {
	if len(window)%2 != 0 {
		return Unknown, false
	}
	units := make([]uint16, len(window)/2)
	for i := range units {
		if bigEndian {
			units[i] = be.Uint16(window[2*i : 2*i+2])
		} else {
			units[i] = le.Uint16(window[2*i : 2*i+2])
		}
	}

	return StringValue(trimNul(string(utf16.Decode(units)))), true
}

func trimNul(s string) string {
	end := len(s)
	for end > 0 && s[end-1] == 0 {
		end--
	}

	return s[:end]
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)

	return out
}
