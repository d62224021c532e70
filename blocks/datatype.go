package blocks

import "fmt"

// DataType is the storage type of a channel (cn_data_type).
type DataType uint8

const (
	UnsignedIntegerLE DataType = 0
	UnsignedIntegerBE DataType = 1
	SignedIntegerLE   DataType = 2
	SignedIntegerBE   DataType = 3
	FloatLE           DataType = 4
	FloatBE           DataType = 5
	StringLatin1      DataType = 6
	StringUtf8        DataType = 7
	StringUtf16LE     DataType = 8
	StringUtf16BE     DataType = 9
	ByteArray         DataType = 10
	MimeSample        DataType = 11
	MimeStream        DataType = 12
	CanOpenDate       DataType = 13
	CanOpenTime       DataType = 14
	ComplexLE         DataType = 15
	ComplexBE         DataType = 16
)

// IsStringLike reports whether the type decodes to text.
func (d DataType) IsStringLike() bool {
	switch d {
	case StringLatin1, StringUtf8, StringUtf16LE, StringUtf16BE:
		return true
	}

	return false
}

// IsByteLike reports whether the type decodes to a verbatim byte window.
func (d DataType) IsByteLike() bool {
	switch d {
	case ByteArray, MimeSample, MimeStream:
		return true
	}

	return false
}

// IsBigEndian reports whether the type stores its bytes big-endian.
func (d DataType) IsBigEndian() bool {
	switch d {
	case UnsignedIntegerBE, SignedIntegerBE, FloatBE, StringUtf16BE, ComplexBE:
		return true
	}

	return false
}

func (d DataType) String() string {
	switch d {
	case UnsignedIntegerLE:
		return "unsigned-le"
	case UnsignedIntegerBE:
		return "unsigned-be"
	case SignedIntegerLE:
		return "signed-le"
	case SignedIntegerBE:
		return "signed-be"
	case FloatLE:
		return "float-le"
	case FloatBE:
		return "float-be"
	case StringLatin1:
		return "string-latin1"
	case StringUtf8:
		return "string-utf8"
	case StringUtf16LE:
		return "string-utf16-le"
	case StringUtf16BE:
		return "string-utf16-be"
	case ByteArray:
		return "byte-array"
	case MimeSample:
		return "mime-sample"
	case MimeStream:
		return "mime-stream"
	case CanOpenDate:
		return "canopen-date"
	case CanOpenTime:
		return "canopen-time"
	case ComplexLE:
		return "complex-le"
	case ComplexBE:
		return "complex-be"
	}

	return fmt.Sprintf("unknown(%d)", uint8(d))
}
