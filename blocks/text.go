package blocks

import (
	"strings"

	"github.com/dmagyar-0/mf4-go/errs"
)

// TextBlock is a NUL-terminated UTF-8 string block (##TX), zero-padded to
// an 8-byte boundary.
type TextBlock struct {
	Header BlockHeader
	Text   string
}

// NewTextBlock returns a text block for the given string with a header
// sized to the padded payload.
func NewTextBlock(text string) *TextBlock {
	payload := alignedLen(len(text) + 1) // at least one NUL terminator
	return &TextBlock{
		Header: BlockHeader{ID: IDText, BlockLen: uint64(HeaderSize + payload)},
		Text:   text,
	}
}

// Parse reads a TextBlock beginning at buf. Trailing NUL padding is
// stripped from the text.
func (b *TextBlock) Parse(buf []byte) error {
	h, err := ParseBlockHeader(buf, IDText)
	if err != nil {
		return err
	}
	if uint64(len(buf)) < h.BlockLen {
		return errs.TooShort(len(buf), int(h.BlockLen))
	}

	b.Header = h
	b.Text = strings.TrimRight(string(buf[HeaderSize:h.BlockLen]), "\x00")

	return nil
}

// Bytes serializes the TextBlock, recomputing the padded length and
// enforcing agreement with the declared header.
func (b *TextBlock) Bytes() ([]byte, error) {
	size := HeaderSize + alignedLen(len(b.Text)+1)
	if b.Header.ID != IDText || b.Header.BlockLen != uint64(size) {
		return nil, errs.Serialization("text block expected id=%s len=%d, got id=%s len=%d",
			IDText, size, b.Header.ID, b.Header.BlockLen)
	}

	buf, err := b.Header.Bytes()
	if err != nil {
		return nil, err
	}
	buf = append(buf, b.Text...)
	for len(buf) < size {
		buf = append(buf, 0)
	}

	return buf, nil
}

// MetadataBlock is an XML metadata block (##MD) with the same layout as a
// text block.
type MetadataBlock struct {
	Header BlockHeader
	XML    string
}

// Parse reads a MetadataBlock beginning at buf.
func (b *MetadataBlock) Parse(buf []byte) error {
	h, err := ParseBlockHeader(buf, IDMetadata)
	if err != nil {
		return err
	}
	if uint64(len(buf)) < h.BlockLen {
		return errs.TooShort(len(buf), int(h.BlockLen))
	}

	b.Header = h
	b.XML = strings.TrimRight(string(buf[HeaderSize:h.BlockLen]), "\x00")

	return nil
}

// ReadString resolves a ##TX or ##MD block at addr and returns its text.
// A zero addr returns ok=false without error.
func ReadString(file []byte, addr uint64) (string, bool, error) {
	if addr == 0 {
		return "", false, nil
	}
	off := int(addr)
	if off+HeaderSize > len(file) {
		return "", false, errs.TooShort(len(file), off+HeaderSize)
	}

	h, err := ParseBlockHeader(file[off:], IDText, IDMetadata)
	if err != nil {
		return "", false, err
	}
	end := off + int(h.BlockLen)
	if end > len(file) {
		return "", false, errs.TooShort(len(file), end)
	}

	return strings.TrimRight(string(file[off+HeaderSize:end]), "\x00"), true, nil
}
