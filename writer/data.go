package writer

import (
	"iter"
	"math"

	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/errs"
	"github.com/dmagyar-0/mf4-go/record"
)

// MaxDataBlockSize is the rollover threshold for one DT block, header
// included.
const MaxDataBlockSize = 4 * 1024 * 1024

type encoderKind uint8

const (
	encSkip encoderKind = iota
	encUint
	encInt
	encF32
	encF64
	encBytes
)

// encoder writes one channel's value into its window of the record
// buffer.
type encoder struct {
	kind   encoderKind
	offset int
	nbytes int
}

func (e encoder) encode(buf []byte, v record.Value) {
	switch {
	case e.kind == encUint && v.Kind == record.KindUnsigned:
		putUintN(buf[e.offset:], v.Uint, e.nbytes)
	case e.kind == encInt && v.Kind == record.KindSigned:
		putUintN(buf[e.offset:], uint64(v.Int), e.nbytes)
	case e.kind == encF32 && v.Kind == record.KindFloat:
		le.PutUint32(buf[e.offset:e.offset+4], math.Float32bits(float32(v.Float)))
	case e.kind == encF64 && v.Kind == record.KindFloat:
		le.PutUint64(buf[e.offset:e.offset+8], math.Float64bits(v.Float))
	case e.kind == encBytes && (v.Kind == record.KindBytes || v.Kind == record.KindMimeSample || v.Kind == record.KindMimeStream):
		window := buf[e.offset : e.offset+e.nbytes]
		for i := range window {
			window[i] = 0
		}
		copy(window, v.Bytes)
	}
}

func (e encoder) encodeUint64(buf []byte, v uint64) {
	if e.kind == encUint {
		putUintN(buf[e.offset:], v, e.nbytes)
	}
}

func putUintN(dst []byte, v uint64, n int) {
	for i := 0; i < n; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

// newEncoder selects the encoder variant for a channel layout. Channels
// the writer cannot encode (strings, big-endian storage) get a skip
// encoder and leave their window zeroed.
func newEncoder(ch *blocks.ChannelBlock, recordIDLen int) encoder {
	offset := recordIDLen + int(ch.ByteOffset)
	nbytes := int(ch.BitCount+7) / 8

	switch ch.DataType {
	case blocks.UnsignedIntegerLE:
		return encoder{kind: encUint, offset: offset, nbytes: nbytes}
	case blocks.SignedIntegerLE:
		return encoder{kind: encInt, offset: offset, nbytes: nbytes}
	case blocks.FloatLE:
		if ch.BitCount == 32 {
			return encoder{kind: encF32, offset: offset}
		}

		return encoder{kind: encF64, offset: offset}
	case blocks.ByteArray, blocks.MimeSample, blocks.MimeStream:
		return encoder{kind: encBytes, offset: offset, nbytes: nbytes}
	}

	return encoder{kind: encSkip}
}

// openDataBlock tracks the DT block currently receiving records for one
// channel group, plus the fragments already closed.
type openDataBlock struct {
	dgID           string
	startPos       uint64
	recordSize     int
	capacity       uint64 // records per fragment before rollover
	recordCount    uint64
	totalRecords   uint64
	channels       []blocks.ChannelBlock
	dtPositions    []uint64
	dtSizes        []uint64
	recordBuf      []byte
	recordTemplate []byte
	encoders       []encoder
}

// fragmentCapacity computes how many records fit into one DT fragment.
// The count is rounded down so that non-final fragments stay 8-byte
// aligned without padding; only the final fragment needs tail padding.
func fragmentCapacity(recordSize int) uint64 {
	maxRecords := uint64((MaxDataBlockSize - blocks.HeaderSize) / recordSize)

	step := uint64(8 / gcd(recordSize, 8))
	aligned := maxRecords - maxRecords%step
	if aligned == 0 {
		if maxRecords == 0 {
			return 1
		}

		return maxRecords
	}

	return aligned
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// StartDataBlock opens a DT block for the channel group under an explicit
// data group. It computes the record layout from the group's channels,
// patches the data group's data link, record ID length and the channel
// group's record byte count, and prepares per-channel encoders.
func (w *Writer) StartDataBlock(dgID, cgID string, recordIDLen uint8, channels []blocks.ChannelBlock) error {
	if _, open := w.openDTs[cgID]; open {
		return errs.Serialization("data block already open for channel group %s", cgID)
	}

	recordBytes := 0
	for i := range channels {
		ch := &channels[i]
		end := int(ch.ByteOffset) + (int(ch.BitOffset)+int(ch.BitCount)+7)/8
		if end > recordBytes {
			recordBytes = end
		}
	}
	recordSize := recordBytes + int(recordIDLen)

	dtID := w.nextID("dt")
	dtPos, err := w.writeDataBlockHeader(dtID)
	if err != nil {
		return err
	}

	if err := w.UpdateBlockLink(dgID, dgDataLinkOffset, dtID); err != nil {
		return err
	}
	if err := w.updateBlockU8(dgID, dgRecordIDOffset, recordIDLen); err != nil {
		return err
	}
	if err := w.updateBlockU32(cgID, cgSampleBytesOff, uint32(recordBytes)); err != nil {
		return err
	}

	encoders := make([]encoder, len(channels))
	for i := range channels {
		encoders[i] = newEncoder(&channels[i], int(recordIDLen))
	}

	w.openDTs[cgID] = &openDataBlock{
		dgID:           dgID,
		startPos:       dtPos,
		recordSize:     recordSize,
		capacity:       fragmentCapacity(recordSize),
		channels:       channels,
		dtPositions:    []uint64{dtPos},
		recordBuf:      make([]byte, recordSize),
		recordTemplate: make([]byte, recordSize),
		encoders:       encoders,
	}

	return nil
}

// StartDataBlockForCG opens a DT block for a channel group added through
// this writer, using its recorded data group and channel list.
func (w *Writer) StartDataBlockForCG(cgID string, recordIDLen uint8) error {
	dgID, ok := w.cgToDG[cgID]
	if !ok {
		return errs.Serialization("unknown channel group %s", cgID)
	}
	channels, ok := w.cgChannels[cgID]
	if !ok || len(channels) == 0 {
		return errs.Serialization("no channels for channel group %s", cgID)
	}

	return w.StartDataBlock(dgID, cgID, recordIDLen, channels)
}

// writeDataBlockHeader emits a DT header with a placeholder length to be
// patched when the block closes.
func (w *Writer) writeDataBlockHeader(dtID string) (uint64, error) {
	header := blocks.BlockHeader{ID: blocks.IDData, BlockLen: blocks.HeaderSize}
	headerBytes, err := header.Bytes()
	if err != nil {
		return 0, err
	}

	return w.WriteBlockWithID(headerBytes, dtID)
}

// SetRecordTemplate precomputes constant channel values for a group. The
// values slice must match the channel list; subsequent records start from
// the encoded template.
func (w *Writer) SetRecordTemplate(cgID string, values []record.Value) error {
	dt, ok := w.openDTs[cgID]
	if !ok {
		return errs.ErrNoOpenDataBlock
	}
	if len(values) != len(dt.channels) {
		return errs.Serialization("value count mismatch: got %d values for %d channels", len(values), len(dt.channels))
	}

	for i := range dt.recordTemplate {
		dt.recordTemplate[i] = 0
	}
	for i, enc := range dt.encoders {
		enc.encode(dt.recordTemplate, values[i])
	}

	return nil
}

// rollover closes the current DT fragment and opens a new one when the
// next record would push the block past MaxDataBlockSize.
func (w *Writer) rollover(dt *openDataBlock) error {
	if dt.recordCount < dt.capacity {
		return nil
	}

	size := uint64(blocks.HeaderSize) + uint64(dt.recordSize)*dt.recordCount
	if err := w.UpdateLink(dt.startPos+dtBlockLenOffset, size); err != nil {
		return err
	}
	dt.dtSizes = append(dt.dtSizes, size)
	dt.totalRecords += dt.recordCount

	dtID := w.nextID("dt")
	dtPos, err := w.writeDataBlockHeader(dtID)
	if err != nil {
		return err
	}
	dt.startPos = dtPos
	dt.recordCount = 0
	dt.dtPositions = append(dt.dtPositions, dtPos)

	return nil
}

// WriteRecord encodes one record for the channel group and appends it to
// the open DT block, rolling over to a new fragment when needed.
func (w *Writer) WriteRecord(cgID string, values []record.Value) error {
	dt, ok := w.openDTs[cgID]
	if !ok {
		return errs.ErrNoOpenDataBlock
	}
	if len(values) != len(dt.channels) {
		return errs.Serialization("value count mismatch: got %d values for %d channels", len(values), len(dt.channels))
	}
	if err := w.rollover(dt); err != nil {
		return err
	}

	copy(dt.recordBuf, dt.recordTemplate)
	for i, enc := range dt.encoders {
		enc.encode(dt.recordBuf, values[i])
	}

	if err := w.writeAll(dt.recordBuf); err != nil {
		return err
	}
	dt.recordCount++

	return nil
}

// WriteRecords appends a sequence of records, batching encoded bytes to
// reduce write calls.
func (w *Writer) WriteRecords(cgID string, records iter.Seq[[]record.Value]) error {
	dt, ok := w.openDTs[cgID]
	if !ok {
		return errs.ErrNoOpenDataBlock
	}

	buffer := make([]byte, 0, w.batchCapacity)
	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := w.writeAll(buffer); err != nil {
			return err
		}
		buffer = buffer[:0]

		return nil
	}

	for values := range records {
		if len(values) != len(dt.channels) {
			return errs.Serialization("value count mismatch: got %d values for %d channels", len(values), len(dt.channels))
		}

		if dt.recordCount >= dt.capacity {
			if err := flush(); err != nil {
				return err
			}
			if err := w.rollover(dt); err != nil {
				return err
			}
		}

		copy(dt.recordBuf, dt.recordTemplate)
		for i, enc := range dt.encoders {
			enc.encode(dt.recordBuf, values[i])
		}
		buffer = append(buffer, dt.recordBuf...)
		dt.recordCount++

		if len(buffer)+dt.recordSize > w.batchCapacity {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// WriteRecordUint64 is the fast path for groups whose channels are all
// unsigned little-endian integers.
func (w *Writer) WriteRecordUint64(cgID string, values []uint64) error {
	dt, ok := w.openDTs[cgID]
	if !ok {
		return errs.ErrNoOpenDataBlock
	}
	if len(values) != len(dt.encoders) {
		return errs.Serialization("value count mismatch: got %d values for %d channels", len(values), len(dt.encoders))
	}
	for _, enc := range dt.encoders {
		if enc.kind != encUint {
			return errs.Serialization("channel types not unsigned for channel group %s", cgID)
		}
	}
	if err := w.rollover(dt); err != nil {
		return err
	}

	copy(dt.recordBuf, dt.recordTemplate)
	for i, enc := range dt.encoders {
		enc.encodeUint64(dt.recordBuf, values[i])
	}
	if err := w.writeAll(dt.recordBuf); err != nil {
		return err
	}
	dt.recordCount++

	return nil
}

// WriteRecordsUint64 is the batched fast path for uniform unsigned
// integer channel groups.
func (w *Writer) WriteRecordsUint64(cgID string, records iter.Seq[[]uint64]) error {
	dt, ok := w.openDTs[cgID]
	if !ok {
		return errs.ErrNoOpenDataBlock
	}
	for _, enc := range dt.encoders {
		if enc.kind != encUint {
			return errs.Serialization("channel types not unsigned for channel group %s", cgID)
		}
	}

	buffer := make([]byte, 0, w.batchCapacity)
	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := w.writeAll(buffer); err != nil {
			return err
		}
		buffer = buffer[:0]

		return nil
	}

	for values := range records {
		if len(values) != len(dt.encoders) {
			return errs.Serialization("value count mismatch: got %d values for %d channels", len(values), len(dt.encoders))
		}

		if dt.recordCount >= dt.capacity {
			if err := flush(); err != nil {
				return err
			}
			if err := w.rollover(dt); err != nil {
				return err
			}
		}

		copy(dt.recordBuf, dt.recordTemplate)
		for i, enc := range dt.encoders {
			enc.encodeUint64(dt.recordBuf, values[i])
		}
		buffer = append(buffer, dt.recordBuf...)
		dt.recordCount++

		if len(buffer)+dt.recordSize > w.batchCapacity {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// FinishDataBlock closes the open DT block for the channel group: the
// final fragment's length is patched, the channel group's cycle count is
// written, and when more than one fragment was produced a DL block over
// all fragments is emitted and the data group's data link re-patched to
// it.
func (w *Writer) FinishDataBlock(cgID string) error {
	dt, ok := w.openDTs[cgID]
	if !ok {
		return errs.ErrNoOpenDataBlock
	}
	delete(w.openDTs, cgID)

	// The final fragment is zero-padded to the 8-byte boundary and the
	// padding counts into its block length. Readers drop the padding by
	// capping records at the cycle count.
	size := uint64(blocks.HeaderSize) + uint64(dt.recordSize)*dt.recordCount
	if pad := (8 - size%8) % 8; pad != 0 {
		if err := w.writeAll(make([]byte, pad)); err != nil {
			return err
		}
		size += pad
	}
	if err := w.UpdateLink(dt.startPos+dtBlockLenOffset, size); err != nil {
		return err
	}
	dt.dtSizes = append(dt.dtSizes, size)
	dt.totalRecords += dt.recordCount

	if err := w.updateBlockU64(cgID, cgCycleOffset, dt.totalRecords); err != nil {
		return err
	}

	if len(dt.dtPositions) > 1 {
		dlID := w.nextID("dl")
		uniform := true
		for _, s := range dt.dtSizes[1:] {
			if s != dt.dtSizes[0] {
				uniform = false
				break
			}
		}
		var dl *blocks.DataListBlock
		if uniform {
			dl = blocks.NewEqualLengthDataList(dt.dtPositions, dt.dtSizes[0])
		} else {
			offsets := make([]uint64, len(dt.dtSizes))
			for i := 1; i < len(dt.dtSizes); i++ {
				offsets[i] = offsets[i-1] + dt.dtSizes[i-1] - blocks.HeaderSize
			}
			dl = blocks.NewOffsetDataList(dt.dtPositions, offsets)
		}
		dlBytes, err := dl.Bytes()
		if err != nil {
			return err
		}
		if _, err := w.WriteBlockWithID(dlBytes, dlID); err != nil {
			return err
		}
		if err := w.UpdateBlockLink(dt.dgID, dgDataLinkOffset, dlID); err != nil {
			return err
		}
	}

	return nil
}
