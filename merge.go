package mf4

import (
	"fmt"
	"strings"

	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/internal/hash"
	"github.com/dmagyar-0/mf4-go/mdf"
	"github.com/dmagyar-0/mf4-go/record"
	"github.com/dmagyar-0/mf4-go/writer"
)

// channelMeta is the layout identity of one channel inside a group
// signature.
type channelMeta struct {
	name        string
	dataType    blocks.DataType
	bitOffset   uint8
	byteOffset  uint32
	bitCount    uint32
	channelType uint8
}

type groupMeta struct {
	recordIDLen uint8
	channels    []channelMeta
}

// signature keys the layout for fast matching; equal signatures are
// confirmed by full layout comparison.
func (m groupMeta) signature() uint64 {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d|%d", m.recordIDLen, len(m.channels))
	for _, ch := range m.channels {
		fmt.Fprintf(&sb, "|%s;%d;%d;%d;%d;%d",
			ch.name, ch.dataType, ch.bitOffset, ch.byteOffset, ch.bitCount, ch.channelType)
	}

	return hash.ID(sb.String())
}

func (m groupMeta) equal(other groupMeta) bool {
	if m.recordIDLen != other.recordIDLen || len(m.channels) != len(other.channels) {
		return false
	}
	for i := range m.channels {
		if m.channels[i] != other.channels[i] {
			return false
		}
	}

	return true
}

type mergedGroup struct {
	meta groupMeta
	sig  uint64
	data [][]record.Value // per channel
}

// Merge combines two MDF files into outputPath. Channel groups with an
// identical layout signature are concatenated (all records of the first
// file, then all of the second); groups without a match are appended as
// new channel groups.
func Merge(outputPath, firstPath, secondPath string) error {
	groups, err := collectGroups(firstPath)
	if err != nil {
		return err
	}
	otherGroups, err := collectGroups(secondPath)
	if err != nil {
		return err
	}

	for _, og := range otherGroups {
		merged := false
		for _, g := range groups {
			if g.sig == og.sig && g.meta.equal(og.meta) {
				for i := range g.data {
					g.data[i] = append(g.data[i], og.data[i]...)
				}
				merged = true
				break
			}
		}
		if !merged {
			groups = append(groups, og)
		}
	}

	return writeGroups(outputPath, groups)
}

func collectGroups(path string) ([]*mergedGroup, error) {
	f, err := mdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var groups []*mergedGroup
	for _, dg := range f.DataGroups {
		recordIDLen := dg.Block.RecordIDLen
		for _, cg := range dg.ChannelGroups {
			meta := groupMeta{recordIDLen: recordIDLen}
			for _, ch := range cg.Channels {
				name, _, err := blocks.ReadString(f.Data(), ch.Block.NameAddr)
				if err != nil {
					return nil, err
				}
				meta.channels = append(meta.channels, channelMeta{
					name:        name,
					dataType:    ch.Block.DataType,
					bitOffset:   ch.Block.BitOffset,
					byteOffset:  ch.Block.ByteOffset,
					bitCount:    ch.Block.BitCount,
					channelType: ch.Block.ChannelType,
				})
			}

			data := make([][]record.Value, len(cg.Channels))
			for i, ch := range cg.Channels {
				for rec, err := range ch.Records(dg, cg, f.Data()) {
					if err != nil {
						return nil, err
					}
					v, ok := record.Decode(rec, int(recordIDLen), ch.Block)
					if !ok {
						v = record.Unknown
					}
					data[i] = append(data[i], v)
				}
			}

			groups = append(groups, &mergedGroup{meta: meta, sig: meta.signature(), data: data})
		}
	}

	return groups, nil
}

func writeGroups(outputPath string, groups []*mergedGroup) error {
	w, err := writer.New(outputPath)
	if err != nil {
		return err
	}
	if _, _, err := w.InitFile(); err != nil {
		return err
	}

	for _, group := range groups {
		cgID, err := w.AddChannelGroup("", nil)
		if err != nil {
			return err
		}

		prevCN := ""
		for _, meta := range group.meta.channels {
			ch := meta
			cnID, err := w.AddChannel(cgID, prevCN, func(c *writer.Channel) {
				c.ChannelType = ch.channelType
				c.DataType = ch.dataType
				c.BitOffset = ch.bitOffset
				c.ByteOffset = ch.byteOffset
				c.BitCount = ch.bitCount
				c.Name = ch.name
			})
			if err != nil {
				return err
			}
			prevCN = cnID
		}

		if len(group.meta.channels) == 0 {
			continue
		}
		if err := w.StartDataBlockForCG(cgID, group.meta.recordIDLen); err != nil {
			return err
		}

		recordCount := 0
		if len(group.data) > 0 {
			recordCount = len(group.data[0])
		}
		values := make([]record.Value, len(group.data))
		for i := 0; i < recordCount; i++ {
			for c := range group.data {
				values[c] = group.data[c][i]
			}
			if err := w.WriteRecord(cgID, values); err != nil {
				return err
			}
		}

		if err := w.FinishDataBlock(cgID); err != nil {
			return err
		}
	}

	return w.Finalize()
}
