package mf4

import (
	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/mdf"
	"github.com/dmagyar-0/mf4-go/record"
	"github.com/dmagyar-0/mf4-go/writer"
)

// timeEpsilon is the f64 machine epsilon: a master value that lies outside
// the window by no more than this still counts as inside. It covers only
// last-bit f64 rounding, not the much larger error of an f32 store.
const timeEpsilon = 2.220446049250313e-16

// CutByTime writes a copy of the file at inputPath to outputPath keeping
// only the records whose master time lies within [startTime, endTime].
//
// Times are expressed in the unit of each group's time master channel
// (channel type master, sync type time), after its conversion. Channel
// groups without a master are copied wholesale.
func CutByTime(inputPath, outputPath string, startTime, endTime float64) error {
	src, err := mdf.Open(inputPath)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := writer.New(outputPath)
	if err != nil {
		return err
	}
	if _, _, err := w.InitFile(); err != nil {
		return err
	}

	for _, dg := range src.DataGroups {
		for _, cg := range dg.ChannelGroups {
			if err := cutGroup(src, w, dg, cg, startTime, endTime); err != nil {
				return err
			}
		}
	}

	return w.Finalize()
}

func cutGroup(src *mdf.File, w *writer.Writer, dg *mdf.RawDataGroup, cg *mdf.RawChannelGroup, startTime, endTime float64) error {
	cgID, err := w.AddChannelGroup("", nil)
	if err != nil {
		return err
	}

	prevCN := ""
	for _, ch := range cg.Channels {
		name, _, err := blocks.ReadString(src.Data(), ch.Block.NameAddr)
		if err != nil {
			return err
		}
		block := ch.Block
		cnID, err := w.AddChannel(cgID, prevCN, func(c *writer.Channel) {
			c.ChannelType = block.ChannelType
			c.SyncType = block.SyncType
			c.DataType = block.DataType
			c.BitOffset = block.BitOffset
			c.ByteOffset = block.ByteOffset
			c.BitCount = block.BitCount
			c.Name = name
		})
		if err != nil {
			return err
		}
		prevCN = cnID
	}

	if len(cg.Channels) == 0 {
		return nil
	}
	if err := w.StartDataBlockForCG(cgID, dg.Block.RecordIDLen); err != nil {
		return err
	}

	masterIdx := -1
	for i, ch := range cg.Channels {
		if ch.Block.IsMaster() {
			masterIdx = i
			break
		}
	}

	recordIDLen := int(dg.Block.RecordIDLen)
	for rec, err := range cg.Channels[0].Records(dg, cg, src.Data()) {
		if err != nil {
			return err
		}

		if masterIdx >= 0 {
			master := cg.Channels[masterIdx]
			v, ok := record.Decode(rec, recordIDLen, master.Block)
			if !ok {
				continue
			}
			t, ok := master.Conversion.Apply(v).AsFloat()
			if !ok {
				continue
			}
			if startTime-t > timeEpsilon {
				continue
			}
			if t-endTime > timeEpsilon {
				break
			}
		}

		values := make([]record.Value, len(cg.Channels))
		for i, ch := range cg.Channels {
			v, ok := record.Decode(rec, recordIDLen, ch.Block)
			if !ok {
				v = record.Unknown
			}
			values[i] = v
		}
		if err := w.WriteRecord(cgID, values); err != nil {
			return err
		}
	}

	return w.FinishDataBlock(cgID)
}
