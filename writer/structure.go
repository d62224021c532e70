package writer

import (
	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/errs"
)

// Link field offsets within their blocks.
const (
	hdFirstDGOffset  = 24
	dgNextDGOffset   = 24
	dgFirstCGOffset  = 32
	dgDataLinkOffset = 40
	dgRecordIDOffset = 56
	cgNextCGOffset   = 24
	cgFirstCNOffset  = 32
	cgCycleOffset    = 80
	cgSampleBytesOff = 96
	cnNextCNOffset   = 24
	cnNameLinkOffset = 40
	cnConversionOff  = 56
	cnChannelTypeOff = 88
	cnSyncTypeOffset = 89
	dtBlockLenOffset = 8
)

// Channel is the writer-side description of a channel: the on-disk block
// plus the name to emit as a text block.
type Channel struct {
	blocks.ChannelBlock
	Name string
}

// InitFile emits the identification and header blocks. It must be the
// first operation on a fresh Writer.
func (w *Writer) InitFile() (idPos, hdPos uint64, err error) {
	idBytes, err := blocks.NewIdentificationBlock().Bytes()
	if err != nil {
		return 0, 0, err
	}
	idPos, err = w.WriteBlockWithID(idBytes, "id_block")
	if err != nil {
		return 0, 0, err
	}

	hdBytes, err := blocks.NewHeaderBlock().Bytes()
	if err != nil {
		return 0, 0, err
	}
	hdPos, err = w.WriteBlockWithID(hdBytes, "hd_block")
	if err != nil {
		return 0, 0, err
	}

	return idPos, hdPos, nil
}

// AddDataGroup emits a data group block and links it from the next link
// of prev. With prev == "" it is linked from the header block when it is
// the first data group, and after the last added data group otherwise.
func (w *Writer) AddDataGroup(prev string) (string, error) {
	dgID := w.nextID("dg")

	dgBytes, err := blocks.NewDataGroupBlock().Bytes()
	if err != nil {
		return "", err
	}
	if _, err := w.WriteBlockWithID(dgBytes, dgID); err != nil {
		return "", err
	}

	if prev == "" && w.lastDG == "" {
		err = w.UpdateBlockLink("hd_block", hdFirstDGOffset, dgID)
	} else {
		link := prev
		if link == "" {
			link = w.lastDG
		}
		err = w.UpdateBlockLink(link, dgNextDGOffset, dgID)
	}
	if err != nil {
		return "", err
	}
	w.lastDG = dgID

	return dgID, nil
}

// AddChannelGroupToDG emits a channel group under an explicit data group.
// With prev == "" it becomes the group's first channel group; otherwise it
// chains after prev. The customize callback fills metadata before the
// block is written.
func (w *Writer) AddChannelGroupToDG(dgID, prev string, customize func(*blocks.ChannelGroupBlock)) (string, error) {
	if _, ok := w.positions[dgID]; !ok {
		return "", &errs.BlockLinkError{Name: dgID, Direction: "source"}
	}

	cgID := w.nextID("cg")
	cg := blocks.NewChannelGroupBlock()
	if customize != nil {
		customize(cg)
	}

	cgBytes, err := cg.Bytes()
	if err != nil {
		return "", err
	}
	if _, err := w.WriteBlockWithID(cgBytes, cgID); err != nil {
		return "", err
	}

	if prev == "" {
		err = w.UpdateBlockLink(dgID, dgFirstCGOffset, cgID)
	} else {
		err = w.UpdateBlockLink(prev, cgNextCGOffset, cgID)
	}
	if err != nil {
		return "", err
	}

	w.cgToDG[cgID] = dgID

	return cgID, nil
}

// AddChannelGroup is the convenience form without an explicit data group:
// with prev == "" a fresh data group is created for the new channel
// group, otherwise the channel group chains after prev inside prev's data
// group.
func (w *Writer) AddChannelGroup(prev string, customize func(*blocks.ChannelGroupBlock)) (string, error) {
	var dgID string
	var err error
	if prev == "" {
		dgID, err = w.AddDataGroup("")
		if err != nil {
			return "", err
		}
	} else {
		var ok bool
		dgID, ok = w.cgToDG[prev]
		if !ok {
			return "", &errs.BlockLinkError{Name: prev, Direction: "source"}
		}
	}

	return w.AddChannelGroupToDG(dgID, prev, customize)
}

// AddChannel emits a channel under the given channel group. With
// prev == "" it becomes the group's first channel; otherwise it chains
// after prev. When the customize callback sets a name, a text block is
// emitted and the name link patched.
func (w *Writer) AddChannel(cgID, prev string, customize func(*Channel)) (string, error) {
	if _, ok := w.positions[cgID]; !ok {
		return "", &errs.BlockLinkError{Name: cgID, Direction: "source"}
	}

	cnID := w.nextID("cn")
	ch := Channel{ChannelBlock: *blocks.NewChannelBlock()}
	if customize != nil {
		customize(&ch)
	}

	cnBytes, err := ch.ChannelBlock.Bytes()
	if err != nil {
		return "", err
	}
	cnPos, err := w.WriteBlockWithID(cnBytes, cnID)
	if err != nil {
		return "", err
	}

	if ch.Name != "" {
		txID := "tx_name_" + cnID
		txBytes, err := blocks.NewTextBlock(ch.Name).Bytes()
		if err != nil {
			return "", err
		}
		txPos, err := w.WriteBlockWithID(txBytes, txID)
		if err != nil {
			return "", err
		}
		if err := w.UpdateLink(cnPos+cnNameLinkOffset, txPos); err != nil {
			return "", err
		}
		ch.ChannelBlock.NameAddr = txPos
	}

	if prev == "" {
		err = w.UpdateBlockLink(cgID, cgFirstCNOffset, cnID)
	} else {
		err = w.UpdateBlockLink(prev, cnNextCNOffset, cnID)
	}
	if err != nil {
		return "", err
	}

	w.channelCG[cnID] = channelRef{cgID: cgID, index: len(w.cgChannels[cgID])}
	w.cgChannels[cgID] = append(w.cgChannels[cgID], ch.ChannelBlock)

	return cnID, nil
}

// channelRef locates a channel inside the writer's per-group channel
// copies.
type channelRef struct {
	cgID  string
	index int
}

// SetTimeChannel marks a previously added channel as the time master of
// its group (channel type master, sync type time).
func (w *Writer) SetTimeChannel(cnID string) error {
	ref, ok := w.channelCG[cnID]
	if !ok {
		return &errs.BlockLinkError{Name: cnID, Direction: "source"}
	}
	if err := w.updateBlockU8(cnID, cnChannelTypeOff, blocks.ChannelTypeMaster); err != nil {
		return err
	}
	if err := w.updateBlockU8(cnID, cnSyncTypeOffset, blocks.SyncTypeTime); err != nil {
		return err
	}

	// Keep the writer's channel copy in sync for encoder selection.
	chs := w.cgChannels[ref.cgID]
	chs[ref.index].ChannelType = blocks.ChannelTypeMaster
	chs[ref.index].SyncType = blocks.SyncTypeTime

	return nil
}

// ValueText is one entry of a value-to-text conversion table.
type ValueText struct {
	Value float64
	Text  string
}

// AddValueToTextConversion emits the referenced text blocks, then a
// value-to-text CCBLOCK pointing at them with the final reference being
// the default text. With a non-empty cnID the channel's conversion link
// is patched to the new block.
func (w *Writer) AddValueToTextConversion(table []ValueText, defaultText string, cnID string) (string, error) {
	ccID := w.nextID("cc")

	refs := make([]uint64, 0, len(table)+1)
	vals := make([]float64, 0, len(table))
	for _, entry := range table {
		txBytes, err := blocks.NewTextBlock(entry.Text).Bytes()
		if err != nil {
			return "", err
		}
		pos, err := w.WriteBlock(txBytes)
		if err != nil {
			return "", err
		}
		refs = append(refs, pos)
		vals = append(vals, entry.Value)
	}

	defBytes, err := blocks.NewTextBlock(defaultText).Bytes()
	if err != nil {
		return "", err
	}
	defPos, err := w.WriteBlock(defBytes)
	if err != nil {
		return "", err
	}
	refs = append(refs, defPos)

	cc := blocks.NewConversionBlock(blocks.ConversionValueToText, len(refs), len(vals))
	copy(cc.CCRef, refs)
	copy(cc.CCVal, vals)

	ccBytes, err := cc.Bytes()
	if err != nil {
		return "", err
	}
	ccPos, err := w.WriteBlockWithID(ccBytes, ccID)
	if err != nil {
		return "", err
	}

	if cnID != "" {
		cnPos, ok := w.positions[cnID]
		if !ok {
			return "", &errs.BlockLinkError{Name: cnID, Direction: "target"}
		}
		if err := w.UpdateLink(cnPos+cnConversionOff, ccPos); err != nil {
			return "", err
		}
	}

	return ccID, nil
}
