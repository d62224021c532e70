package mdf

import "github.com/dmagyar-0/mf4-go/blocks"

// ChannelGroup is a read-only wrapper over one channel group, borrowing
// from the file's memory map.
type ChannelGroup struct {
	dg   *RawDataGroup
	cg   *RawChannelGroup
	file []byte
}

// Name returns the acquisition name, or "" when unset.
func (g ChannelGroup) Name() (string, error) {
	name, _, err := blocks.ReadString(g.file, g.cg.Block.AcqNameAddr)

	return name, err
}

// Comment returns the group comment, or "" when unset.
func (g ChannelGroup) Comment() (string, error) {
	comment, _, err := blocks.ReadString(g.file, g.cg.Block.CommentAddr)

	return comment, err
}

// Source returns the acquisition source information, or nil when unset.
func (g ChannelGroup) Source() (*SourceInfo, error) {
	return ReadSourceInfo(g.file, g.cg.Block.AcqSourceAddr)
}

// CycleCount returns the number of records recorded for this group.
func (g ChannelGroup) CycleCount() uint64 {
	return g.cg.Block.CycleCount
}

// Channels builds the high-level channel wrappers of this group.
func (g ChannelGroup) Channels() []Channel {
	out := make([]Channel, 0, len(g.cg.Channels))
	for _, raw := range g.cg.Channels {
		out = append(out, Channel{raw: raw, dg: g.dg, cg: g.cg, file: g.file})
	}

	return out
}

// RawDataGroup exposes the parsed data group for collaborating packages.
func (g ChannelGroup) RawDataGroup() *RawDataGroup { return g.dg }

// RawChannelGroup exposes the parsed channel group for collaborating
// packages.
func (g ChannelGroup) RawChannelGroup() *RawChannelGroup { return g.cg }
