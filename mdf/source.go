package mdf

import (
	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/errs"
)

// SourceInfo is the human-readable view of a source block: the source
// name, path and comment with their text links resolved.
type SourceInfo struct {
	Name    string
	Path    string
	Comment string
}

// ReadSourceInfo parses the SIBLOCK at addr and resolves its strings.
// A zero addr returns nil without error.
func ReadSourceInfo(file []byte, addr uint64) (*SourceInfo, error) {
	if addr == 0 {
		return nil, nil
	}
	if int(addr)+blocks.SourceBlockSize > len(file) {
		return nil, errs.TooShort(len(file), int(addr)+blocks.SourceBlockSize)
	}

	var sb blocks.SourceBlock
	if err := sb.Parse(file[addr:]); err != nil {
		return nil, err
	}

	info := &SourceInfo{}
	var err error
	if info.Name, _, err = blocks.ReadString(file, sb.NameAddr); err != nil {
		return nil, err
	}
	if info.Path, _, err = blocks.ReadString(file, sb.PathAddr); err != nil {
		return nil, err
	}
	if info.Comment, _, err = blocks.ReadString(file, sb.CommentAddr); err != nil {
		return nil, err
	}

	return info, nil
}
