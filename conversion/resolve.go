package conversion

import (
	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/errs"
)

// Resolve parses the CCBLOCK at addr and eagerly resolves its dependency
// graph: referenced text blocks are copied into the tree, nested
// conversion blocks are resolved recursively and the algebraic formula is
// cached. A zero addr resolves to nil.
//
// Chains deeper than MaxDepth fail with ConversionDepthError; a reference
// cycle fails with ConversionCycleError.
func Resolve(file []byte, addr uint64) (*Conversion, error) {
	if addr == 0 {
		return nil, nil
	}

	r := &resolver{file: file, visiting: make(map[uint64]bool)}

	return r.resolve(addr, 0)
}

// ResolveBlock resolves an already-parsed block located at addr.
func ResolveBlock(file []byte, block *blocks.ConversionBlock, addr uint64) (*Conversion, error) {
	r := &resolver{file: file, visiting: make(map[uint64]bool)}
	r.visiting[addr] = true

	return r.build(block, 1)
}

type resolver struct {
	file     []byte
	visiting map[uint64]bool
}

func (r *resolver) resolve(addr uint64, depth int) (*Conversion, error) {
	if depth >= MaxDepth {
		return nil, &errs.ConversionDepthError{MaxDepth: MaxDepth}
	}
	if r.visiting[addr] {
		return nil, &errs.ConversionCycleError{Address: addr}
	}

	off := int(addr)
	if off+blocks.HeaderSize > len(r.file) {
		return nil, errs.TooShort(len(r.file), off+blocks.HeaderSize)
	}

	var block blocks.ConversionBlock
	if err := block.Parse(r.file[off:]); err != nil {
		return nil, err
	}

	r.visiting[addr] = true
	defer delete(r.visiting, addr)

	return r.build(&block, depth+1)
}

func (r *resolver) build(block *blocks.ConversionBlock, depth int) (*Conversion, error) {
	c := &Conversion{
		Type:   block.Type,
		Values: block.CCVal,
		Links:  block.CCRef,
	}

	if name, ok, err := blocks.ReadString(r.file, block.NameAddr); err == nil && ok {
		c.Name = name
	}

	if block.Type == blocks.ConversionAlgebraic && len(block.CCRef) > 0 {
		if formula, ok, err := blocks.ReadString(r.file, block.CCRef[0]); err == nil && ok {
			c.Formula = formula
		}
	}

	for i, link := range block.CCRef {
		if link == 0 {
			continue
		}
		off := int(link)
		if off+blocks.HeaderSize > len(r.file) {
			continue
		}

		switch blocks.PeekID(r.file, link) {
		case blocks.IDText, blocks.IDMetadata:
			if txt, ok, err := blocks.ReadString(r.file, link); err == nil && ok {
				if c.Texts == nil {
					c.Texts = make(map[int]string)
				}
				c.Texts[i] = txt
			}
		case blocks.IDConversion:
			nested, err := r.resolve(link, depth)
			if err != nil {
				return nil, err
			}
			if c.Nested == nil {
				c.Nested = make(map[int]*Conversion)
			}
			c.Nested[i] = nested
		}
	}

	return c, nil
}
