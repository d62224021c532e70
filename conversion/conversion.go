// Package conversion implements the MDF conversion engine: eager
// resolution of a CCBLOCK's dependency graph into a self-contained tree,
// and evaluation of that tree against decoded channel values.
//
// Resolution reads every referenced text block and nested conversion once,
// so evaluation never touches the file buffer and a resolved tree can be
// serialized into an index catalog. Structural faults (chains deeper than
// MaxDepth, reference cycles) surface as distinct errors at resolution
// time; evaluation itself is best-effort and falls back to the raw input
// on malformed tables.
package conversion

import (
	"github.com/Knetic/govaluate"

	"github.com/dmagyar-0/mf4-go/blocks"
	"github.com/dmagyar-0/mf4-go/record"
)

// MaxDepth bounds the nesting of conversion chains.
const MaxDepth = 64

// Conversion is a fully resolved conversion tree. It carries copies of all
// referenced strings and nested conversions and is serializable as plain
// data.
type Conversion struct {
	Type    blocks.ConversionType `yaml:"type"`
	Name    string                `yaml:"name,omitempty"`
	Values  []float64             `yaml:"values,omitempty"`
	Links   []uint64              `yaml:"links,omitempty"`
	Formula string                `yaml:"formula,omitempty"`
	Texts   map[int]string        `yaml:"texts,omitempty"`
	Nested  map[int]*Conversion   `yaml:"nested,omitempty"`

	expr *govaluate.EvaluableExpression
}

// Apply evaluates the conversion against a decoded value. The output type
// may differ from the input type (text-table families produce strings).
// Malformed parameter tables fall back to the raw input; a missing default
// reference yields record.Unknown where the family defines one.
func (c *Conversion) Apply(v record.Value) record.Value {
	if c == nil {
		return v
	}

	switch c.Type {
	case blocks.ConversionIdentity:
		return v
	case blocks.ConversionLinear:
		return c.applyLinear(v)
	case blocks.ConversionRational:
		return c.applyRational(v)
	case blocks.ConversionAlgebraic:
		return c.applyAlgebraic(v)
	case blocks.ConversionTableLookupInterp:
		return c.applyTableLookup(v, true)
	case blocks.ConversionTableLookupNoInterp:
		return c.applyTableLookup(v, false)
	case blocks.ConversionRangeLookup:
		return c.applyRangeLookup(v)
	case blocks.ConversionValueToText:
		return c.applyValueToText(v)
	case blocks.ConversionRangeToText:
		return c.applyRangeToText(v)
	case blocks.ConversionTextToValue:
		return c.applyTextToValue(v)
	case blocks.ConversionTextToText:
		return c.applyTextToText(v)
	case blocks.ConversionBitfieldText:
		return c.applyBitfieldText(v)
	}

	return v
}
