package conversion

import (
	"math"
	"strings"

	"github.com/dmagyar-0/mf4-go/record"
)

// refResult resolves reference index idx against the resolved maps: a text
// reference yields its string, a nested conversion is applied to v.
// A zero or unresolved link yields record.Unknown.
func (c *Conversion) refResult(idx int, v record.Value) record.Value {
	if idx >= len(c.Links) || c.Links[idx] == 0 {
		return record.Unknown
	}
	if txt, ok := c.Texts[idx]; ok {
		return record.StringValue(txt)
	}
	if nested, ok := c.Nested[idx]; ok {
		return nested.Apply(v)
	}

	return record.Unknown
}

func (c *Conversion) applyValueToText(v record.Value) record.Value {
	raw, ok := v.AsFloat()
	if !ok {
		return v
	}

	idx := len(c.Values) // default reference
	for i, key := range c.Values {
		if key == raw {
			idx = i
			break
		}
	}

	return c.refResult(idx, v)
}

// rangeIndex returns the first i with raw inside [min_i, max_i], or n (the
// default index) when no range matches, or -1 when the table has an odd
// number of entries. The upper bound is inclusive for integer inputs and
// exclusive for floats.
func rangeIndex(table []float64, raw float64, inclusiveUpper bool) int {
	if len(table)%2 != 0 {
		return -1
	}
	n := len(table) / 2
	for i := 0; i < n; i++ {
		min, max := table[2*i], table[2*i+1]
		if raw >= min && (raw < max || (inclusiveUpper && raw == max)) {
			return i
		}
	}

	return n
}

func (c *Conversion) applyRangeToText(v record.Value) record.Value {
	raw, ok := v.AsFloat()
	if !ok {
		return v
	}
	idx := rangeIndex(c.Values, raw, v.IsInteger())
	if idx < 0 {
		return v
	}

	return c.refResult(idx, v)
}

func (c *Conversion) applyTextToValue(v record.Value) record.Value {
	if v.Kind != record.KindString {
		return v
	}

	n := len(c.Links)
	for i := 0; i < n; i++ {
		key, ok := c.Texts[i]
		if !ok || key != v.Str {
			continue
		}
		if i < len(c.Values) {
			return record.FloatValue(c.Values[i])
		}

		return record.Unknown
	}

	if len(c.Values) > n {
		return record.FloatValue(c.Values[n])
	}

	return record.Unknown
}

func (c *Conversion) applyTextToText(v record.Value) record.Value {
	if v.Kind != record.KindString {
		return v
	}
	input := v.Str

	pairs := 0
	if len(c.Links) > 0 {
		pairs = (len(c.Links) - 1) / 2
	}
	for i := 0; i < pairs; i++ {
		key, ok := c.Texts[2*i]
		if !ok || key != input {
			continue
		}
		if c.Links[2*i+1] == 0 {
			return record.StringValue(input)
		}
		if out, ok := c.Texts[2*i+1]; ok {
			return record.StringValue(out)
		}

		return record.StringValue(input)
	}

	// Unmatched input falls through to the default reference; a null
	// default means identity.
	defaultIdx := 2 * pairs
	if defaultIdx >= len(c.Links) || c.Links[defaultIdx] == 0 {
		return record.StringValue(input)
	}
	if out, ok := c.Texts[defaultIdx]; ok {
		return record.StringValue(out)
	}

	return record.StringValue(input)
}

func (c *Conversion) applyBitfieldText(v record.Value) record.Value {
	var raw uint64
	switch v.Kind {
	case record.KindUnsigned:
		raw = v.Uint
	case record.KindSigned:
		raw = uint64(v.Int)
	default:
		return v
	}

	var parts []string
	for i, link := range c.Links {
		if i >= len(c.Values) {
			break
		}
		// Masks are UINT64 bit patterns stashed in the REAL table.
		mask := math.Float64bits(c.Values[i])
		if link == 0 {
			continue
		}
		nested, ok := c.Nested[i]
		if !ok {
			continue
		}
		out := nested.Apply(record.UnsignedValue(raw & mask))
		if out.Kind != record.KindString {
			continue
		}
		if nested.Name != "" {
			parts = append(parts, nested.Name+" = "+out.Str)
		} else {
			parts = append(parts, out.Str)
		}
	}

	return record.StringValue(strings.Join(parts, "|"))
}
