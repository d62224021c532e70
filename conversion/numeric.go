package conversion

import (
	"math"

	"github.com/Knetic/govaluate"

	"github.com/dmagyar-0/mf4-go/record"
)

// f64Epsilon is the smallest distinguishable f64 increment at 1.0; a
// rational denominator at or below this magnitude counts as zero.
const f64Epsilon = 2.220446049250313e-16

func (c *Conversion) applyLinear(v record.Value) record.Value {
	raw, ok := v.AsFloat()
	if !ok {
		return v
	}
	if len(c.Values) < 2 {
		return record.FloatValue(raw)
	}

	return record.FloatValue(c.Values[0] + c.Values[1]*raw)
}

func (c *Conversion) applyRational(v record.Value) record.Value {
	raw, ok := v.AsFloat()
	if !ok {
		return v
	}
	if len(c.Values) < 6 {
		return record.FloatValue(raw)
	}

	p := c.Values
	num := p[0]*raw*raw + p[1]*raw + p[2]
	den := p[3]*raw*raw + p[4]*raw + p[5]
	if math.Abs(den) <= f64Epsilon {
		return record.FloatValue(raw)
	}

	return record.FloatValue(num / den)
}

func (c *Conversion) applyAlgebraic(v record.Value) record.Value {
	raw, ok := v.AsFloat()
	if !ok || c.Formula == "" {
		return v
	}

	if c.expr == nil {
		expr, err := govaluate.NewEvaluableExpression(c.Formula)
		if err != nil {
			return record.FloatValue(raw)
		}
		c.expr = expr
	}

	result, err := c.expr.Evaluate(map[string]any{"X": raw})
	if err != nil {
		return record.FloatValue(raw)
	}
	f, ok := result.(float64)
	if !ok {
		return record.FloatValue(raw)
	}

	return record.FloatValue(f)
}

// lookupTable performs the tabular value-to-value lookup over pairs
// [k0,v0, k1,v1, …], interpolating or picking the nearest neighbor (lower
// wins ties). Inputs outside the key range clamp to the boundary values.
func lookupTable(table []float64, raw float64, interp bool) (float64, bool) {
	if len(table) < 4 || len(table)%2 != 0 {
		return 0, false
	}
	n := len(table) / 2

	if raw <= table[0] {
		return table[1], true
	}
	if raw >= table[2*(n-1)] {
		return table[2*(n-1)+1], true
	}

	for i := 0; i < n-1; i++ {
		k0, v0 := table[2*i], table[2*i+1]
		k1, v1 := table[2*(i+1)], table[2*(i+1)+1]
		if raw < k0 || raw > k1 {
			continue
		}
		if interp {
			t := (raw - k0) / (k1 - k0)
			return v0 + t*(v1-v0), true
		}
		if k1-raw < raw-k0 {
			return v1, true
		}

		return v0, true
	}

	return 0, false
}

func (c *Conversion) applyTableLookup(v record.Value, interp bool) record.Value {
	raw, ok := v.AsFloat()
	if !ok {
		return v
	}
	phys, ok := lookupTable(c.Values, raw, interp)
	if !ok {
		return record.FloatValue(raw)
	}

	return record.FloatValue(phys)
}

func (c *Conversion) applyRangeLookup(v record.Value) record.Value {
	raw, ok := v.AsFloat()
	if !ok {
		return v
	}

	// Table is [min0,max0,phys0, …, default]: 3n+1 entries.
	t := c.Values
	if len(t) < 4 || (len(t)-1)%3 != 0 {
		return record.FloatValue(raw)
	}
	n := (len(t) - 1) / 3
	inclusiveUpper := v.IsInteger()

	for i := 0; i < n; i++ {
		min, max, phys := t[3*i], t[3*i+1], t[3*i+2]
		if raw >= min && (raw < max || (inclusiveUpper && raw == max)) {
			return record.FloatValue(phys)
		}
	}

	return record.FloatValue(t[3*n])
}
