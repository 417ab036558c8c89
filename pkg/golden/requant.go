package golden

const kernelRequant = "simd_requant"

// RequantParams configures the SIMD requantization pipeline.
type RequantParams struct {
	InputZP     int32
	OutputZP    int32
	Multiplier  int32
	Shift       int
	MinInt      int32
	MaxInt      int32
	DoubleRound bool
}

// Validate checks 1 <= Shift <= 64 and MinInt <= MaxInt.
func (p RequantParams) Validate() error {
	if p.Shift < 1 || p.Shift > 64 {
		return &ParamError{Kernel: kernelRequant, Param: "shift", Value: int64(p.Shift), Reason: "must be in [1, 64]"}
	}
	if p.MinInt > p.MaxInt {
		return &ParamError{Kernel: kernelRequant, Param: "min_int", Value: int64(p.MinInt), Reason: "exceeds max_int"}
	}
	return nil
}

// Apply requantizes a single value. p must be valid.
//
// The shift is split in two so that double rounding lands between the
// (shift-1) and the final 1-bit shift. Steps 3 to 5 must stay in this order.
func (p RequantParams) Apply(x int32) int32 {
	v := x - p.InputZP
	wide := int64(v) * int64(p.Multiplier)
	v = int32(wide >> uint(p.Shift-1))
	if p.DoubleRound {
		if v >= 0 {
			v++
		} else {
			v--
		}
	}
	v >>= 1
	v += p.OutputZP
	return min(max(v, p.MinInt), p.MaxInt)
}

// Requantize applies p to every element of data.
func Requantize(p RequantParams, data []int32) ([]int32, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	res := make([]int32, len(data))
	parallelFor(len(data), 1, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			res[i] = p.Apply(data[i])
		}
	})
	return res, nil
}
