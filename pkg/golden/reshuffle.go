package golden

import "math"

const kernelReshuffle = "data_reshuffler"

// ReshuffleParams is the stride descriptor of the data reshuffler.
//
// The total bounds are K = TempLoop0*SpatialLen0 and M = TempLoop1*SpatialLen1.
// Width only matters to ReshuffleWidth; Reshuffle takes the element type from
// its argument.
type ReshuffleParams struct {
	TempLoop0, TempLoop1     int
	SpatialLen0, SpatialLen1 int

	TempStride0, TempStride1       int
	SpatialStride0, SpatialStride1 int

	Width ElemWidth
}

// Validate checks that all loop bounds are positive and that the output
// length and every input offset fit in an int.
func (p ReshuffleParams) Validate() error {
	for _, d := range []struct {
		name string
		v    int
	}{
		{"temp_loop_0", p.TempLoop0}, {"temp_loop_1", p.TempLoop1},
		{"spatial_len_0", p.SpatialLen0}, {"spatial_len_1", p.SpatialLen1},
	} {
		if err := checkPositive(kernelReshuffle, d.name, d.v); err != nil {
			return err
		}
	}
	if err := checkProduct(kernelReshuffle, "out_len", p.TempLoop0, p.SpatialLen0, p.TempLoop1, p.SpatialLen1); err != nil {
		return err
	}
	// Each stride term is at most maxExtent, so the four-term input offset
	// cannot overflow.
	for _, s := range []struct {
		name          string
		stride, bound int
	}{
		{"temp_stride_0", p.TempStride0, p.TempLoop0},
		{"temp_stride_1", p.TempStride1, p.TempLoop1},
		{"spatial_stride_0", p.SpatialStride0, p.SpatialLen0},
		{"spatial_stride_1", p.SpatialStride1, p.SpatialLen1},
	} {
		stride := s.stride
		if stride == math.MinInt {
			return &ParamError{Kernel: kernelReshuffle, Param: s.name, Value: int64(stride), Reason: "overflows the addressable buffer size"}
		}
		if stride < 0 {
			stride = -stride
		}
		if err := checkProduct(kernelReshuffle, s.name, stride, s.bound-1); err != nil {
			return err
		}
	}
	switch p.Width {
	case 0, Width8, Width32:
	default:
		return &ParamError{Kernel: kernelReshuffle, Param: "width", Value: int64(p.Width), Reason: "must be 8 or 32"}
	}
	return nil
}

// Layout returns the address mapping for p.
func (p ReshuffleParams) Layout() ReshuffleLayout {
	// M/spatial_len_1 and K/spatial_len_0 are the temporal bounds.
	return ReshuffleLayout{
		OuterM:         p.TempLoop1,
		OuterK:         p.TempLoop0,
		Len0:           p.SpatialLen0,
		Len1:           p.SpatialLen1,
		TempStride0:    p.TempStride0,
		TempStride1:    p.TempStride1,
		SpatialStride0: p.SpatialStride0,
		SpatialStride1: p.SpatialStride1,
	}
}

// OutLen is M*K, the length of the reshuffled buffer.
func (p ReshuffleParams) OutLen() int {
	return p.TempLoop0 * p.SpatialLen0 * p.TempLoop1 * p.SpatialLen1
}

// Reshuffle gathers data from the strided source layout into the canonical
// blocked layout. Every output element is written exactly once.
func Reshuffle[T Integer](p ReshuffleParams, data []T) ([]T, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	l := p.Layout()
	lo, hi := l.InRange()
	if lo < 0 {
		return nil, &ParamError{Kernel: kernelReshuffle, Param: "min_input_offset", Value: int64(lo), Reason: "is below zero"}
	}
	if hi >= len(data) {
		return nil, &ShapeError{Kernel: kernelReshuffle, Operand: "data", Got: len(data), Want: hi + 1}
	}

	res := make([]T, l.Len())
	for mo := 0; mo < l.OuterM; mo++ {
		for ko := 0; ko < l.OuterK; ko++ {
			for m := 0; m < l.Len1; m++ {
				for k := 0; k < l.Len0; k++ {
					res[l.OutIndex(mo, ko, m, k)] = data[l.InIndex(mo, ko, m, k)]
				}
			}
		}
	}
	return res, nil
}

// ReshuffleWidth reshuffles untyped data and narrows every element to
// p.Width, as storing into an int8 or int32 buffer would. A zero Width means
// Width8.
func ReshuffleWidth(p ReshuffleParams, data []int64) ([]int64, error) {
	res, err := Reshuffle(p, data)
	if err != nil {
		return nil, err
	}
	w := p.Width
	if w == 0 {
		w = Width8
	}
	for i, v := range res {
		res[i] = w.Narrow(v)
	}
	return res, nil
}
