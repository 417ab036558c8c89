package golden

// GemmLayout describes the tiled memory layout of the block GEMM operands.
//
// A holds M*K tiles of Row x Size, B holds N*K tiles of Size x Col stored
// column-major inside the tile, and C holds M*N tiles of Row x Col.
type GemmLayout struct {
	M, K, N        int
	Row, Size, Col int
}

// AIndex returns the flat offset of element (rr, ss) of tile (mm, kk) in A.
func (l GemmLayout) AIndex(mm, kk, rr, ss int) int {
	return mm*l.K*l.Row*l.Size + kk*l.Row*l.Size + rr*l.Size + ss
}

// BIndex returns the flat offset of element (ss, cc) of tile (kk, nn) in B.
func (l GemmLayout) BIndex(nn, kk, cc, ss int) int {
	return nn*l.K*l.Size*l.Col + kk*l.Size*l.Col + cc*l.Size + ss
}

// CIndex returns the flat offset of element (rr, cc) of tile (mm, nn) in C.
func (l GemmLayout) CIndex(mm, nn, rr, cc int) int {
	return mm*l.N*l.Row*l.Col + nn*l.Row*l.Col + rr*l.Col + cc
}

func (l GemmLayout) ALen() int { return l.M * l.K * l.Row * l.Size }
func (l GemmLayout) BLen() int { return l.N * l.K * l.Size * l.Col }
func (l GemmLayout) CLen() int { return l.M * l.Row * l.N * l.Col }

// ReshuffleLayout maps the reshuffler loop nest (Mo, Ko, m, k) to the
// canonical blocked output offset and the strided input offset.
type ReshuffleLayout struct {
	OuterM, OuterK int // temporal bounds: M/SpatialLen1 and K/SpatialLen0
	Len0, Len1     int // spatial bounds for k and m

	TempStride0, TempStride1       int
	SpatialStride0, SpatialStride1 int
}

// OutIndex is the canonical blocked address. It is a bijection from the loop
// nest onto [0, OuterM*OuterK*Len0*Len1).
func (l ReshuffleLayout) OutIndex(mo, ko, m, k int) int {
	return l.OuterK*l.Len0*l.Len1*mo + l.Len0*l.Len1*ko + m*l.Len0 + k
}

// InIndex is the strided source address. It may alias or skip.
func (l ReshuffleLayout) InIndex(mo, ko, m, k int) int {
	return l.TempStride1*mo + l.TempStride0*ko + l.SpatialStride1*m + l.SpatialStride0*k
}

// Len is the number of output elements.
func (l ReshuffleLayout) Len() int {
	return l.OuterM * l.OuterK * l.Len0 * l.Len1
}

// InRange returns the smallest and largest input offset the nest touches.
// InIndex is affine in each loop variable, so the extremes sit on the corners.
func (l ReshuffleLayout) InRange() (lo, hi int) {
	span := func(stride, bound int) (int, int) {
		end := stride * (bound - 1)
		if end < 0 {
			return end, 0
		}
		return 0, end
	}
	for _, sb := range [4][2]int{
		{l.TempStride1, l.OuterM},
		{l.TempStride0, l.OuterK},
		{l.SpatialStride1, l.Len1},
		{l.SpatialStride0, l.Len0},
	} {
		a, b := span(sb[0], sb[1])
		lo += a
		hi += b
	}
	return lo, hi
}

// Shape is a row-major tensor shape.
type Shape []int

// Len returns the element count of the shape.
func (s Shape) Len() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Strides returns the row-major stride of every axis.
func (s Shape) Strides() []int {
	st := make([]int, len(s))
	acc := 1
	for i := len(s) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= s[i]
	}
	return st
}

// index flattens idx. Callers pass exactly len(s) coordinates; a rank
// mismatch panics.
func (s Shape) index(idx ...int) int {
	if len(idx) != len(s) {
		panic("golden: index rank mismatch")
	}
	off := 0
	for i, v := range idx {
		off = off*s[i] + v
	}
	return off
}

// windowOut is the output extent of a sliding window with symmetric padding,
// floor((in + 2*pad - window) / stride) + 1. ok is false when the window does
// not fit even once.
func windowOut(in, pad, window, stride int) (int, bool) {
	span := in + 2*pad - window
	if span < 0 {
		return 0, false
	}
	return span/stride + 1, true
}
