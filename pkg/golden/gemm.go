package golden

const kernelBlockGemm = "block_gemm"

// GemmParams configures BlockGemm. M, K and N count tiles; Row, Size and Col
// are the tile dimensions of the compute array.
type GemmParams struct {
	M, K, N        int
	Row, Size, Col int

	SubtractionA int8
	SubtractionB int8
}

// Validate checks that every tile count and dimension is positive and that
// the operand lengths fit in an int.
func (p GemmParams) Validate() error {
	for _, d := range []struct {
		name string
		v    int
	}{
		{"m", p.M}, {"k", p.K}, {"n", p.N},
		{"row", p.Row}, {"size", p.Size}, {"col", p.Col},
	} {
		if err := checkPositive(kernelBlockGemm, d.name, d.v); err != nil {
			return err
		}
	}
	if err := checkProduct(kernelBlockGemm, "a_len", p.M, p.K, p.Row, p.Size); err != nil {
		return err
	}
	if err := checkProduct(kernelBlockGemm, "b_len", p.N, p.K, p.Size, p.Col); err != nil {
		return err
	}
	if err := checkProduct(kernelBlockGemm, "c_len", p.M, p.N, p.Row, p.Col); err != nil {
		return err
	}
	// Work per output tile, used to size the parallel split.
	return checkProduct(kernelBlockGemm, "tile_work", p.M, p.N, p.K, p.Row, p.Col, p.Size)
}

// Layout returns the address mapping for p.
func (p GemmParams) Layout() GemmLayout {
	return GemmLayout{M: p.M, K: p.K, N: p.N, Row: p.Row, Size: p.Size, Col: p.Col}
}

// BlockGemm returns c + sum_K sum_Size (a - SubtractionA) * (b - SubtractionB)
// over the tiled layout described by p.
//
// Products and accumulation are 32-bit signed and wrap on overflow, matching
// the accelerator datapath. c is not modified.
func BlockGemm(p GemmParams, a, b []int8, c []int32) ([]int32, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	l := p.Layout()
	if err := checkLen(kernelBlockGemm, "a", len(a), l.ALen()); err != nil {
		return nil, err
	}
	if err := checkLen(kernelBlockGemm, "b", len(b), l.BLen()); err != nil {
		return nil, err
	}
	if err := checkLen(kernelBlockGemm, "c", len(c), l.CLen()); err != nil {
		return nil, err
	}

	d := make([]int32, l.CLen())
	subA := int32(p.SubtractionA)
	subB := int32(p.SubtractionB)
	tileCost := p.K * p.Row * p.Col * p.Size

	// One output tile (mm, nn) per index.
	parallelFor(p.M*p.N, tileCost, func(lo, hi int) {
		for t := lo; t < hi; t++ {
			mm, nn := t/p.N, t%p.N
			for kk := 0; kk < p.K; kk++ {
				for rr := 0; rr < p.Row; rr++ {
					for cc := 0; cc < p.Col; cc++ {
						ci := l.CIndex(mm, nn, rr, cc)
						acc := d[ci]
						for ss := 0; ss < p.Size; ss++ {
							av := int32(a[l.AIndex(mm, kk, rr, ss)]) - subA
							bv := int32(b[l.BIndex(nn, kk, cc, ss)]) - subB
							acc += av * bv
						}
						d[ci] = acc
					}
				}
			}
		}
	})

	for i := range d {
		d[i] += c[i]
	}
	return d, nil
}
