package golden

const (
	kernelMaxPool3D = "maxpool3d"
	kernelMaxPool4D = "maxpool4d"
)

// Lanes is the width of the lane-grouped channel dimension of MaxPool4D.
const Lanes = 8

// PoolParams configures max pooling. Padding is symmetric per axis.
type PoolParams struct {
	PoolW, PoolH     int
	StrideW, StrideH int
	PadW, PadH       int
}

func (p PoolParams) validate(kernel string, h, w int) error {
	for _, d := range []struct {
		name string
		v    int
	}{
		{"pool_w", p.PoolW}, {"pool_h", p.PoolH},
		{"stride_w", p.StrideW}, {"stride_h", p.StrideH},
	} {
		if err := checkPositive(kernel, d.name, d.v); err != nil {
			return err
		}
	}
	if err := checkNonNegative(kernel, "pad_w", p.PadW); err != nil {
		return err
	}
	if err := checkNonNegative(kernel, "pad_h", p.PadH); err != nil {
		return err
	}
	if err := checkPositive(kernel, "h", h); err != nil {
		return err
	}
	if err := checkPositive(kernel, "w", w); err != nil {
		return err
	}
	if err := checkProduct(kernel, "input_len", h, w, Lanes); err != nil {
		return err
	}
	if err := checkProduct(kernel, "pad_h", p.PadH, 2); err != nil {
		return err
	}
	if err := checkProduct(kernel, "pad_w", p.PadW, 2); err != nil {
		return err
	}
	outH, ok := windowOut(h, p.PadH, p.PoolH, p.StrideH)
	if !ok {
		return &ParamError{Kernel: kernel, Param: "pool_h", Value: int64(p.PoolH), Reason: "exceeds padded input height"}
	}
	outW, ok := windowOut(w, p.PadW, p.PoolW, p.StrideW)
	if !ok {
		return &ParamError{Kernel: kernel, Param: "pool_w", Value: int64(p.PoolW), Reason: "exceeds padded input width"}
	}
	return checkProduct(kernel, "output_len", outH, outW, Lanes)
}

// checkPlanes bounds the full input and output buffers of groups x lanes
// planes. validate must have passed.
func (p PoolParams) checkPlanes(kernel string, groups, h, w, lanes int) error {
	if err := checkProduct(kernel, "input_len", groups, h, w, lanes); err != nil {
		return err
	}
	outH, outW := p.OutDims(h, w)
	if err := checkProduct(kernel, "output_len", groups, outH, outW, lanes); err != nil {
		return err
	}
	// Window work per output row, used to size the parallel split.
	return checkProduct(kernel, "window_work", groups, outH, outW, p.PoolH, p.PoolW, lanes)
}

// Validate checks p against an h x w input; h and w must be positive.
func (p PoolParams) Validate(h, w int) error {
	return p.validate("maxpool", h, w)
}

// OutDims returns the pooled spatial extent of an h x w input.
func (p PoolParams) OutDims(h, w int) (outH, outW int) {
	outH, _ = windowOut(h, p.PadH, p.PoolH, p.StrideH)
	outW, _ = windowOut(w, p.PadW, p.PoolW, p.StrideW)
	return outH, outW
}

// Dims3 is an (H, W, C) tensor shape.
type Dims3 struct {
	H, W, C int
}

// Dims4 is a (C8, H, W, Lanes) tensor shape; only the first three axes vary.
type Dims4 struct {
	C8, H, W int
}

// MaxPool3D max-pools an (H, W, C) tensor per channel.
//
// Padded positions read as zero, so a window of negative values that touches
// the padding yields 0. That mirrors the accelerator's padding register.
func MaxPool3D[T Integer](p PoolParams, in Dims3, input []T) ([]T, Dims3, error) {
	if err := checkPositive(kernelMaxPool3D, "c", in.C); err != nil {
		return nil, Dims3{}, err
	}
	if err := p.validate(kernelMaxPool3D, in.H, in.W); err != nil {
		return nil, Dims3{}, err
	}
	if err := p.checkPlanes(kernelMaxPool3D, 1, in.H, in.W, in.C); err != nil {
		return nil, Dims3{}, err
	}
	if err := checkLen(kernelMaxPool3D, "input", len(input), in.H*in.W*in.C); err != nil {
		return nil, Dims3{}, err
	}
	outH, outW := p.OutDims(in.H, in.W)
	res := maxPoolPlanes(p, input, 1, in.H, in.W, in.C, outH, outW)
	return res, Dims3{H: outH, W: outW, C: in.C}, nil
}

// MaxPool4D max-pools a lane-grouped (C8, H, W, 8) tensor. Each of the C8
// groups and each lane is pooled independently, with the same zero padding
// as MaxPool3D.
func MaxPool4D[T Integer](p PoolParams, in Dims4, input []T) ([]T, Dims4, error) {
	if err := checkPositive(kernelMaxPool4D, "c8", in.C8); err != nil {
		return nil, Dims4{}, err
	}
	if err := p.validate(kernelMaxPool4D, in.H, in.W); err != nil {
		return nil, Dims4{}, err
	}
	if err := p.checkPlanes(kernelMaxPool4D, in.C8, in.H, in.W, Lanes); err != nil {
		return nil, Dims4{}, err
	}
	if err := checkLen(kernelMaxPool4D, "input", len(input), in.C8*in.H*in.W*Lanes); err != nil {
		return nil, Dims4{}, err
	}
	outH, outW := p.OutDims(in.H, in.W)
	res := maxPoolPlanes(p, input, in.C8, in.H, in.W, Lanes, outH, outW)
	return res, Dims4{C8: in.C8, H: outH, W: outW}, nil
}

// maxPoolPlanes pools a (groups, h, w, lanes) buffer into
// (groups, outH, outW, lanes).
func maxPoolPlanes[T Integer](p PoolParams, input []T, groups, h, w, lanes, outH, outW int) []T {
	src := Shape{groups, h, w, lanes}
	dst := Shape{groups, outH, outW, lanes}
	res := make([]T, dst.Len())
	windowCost := p.PoolH * p.PoolW * lanes

	// One output row (g, i) per index.
	parallelFor(groups*outH, outW*windowCost, func(lo, hi int) {
		for r := lo; r < hi; r++ {
			g, i := r/outH, r%outH
			h0 := i*p.StrideH - p.PadH
			for j := 0; j < outW; j++ {
				w0 := j*p.StrideW - p.PadW
				for k := 0; k < lanes; k++ {
					var best T
					padded := false
					first := true
					for y := h0; y < h0+p.PoolH; y++ {
						for x := w0; x < w0+p.PoolW; x++ {
							if y < 0 || y >= h || x < 0 || x >= w {
								padded = true
								continue
							}
							v := input[src.index(g, y, x, k)]
							if first || v > best {
								best = v
								first = false
							}
						}
					}
					var zero T
					if first || (padded && best < zero) {
						best = zero
					}
					res[dst.index(g, i, j, k)] = best
				}
			}
		}
	})
	return res
}
