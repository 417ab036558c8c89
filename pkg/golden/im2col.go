package golden

const (
	kernelIm2Col = "im2col"
	kernelConv2D = "conv2d"
)

// ConvParams describes a 2D convolution. The input is laid out as
// (Batch, InH, InW, InC) and the kernel as (OutC, KH, KW, InC).
type ConvParams struct {
	Batch, InH, InW, InC int
	OutC, KH, KW         int

	StrideH, StrideW int
	PadH, PadW       int
}

func (p ConvParams) validate(kernel string) error {
	for _, d := range []struct {
		name string
		v    int
	}{
		{"batch", p.Batch}, {"in_h", p.InH}, {"in_w", p.InW}, {"in_c", p.InC},
		{"out_c", p.OutC}, {"kh", p.KH}, {"kw", p.KW},
		{"stride_h", p.StrideH}, {"stride_w", p.StrideW},
	} {
		if err := checkPositive(kernel, d.name, d.v); err != nil {
			return err
		}
	}
	if err := checkNonNegative(kernel, "pad_h", p.PadH); err != nil {
		return err
	}
	if err := checkNonNegative(kernel, "pad_w", p.PadW); err != nil {
		return err
	}
	if err := checkProduct(kernel, "input_len", p.Batch, p.InH, p.InW, p.InC); err != nil {
		return err
	}
	if err := checkProduct(kernel, "kernel_len", p.OutC, p.KH, p.KW, p.InC); err != nil {
		return err
	}
	if err := checkProduct(kernel, "pad_h", p.PadH, 2); err != nil {
		return err
	}
	if err := checkProduct(kernel, "pad_w", p.PadW, 2); err != nil {
		return err
	}
	outH, ok := windowOut(p.InH, p.PadH, p.KH, p.StrideH)
	if !ok {
		return &ParamError{Kernel: kernel, Param: "kh", Value: int64(p.KH), Reason: "exceeds padded input height"}
	}
	outW, ok := windowOut(p.InW, p.PadW, p.KW, p.StrideW)
	if !ok {
		return &ParamError{Kernel: kernel, Param: "kw", Value: int64(p.KW), Reason: "exceeds padded input width"}
	}
	if err := checkProduct(kernel, "output_len", p.Batch, outH, outW, p.OutC); err != nil {
		return err
	}
	return checkProduct(kernel, "patches_len", p.Batch, outH, outW, p.KH, p.KW, p.InC)
}

// Validate checks dimensions, strides and padding.
func (p ConvParams) Validate() error {
	return p.validate(kernelIm2Col)
}

// OutDims returns the output spatial extent. Call Validate first.
func (p ConvParams) OutDims() (outH, outW int) {
	outH, _ = windowOut(p.InH, p.PadH, p.KH, p.StrideH)
	outW, _ = windowOut(p.InW, p.PadW, p.KW, p.StrideW)
	return outH, outW
}

// PatchLen is the length of one flattened receptive field, KH*KW*InC.
func (p ConvParams) PatchLen() int {
	return p.KH * p.KW * p.InC
}

func (p ConvParams) inputShape() Shape  { return Shape{p.Batch, p.InH, p.InW, p.InC} }
func (p ConvParams) kernelShape() Shape { return Shape{p.OutC, p.KH, p.KW, p.InC} }

// Im2Col lowers the convolution to a matrix multiply.
//
// patches has shape (Batch*outH*outW, KH*KW*InC); row b*outH*outW + oh*outW + ow
// is the receptive field of that output position flattened in (kh, kw, c)
// order with zero padding. weights has shape (KH*KW*InC, OutC) and is the
// transpose of the kernel reshaped to (OutC, KH*KW*InC).
func Im2Col[T Integer](p ConvParams, input, kernel []T) (patches, weights []T, err error) {
	if err := p.validate(kernelIm2Col); err != nil {
		return nil, nil, err
	}
	in, ks := p.inputShape(), p.kernelShape()
	if err := checkLen(kernelIm2Col, "input", len(input), in.Len()); err != nil {
		return nil, nil, err
	}
	if err := checkLen(kernelIm2Col, "kernel", len(kernel), ks.Len()); err != nil {
		return nil, nil, err
	}

	outH, outW := p.OutDims()
	cols := p.PatchLen()
	patches = make([]T, p.Batch*outH*outW*cols)

	row := 0
	for b := 0; b < p.Batch; b++ {
		for oh := 0; oh < outH; oh++ {
			for ow := 0; ow < outW; ow++ {
				dst := patches[row*cols : (row+1)*cols]
				j := 0
				for i := 0; i < p.KH; i++ {
					ih := oh*p.StrideH + i - p.PadH
					for w := 0; w < p.KW; w++ {
						iw := ow*p.StrideW + w - p.PadW
						if ih < 0 || ih >= p.InH || iw < 0 || iw >= p.InW {
							// zero padding, dst is already zeroed
							j += p.InC
							continue
						}
						base := in.index(b, ih, iw, 0)
						copy(dst[j:j+p.InC], input[base:base+p.InC])
						j += p.InC
					}
				}
				row++
			}
		}
	}

	weights = make([]T, cols*p.OutC)
	for oc := 0; oc < p.OutC; oc++ {
		for j := 0; j < cols; j++ {
			weights[j*p.OutC+oc] = kernel[oc*cols+j]
		}
	}
	return patches, weights, nil
}
