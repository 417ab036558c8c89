package golden

// Conv2D computes the direct convolution of input with kernel.
//
// The result is laid out as (Batch, outH, outW, OutC). Accumulation is 32-bit
// signed with wraparound, so for any valid p it equals BlockGemm over the
// Im2Col lowering.
func Conv2D(p ConvParams, input, kernel []int8) ([]int32, error) {
	if err := p.validate(kernelConv2D); err != nil {
		return nil, err
	}
	in, ks := p.inputShape(), p.kernelShape()
	if err := checkLen(kernelConv2D, "input", len(input), in.Len()); err != nil {
		return nil, err
	}
	if err := checkLen(kernelConv2D, "kernel", len(kernel), ks.Len()); err != nil {
		return nil, err
	}

	outH, outW := p.OutDims()
	out := Shape{p.Batch, outH, outW, p.OutC}
	res := make([]int32, out.Len())

	for b := 0; b < p.Batch; b++ {
		for oc := 0; oc < p.OutC; oc++ {
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					var acc int32
					for i := 0; i < p.KH; i++ {
						ih := oh*p.StrideH + i - p.PadH
						if ih < 0 || ih >= p.InH {
							continue
						}
						for w := 0; w < p.KW; w++ {
							iw := ow*p.StrideW + w - p.PadW
							if iw < 0 || iw >= p.InW {
								continue
							}
							for c := 0; c < p.InC; c++ {
								acc += int32(input[in.index(b, ih, iw, c)]) * int32(kernel[ks.index(oc, i, w, c)])
							}
						}
					}
					res[out.index(b, oh, ow, oc)] = acc
				}
			}
		}
	}
	return res, nil
}
