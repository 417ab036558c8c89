// Package datagen produces test vectors for the accelerator test programs:
// random operands drawn from a caller-owned generator plus the golden
// results computed by pkg/golden.
package datagen

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/snax-hw/goldengen/internal/cheader"
	"github.com/snax-hw/goldengen/internal/logger"
	"github.com/snax-hw/goldengen/pkg/golden"
)

// Operand ranges used by the original test programs.
const (
	int8Min = -128
	int8Max = 127 // exclusive

	defaultElemMax = 100
)

// Scalar is a named integer constant.
type Scalar struct {
	Name  string `json:"name"`
	CType string `json:"ctype"`
	Value int64  `json:"value"`
}

// Array is a named buffer. Values holds a typed slice: []int8, []int32,
// []uint32 or []uint64.
type Array struct {
	Name   string `json:"name"`
	CType  string `json:"ctype"`
	Shape  []int  `json:"shape,omitempty"`
	Values any    `json:"values"`
}

// Vectors is the output of one VectorSpec.
type Vectors struct {
	Name    string   `json:"name,omitempty"`
	Kernel  string   `json:"kernel"`
	Scalars []Scalar `json:"scalars"`
	Arrays  []Array  `json:"arrays"`
}

func (v *Vectors) scalar(ctype, name string, value int64) {
	v.Scalars = append(v.Scalars, Scalar{Name: name, CType: ctype, Value: value})
}

func (v *Vectors) array(ctype, name string, shape []int, values any) {
	v.Arrays = append(v.Arrays, Array{Name: name, CType: ctype, Shape: shape, Values: values})
}

// Array looks up an array by name.
func (v *Vectors) Array(name string) (Array, bool) {
	for _, a := range v.Arrays {
		if a.Name == name {
			return a, true
		}
	}
	return Array{}, false
}

// Header renders the vectors as C declarations, scalars first.
func (v *Vectors) Header() (*cheader.File, error) {
	var f cheader.File
	for _, s := range v.Scalars {
		f.Add(cheader.Scalar(s.CType, s.Name, s.Value))
	}
	for _, a := range v.Arrays {
		switch vals := a.Values.(type) {
		case []int8:
			f.Add(cheader.Vector(a.CType, a.Name, vals))
		case []int32:
			f.Add(cheader.Vector(a.CType, a.Name, vals))
		case []uint32:
			f.Add(cheader.Vector(a.CType, a.Name, vals))
		case []uint64:
			f.Add(cheader.Vector(a.CType, a.Name, vals))
		default:
			return nil, fmt.Errorf("array %s: unsupported element type %T", a.Name, a.Values)
		}
	}
	return &f, nil
}

// WriteJSON encodes vectors for comparison tooling.
func WriteJSON(w io.Writer, vecs []*Vectors) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(vecs)
}

// NewRand returns the generator used for spec index i of a config seeded
// with seed.
func NewRand(seed uint64, i int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(i)))
}

// GenerateAll generates every spec in cfg concurrently. Each spec owns its
// generator, so the result does not depend on scheduling.
func GenerateAll(ctx context.Context, cfg Config) ([]*Vectors, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	out := make([]*Vectors, len(cfg.Vectors))
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range cfg.Vectors {
		g.Go(func() error {
			v, err := Generate(ctx, spec, NewRand(cfg.Seed, i))
			if err != nil {
				return fmt.Errorf("vectors[%d] %s: %w", i, spec.Name, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Generate draws operands for spec from rng and computes the golden result.
func Generate(ctx context.Context, spec VectorSpec, rng *rand.Rand) (*Vectors, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	kernel, _ := spec.Kernel()
	v := &Vectors{Name: spec.Name, Kernel: kernel}

	var err error
	switch kernel {
	case KernelBlockGemm:
		err = genBlockGemm(v, spec.BlockGemm, rng)
	case KernelConv:
		err = genConv(v, spec.Conv, rng)
	case KernelReshuffle:
		err = genReshuffle(v, spec.Reshuffle, rng)
	case KernelRequant:
		err = genRequant(v, spec.Requant, rng)
	case KernelMaxPool3D, KernelMaxPool4D:
		err = genPool(v, spec.Pool, rng)
	case KernelALU:
		err = genALU(v, spec.ALU, rng)
	case KernelMAC:
		err = genMAC(v, spec.MAC, rng)
	}
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug("generated vectors",
		"name", spec.Name, "kernel", kernel,
		"scalars", len(v.Scalars), "arrays", len(v.Arrays))
	return v, nil
}

func randInt8(rng *rand.Rand, n int) []int8 {
	out := make([]int8, n)
	for i := range out {
		out[i] = int8(int8Min + rng.IntN(int8Max-int8Min))
	}
	return out
}

func genBlockGemm(v *Vectors, s *BlockGemmSpec, rng *rand.Rand) error {
	p := s.params()
	l := p.Layout()
	a := randInt8(rng, l.ALen())
	b := randInt8(rng, l.BLen())
	c := make([]int32, l.CLen())

	d, err := golden.BlockGemm(p, a, b, c)
	if err != nil {
		return err
	}

	v.scalar("int8_t", "Batch", int64(s.Batch))
	v.scalar("int8_t", "M", int64(s.M))
	v.scalar("int8_t", "K", int64(s.K))
	v.scalar("int8_t", "N", int64(s.N))
	v.scalar("int8_t", "subtraction_a", int64(s.SubtractionA))
	v.scalar("int8_t", "subtraction_b", int64(s.SubtractionB))
	v.scalar("int32_t", "ldA", int64(s.LdA))
	v.scalar("int32_t", "ldB", int64(s.LdB))
	v.scalar("int32_t", "ldC", int64(s.LdC))
	v.scalar("int32_t", "strideA", int64(s.StrideA))
	v.scalar("int32_t", "strideB", int64(s.StrideB))
	v.scalar("int32_t", "strideC", int64(s.StrideC))

	v.array("int8_t", "A", []int{l.ALen()}, a)
	v.array("int8_t", "B", []int{l.BLen()}, b)
	v.array("int32_t", "C_golden", []int{l.CLen()}, d)
	v.array("int32_t", "C", []int{l.CLen()}, c)
	return nil
}

func genConv(v *Vectors, s *ConvSpec, rng *rand.Rand) error {
	p := s.params()
	input := randInt8(rng, s.Batch*s.H*s.W*s.Cin)
	kernel := randInt8(rng, s.Cout*s.Kh*s.Kw*s.Cin)

	direct, err := golden.Conv2D(p, input, kernel)
	if err != nil {
		return err
	}
	patches, weights, err := golden.Im2Col(p, input, kernel)
	if err != nil {
		return err
	}

	outH, outW := p.OutDims()
	rows := s.Batch * outH * outW
	cols := p.PatchLen()
	// BlockGemm stores B tiles column-major, which is the kernel's own
	// (Cout, KH*KW*Cin) layout.
	gp := golden.GemmParams{M: 1, K: 1, N: 1, Row: rows, Size: cols, Col: s.Cout}
	lowered, err := golden.BlockGemm(gp, patches, kernel, make([]int32, rows*s.Cout))
	if err != nil {
		return err
	}
	for i := range direct {
		if direct[i] != lowered[i] {
			return fmt.Errorf("conv: im2col gemm disagrees with direct convolution at %d: %d != %d", i, lowered[i], direct[i])
		}
	}

	for _, sc := range []struct {
		name string
		val  int
	}{
		{"Nbatch", s.Batch}, {"H", s.H}, {"W", s.W}, {"Cin", s.Cin},
		{"Cout", s.Cout}, {"Kh", s.Kh}, {"Kw", s.Kw},
		{"stride_h", s.StrideH}, {"stride_w", s.StrideW},
		{"pad_h", s.PadH}, {"pad_w", s.PadW},
		{"out_h", outH}, {"out_w", outW},
	} {
		v.scalar("int32_t", sc.name, int64(sc.val))
	}
	v.array("int8_t", "A", []int{s.Batch, s.H, s.W, s.Cin}, input)
	v.array("int8_t", "B", []int{s.Cout, s.Kh, s.Kw, s.Cin}, kernel)
	v.array("int8_t", "A_im2col", []int{rows, cols}, patches)
	v.array("int8_t", "B_im2col", []int{cols, s.Cout}, weights)
	v.array("int32_t", "C_direct_conv2d", []int{s.Batch, outH, outW, s.Cout}, direct)
	return nil
}

func genReshuffle(v *Vectors, s *ReshuffleSpec, rng *rand.Rand) error {
	p := s.params()
	_, hi := p.Layout().InRange()
	n := hi + 1

	v.scalar("int32_t", "tempLoop0", int64(s.TempLoop0))
	v.scalar("int32_t", "tempLoop1", int64(s.TempLoop1))
	v.scalar("int32_t", "spatial_len_0", int64(s.SpatialLen0))
	v.scalar("int32_t", "spatial_len_1", int64(s.SpatialLen1))
	v.scalar("int32_t", "tempStride0", int64(s.TempStride0))
	v.scalar("int32_t", "tempStride1", int64(s.TempStride1))
	v.scalar("int32_t", "spatialStride0", int64(s.SpatialStride0))
	v.scalar("int32_t", "spatialStride1", int64(s.SpatialStride1))

	if s.Int32 {
		data := make([]int32, n)
		for i := range data {
			data[i] = int32(rng.Uint32())
		}
		out, err := golden.Reshuffle(p, data)
		if err != nil {
			return err
		}
		v.array("int32_t", "DataIn", []int{n}, data)
		v.array("int32_t", "DataOut", []int{len(out)}, out)
		return nil
	}

	data := randInt8(rng, n)
	out, err := golden.Reshuffle(p, data)
	if err != nil {
		return err
	}
	v.array("int8_t", "DataIn", []int{n}, data)
	v.array("int8_t", "DataOut", []int{len(out)}, out)
	return nil
}

func genRequant(v *Vectors, s *RequantSpec, rng *rand.Rand) error {
	p := s.params()
	span := int64(s.InputMax) - int64(s.InputMin)
	data := make([]int32, s.Length)
	for i := range data {
		data[i] = int32(int64(s.InputMin) + rng.Int64N(span))
	}
	out, err := golden.Requantize(p, data)
	if err != nil {
		return err
	}

	dr := int64(0)
	if s.DoubleRound {
		dr = 1
	}
	v.scalar("int32_t", "input_zp_i", int64(s.InputZP))
	v.scalar("int32_t", "output_zp_i", int64(s.OutputZP))
	v.scalar("int32_t", "shift_i", int64(s.Shift))
	v.scalar("int32_t", "max_int_i", int64(s.MaxInt))
	v.scalar("int32_t", "min_int_i", int64(s.MinInt))
	v.scalar("int32_t", "double_round_i", dr)
	v.scalar("int32_t", "multiplier_i", int64(s.Multiplier))
	v.array("int32_t", "DataIn", []int{s.Length}, data)

	// Narrow to int8 when the clip range allows it, as the SIMD unit does.
	if s.MinInt >= int8Min && s.MaxInt <= int8Max {
		narrow := make([]int8, len(out))
		for i, x := range out {
			narrow[i] = int8(x)
		}
		v.array("int8_t", "C_golden", []int{s.Length}, narrow)
		return nil
	}
	v.array("int32_t", "C_golden", []int{s.Length}, out)
	return nil
}

func genPool(v *Vectors, s *PoolSpec, rng *rand.Rand) error {
	p := s.params()
	v.scalar("int32_t", "pool_size_w", int64(s.PoolW))
	v.scalar("int32_t", "pool_size_h", int64(s.PoolH))
	v.scalar("int32_t", "stride_w", int64(s.StrideW))
	v.scalar("int32_t", "stride_h", int64(s.StrideH))
	v.scalar("int32_t", "padding_w", int64(s.PadW))
	v.scalar("int32_t", "padding_h", int64(s.PadH))

	if s.Variant == "4d" {
		in := golden.Dims4{C8: s.C, H: s.H, W: s.W}
		input := randInt8(rng, s.C*s.H*s.W*golden.Lanes)
		out, dims, err := golden.MaxPool4D(p, in, input)
		if err != nil {
			return err
		}
		v.scalar("int32_t", "C8", int64(s.C))
		v.scalar("int32_t", "H", int64(s.H))
		v.scalar("int32_t", "W", int64(s.W))
		v.scalar("int32_t", "out_h", int64(dims.H))
		v.scalar("int32_t", "out_w", int64(dims.W))
		v.array("int8_t", "DataIn", []int{s.C, s.H, s.W, golden.Lanes}, input)
		v.array("int8_t", "C_golden", []int{dims.C8, dims.H, dims.W, golden.Lanes}, out)
		return nil
	}

	in := golden.Dims3{H: s.H, W: s.W, C: s.C}
	input := randInt8(rng, s.H*s.W*s.C)
	out, dims, err := golden.MaxPool3D(p, in, input)
	if err != nil {
		return err
	}
	v.scalar("int32_t", "H", int64(s.H))
	v.scalar("int32_t", "W", int64(s.W))
	v.scalar("int32_t", "C", int64(s.C))
	v.scalar("int32_t", "out_h", int64(dims.H))
	v.scalar("int32_t", "out_w", int64(dims.W))
	v.array("int8_t", "DataIn", []int{s.H, s.W, s.C}, input)
	v.array("int8_t", "C_golden", []int{dims.H, dims.W, dims.C}, out)
	return nil
}

func genALU(v *Vectors, s *ALUSpec, rng *rand.Rand) error {
	mode, err := golden.ParseALUMode(s.Mode)
	if err != nil {
		return err
	}
	limit := s.Max
	if limit == 0 {
		limit = defaultElemMax
	}
	a := make([]uint64, s.Length)
	b := make([]uint64, s.Length)
	for i := range a {
		a[i] = rng.Uint64N(limit)
		b[i] = rng.Uint64N(limit)
	}
	out, err := golden.ALU(mode, a, b)
	if err != nil {
		return err
	}
	v.scalar("uint32_t", "VEC_LEN", int64(s.Length))
	v.scalar("uint32_t", "ALU_MODE", int64(mode))
	v.array("uint64_t", "A", []int{s.Length}, a)
	v.array("uint64_t", "B", []int{s.Length}, b)
	v.array("uint64_t", "OUT", []int{s.Length}, out)
	return nil
}

func genMAC(v *Vectors, s *MACSpec, rng *rand.Rand) error {
	limit := s.Max
	if limit == 0 {
		limit = defaultElemMax
	}
	a := make([]uint32, s.Length)
	b := make([]uint32, s.Length)
	for i := range a {
		a[i] = rng.Uint32N(limit)
		b[i] = rng.Uint32N(limit)
	}
	out, err := golden.MAC(a, b)
	if err != nil {
		return err
	}
	v.scalar("uint32_t", "VEC_LEN", int64(s.Length))
	v.array("uint32_t", "A", []int{s.Length}, a)
	v.array("uint32_t", "B", []int{s.Length}, b)
	v.array("uint32_t", "OUT", []int{s.Length}, out)
	v.array("uint32_t", "OUT_TEST", []int{s.Length}, make([]uint32, s.Length))
	return nil
}
