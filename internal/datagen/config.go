package datagen

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/snax-hw/goldengen/pkg/golden"
)

// Config is a vector generation config file. YAML and JSON are both accepted.
type Config struct {
	// Seed drives every generator; spec i draws from PCG(Seed, i).
	Seed    uint64       `yaml:"seed" json:"seed"`
	Vectors []VectorSpec `yaml:"vectors" json:"vectors"`
}

// VectorSpec describes one set of vectors. Exactly one kernel section must
// be present.
type VectorSpec struct {
	Name string `yaml:"name" json:"name,omitempty"`

	BlockGemm *BlockGemmSpec `yaml:"block_gemm" json:"block_gemm,omitempty"`
	Conv      *ConvSpec      `yaml:"conv" json:"conv,omitempty"`
	Reshuffle *ReshuffleSpec `yaml:"reshuffle" json:"reshuffle,omitempty"`
	Requant   *RequantSpec   `yaml:"requant" json:"requant,omitempty"`
	Pool      *PoolSpec      `yaml:"pool" json:"pool,omitempty"`
	ALU       *ALUSpec       `yaml:"alu" json:"alu,omitempty"`
	MAC       *MACSpec       `yaml:"mac" json:"mac,omitempty"`
}

// BlockGemmSpec mirrors the GEMM data generator parameters. The ld*/stride*
// values are only emitted for the test program; they do not affect the
// golden result.
type BlockGemmSpec struct {
	Batch    int `yaml:"batch" json:"batch"`
	M        int `yaml:"m" json:"m"`
	K        int `yaml:"k" json:"k"`
	N        int `yaml:"n" json:"n"`
	MeshRow  int `yaml:"mesh_row" json:"mesh_row"`
	TileSize int `yaml:"tile_size" json:"tile_size"`
	MeshCol  int `yaml:"mesh_col" json:"mesh_col"`

	SubtractionA int8 `yaml:"subtraction_a" json:"subtraction_a"`
	SubtractionB int8 `yaml:"subtraction_b" json:"subtraction_b"`

	LdA     int32 `yaml:"ld_a" json:"ld_a"`
	LdB     int32 `yaml:"ld_b" json:"ld_b"`
	LdC     int32 `yaml:"ld_c" json:"ld_c"`
	StrideA int32 `yaml:"stride_a" json:"stride_a"`
	StrideB int32 `yaml:"stride_b" json:"stride_b"`
	StrideC int32 `yaml:"stride_c" json:"stride_c"`
}

// ConvSpec describes a convolution lowered through im2col.
type ConvSpec struct {
	Batch   int `yaml:"batch" json:"batch"`
	H       int `yaml:"h" json:"h"`
	W       int `yaml:"w" json:"w"`
	Cin     int `yaml:"cin" json:"cin"`
	Cout    int `yaml:"cout" json:"cout"`
	Kh      int `yaml:"kh" json:"kh"`
	Kw      int `yaml:"kw" json:"kw"`
	StrideH int `yaml:"stride_h" json:"stride_h"`
	StrideW int `yaml:"stride_w" json:"stride_w"`
	PadH    int `yaml:"pad_h" json:"pad_h"`
	PadW    int `yaml:"pad_w" json:"pad_w"`
}

// ReshuffleSpec carries the reshuffler stride descriptor.
type ReshuffleSpec struct {
	TempLoop0      int  `yaml:"temp_loop_0" json:"temp_loop_0"`
	TempLoop1      int  `yaml:"temp_loop_1" json:"temp_loop_1"`
	SpatialLen0    int  `yaml:"spatial_len_0" json:"spatial_len_0"`
	SpatialLen1    int  `yaml:"spatial_len_1" json:"spatial_len_1"`
	TempStride0    int  `yaml:"temp_stride_0" json:"temp_stride_0"`
	TempStride1    int  `yaml:"temp_stride_1" json:"temp_stride_1"`
	SpatialStride0 int  `yaml:"spatial_stride_0" json:"spatial_stride_0"`
	SpatialStride1 int  `yaml:"spatial_stride_1" json:"spatial_stride_1"`
	Int32          bool `yaml:"int32" json:"int32"`
}

// RequantSpec configures requantization vectors. Inputs are drawn from
// [InputMin, InputMax).
type RequantSpec struct {
	Length      int   `yaml:"length" json:"length"`
	InputMin    int32 `yaml:"input_min" json:"input_min"`
	InputMax    int32 `yaml:"input_max" json:"input_max"`
	InputZP     int32 `yaml:"input_zp" json:"input_zp"`
	OutputZP    int32 `yaml:"output_zp" json:"output_zp"`
	Shift       int   `yaml:"shift" json:"shift"`
	Multiplier  int32 `yaml:"multiplier" json:"multiplier"`
	MinInt      int32 `yaml:"min_int" json:"min_int"`
	MaxInt      int32 `yaml:"max_int" json:"max_int"`
	DoubleRound bool  `yaml:"double_round" json:"double_round"`
}

// PoolSpec configures max pooling vectors. Variant is "3d" for (H, W, C)
// or "4d" for (C8, H, W, 8) inputs; C counts channel groups for "4d".
type PoolSpec struct {
	Variant string `yaml:"variant" json:"variant"`
	H       int    `yaml:"h" json:"h"`
	W       int    `yaml:"w" json:"w"`
	C       int    `yaml:"c" json:"c"`
	PoolW   int    `yaml:"pool_w" json:"pool_w"`
	PoolH   int    `yaml:"pool_h" json:"pool_h"`
	StrideW int    `yaml:"stride_w" json:"stride_w"`
	StrideH int    `yaml:"stride_h" json:"stride_h"`
	PadW    int    `yaml:"pad_w" json:"pad_w"`
	PadH    int    `yaml:"pad_h" json:"pad_h"`
}

// ALUSpec configures elementwise ALU vectors drawn from [0, Max).
type ALUSpec struct {
	Mode   string `yaml:"mode" json:"mode"`
	Length int    `yaml:"length" json:"length"`
	Max    uint64 `yaml:"max" json:"max"`
}

// MACSpec configures elementwise multiply vectors drawn from [0, Max).
type MACSpec struct {
	Length int    `yaml:"length" json:"length"`
	Max    uint32 `yaml:"max" json:"max"`
}

const (
	KernelBlockGemm = "block_gemm"
	KernelConv      = "conv"
	KernelReshuffle = "reshuffle"
	KernelRequant   = "requant"
	KernelMaxPool3D = "maxpool3d"
	KernelMaxPool4D = "maxpool4d"
	KernelALU       = "alu"
	KernelMAC       = "mac"
)

var errNoKernel = errors.New("vector spec names no kernel section")

// Kernel names the kernel the vector spec configures.
func (s VectorSpec) Kernel() (string, error) {
	var kernels []string
	if s.BlockGemm != nil {
		kernels = append(kernels, KernelBlockGemm)
	}
	if s.Conv != nil {
		kernels = append(kernels, KernelConv)
	}
	if s.Reshuffle != nil {
		kernels = append(kernels, KernelReshuffle)
	}
	if s.Requant != nil {
		kernels = append(kernels, KernelRequant)
	}
	if s.Pool != nil {
		if s.Pool.Variant == "4d" {
			kernels = append(kernels, KernelMaxPool4D)
		} else {
			kernels = append(kernels, KernelMaxPool3D)
		}
	}
	if s.ALU != nil {
		kernels = append(kernels, KernelALU)
	}
	if s.MAC != nil {
		kernels = append(kernels, KernelMAC)
	}
	switch len(kernels) {
	case 0:
		return "", errNoKernel
	case 1:
		return kernels[0], nil
	default:
		return "", fmt.Errorf("vector spec names several kernels: %v", kernels)
	}
}

// Validate checks the vector spec against the kernel parameter rules without
// generating anything.
func (s VectorSpec) Validate() error {
	kernel, err := s.Kernel()
	if err != nil {
		return err
	}
	switch kernel {
	case KernelBlockGemm:
		if s.BlockGemm.Batch < 0 {
			return fmt.Errorf("block_gemm: batch must not be negative")
		}
		return s.BlockGemm.params().Validate()
	case KernelConv:
		return s.Conv.params().Validate()
	case KernelReshuffle:
		return s.Reshuffle.params().Validate()
	case KernelRequant:
		r := s.Requant
		if r.Length <= 0 {
			return fmt.Errorf("requant: length must be positive")
		}
		if r.InputMin >= r.InputMax {
			return fmt.Errorf("requant: input_min must be below input_max")
		}
		return r.params().Validate()
	case KernelMaxPool3D, KernelMaxPool4D:
		p := s.Pool
		if p.Variant != "" && p.Variant != "3d" && p.Variant != "4d" {
			return fmt.Errorf("pool: unknown variant %q", p.Variant)
		}
		if p.H <= 0 || p.W <= 0 || p.C <= 0 {
			return fmt.Errorf("pool: h, w and c must be positive")
		}
		return p.params().Validate(p.H, p.W)
	case KernelALU:
		if _, err := golden.ParseALUMode(s.ALU.Mode); err != nil {
			return err
		}
		if s.ALU.Length <= 0 {
			return fmt.Errorf("alu: length must be positive")
		}
		return nil
	case KernelMAC:
		if s.MAC.Length <= 0 {
			return fmt.Errorf("mac: length must be positive")
		}
		return nil
	}
	return nil
}

// Validate checks every spec in the config.
func (c Config) Validate() error {
	if len(c.Vectors) == 0 {
		return errors.New("config lists no vectors")
	}
	for i, v := range c.Vectors {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("vectors[%d] %s: %w", i, v.Name, err)
		}
	}
	return nil
}

// ParseConfig decodes and validates a config document.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and validates the config at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (s *BlockGemmSpec) params() golden.GemmParams {
	return golden.GemmParams{
		M: s.M, K: s.K, N: s.N,
		Row: s.MeshRow, Size: s.TileSize, Col: s.MeshCol,
		SubtractionA: s.SubtractionA,
		SubtractionB: s.SubtractionB,
	}
}

func (s *ConvSpec) params() golden.ConvParams {
	return golden.ConvParams{
		Batch: s.Batch, InH: s.H, InW: s.W, InC: s.Cin,
		OutC: s.Cout, KH: s.Kh, KW: s.Kw,
		StrideH: s.StrideH, StrideW: s.StrideW,
		PadH: s.PadH, PadW: s.PadW,
	}
}

func (s *ReshuffleSpec) params() golden.ReshuffleParams {
	w := golden.Width8
	if s.Int32 {
		w = golden.Width32
	}
	return golden.ReshuffleParams{
		TempLoop0: s.TempLoop0, TempLoop1: s.TempLoop1,
		SpatialLen0: s.SpatialLen0, SpatialLen1: s.SpatialLen1,
		TempStride0: s.TempStride0, TempStride1: s.TempStride1,
		SpatialStride0: s.SpatialStride0, SpatialStride1: s.SpatialStride1,
		Width: w,
	}
}

func (s *RequantSpec) params() golden.RequantParams {
	return golden.RequantParams{
		InputZP:     s.InputZP,
		OutputZP:    s.OutputZP,
		Multiplier:  s.Multiplier,
		Shift:       s.Shift,
		MinInt:      s.MinInt,
		MaxInt:      s.MaxInt,
		DoubleRound: s.DoubleRound,
	}
}

func (s *PoolSpec) params() golden.PoolParams {
	return golden.PoolParams{
		PoolW: s.PoolW, PoolH: s.PoolH,
		StrideW: s.StrideW, StrideH: s.StrideH,
		PadW: s.PadW, PadH: s.PadH,
	}
}
