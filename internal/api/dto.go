package api

import "github.com/snax-hw/goldengen/internal/datagen"

type ErrorBody struct {
	Error ResponseError `json:"error"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// GoldenResult is the response of every /v1/golden endpoint.
type GoldenResult struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	CreatedAt int64  `json:"created_at"`
	Kernel    string `json:"kernel"`
	Output    any    `json:"output"`
	Shape     []int  `json:"shape"`
	// Weights is only set by im2col.
	Weights      any   `json:"weights,omitempty"`
	WeightsShape []int `json:"weights_shape,omitempty"`
}

type GemmParams struct {
	M            int  `json:"m"`
	K            int  `json:"k"`
	N            int  `json:"n"`
	Row          int  `json:"row"`
	Size         int  `json:"size"`
	Col          int  `json:"col"`
	SubtractionA int8 `json:"subtraction_a"`
	SubtractionB int8 `json:"subtraction_b"`
}

type BlockGemmRequest struct {
	Params GemmParams `json:"params"`
	A      []int8     `json:"a"`
	B      []int8     `json:"b"`
	// C is the accumulator; omitted means zeros.
	C []int32 `json:"c,omitempty"`
}

type ConvParams struct {
	Batch   int `json:"batch"`
	H       int `json:"h"`
	W       int `json:"w"`
	Cin     int `json:"cin"`
	Cout    int `json:"cout"`
	Kh      int `json:"kh"`
	Kw      int `json:"kw"`
	StrideH int `json:"stride_h"`
	StrideW int `json:"stride_w"`
	PadH    int `json:"pad_h"`
	PadW    int `json:"pad_w"`
}

type ConvRequest struct {
	Params ConvParams `json:"params"`
	Input  []int8     `json:"input"`
	Kernel []int8     `json:"kernel"`
}

type ReshuffleParams struct {
	TempLoop0      int `json:"temp_loop_0"`
	TempLoop1      int `json:"temp_loop_1"`
	SpatialLen0    int `json:"spatial_len_0"`
	SpatialLen1    int `json:"spatial_len_1"`
	TempStride0    int `json:"temp_stride_0"`
	TempStride1    int `json:"temp_stride_1"`
	SpatialStride0 int `json:"spatial_stride_0"`
	SpatialStride1 int `json:"spatial_stride_1"`
	// Width is 8 or 32; empty means 8.
	Width string `json:"width,omitempty"`
}

type ReshuffleRequest struct {
	Params ReshuffleParams `json:"params"`
	Data   []int64         `json:"data"`
}

type RequantParams struct {
	InputZP     int32 `json:"input_zp"`
	OutputZP    int32 `json:"output_zp"`
	Multiplier  int32 `json:"multiplier"`
	Shift       int   `json:"shift"`
	MinInt      int32 `json:"min_int"`
	MaxInt      int32 `json:"max_int"`
	DoubleRound bool  `json:"double_round"`
}

type RequantRequest struct {
	Params RequantParams `json:"params"`
	Data   []int32       `json:"data"`
}

type PoolParams struct {
	PoolW   int `json:"pool_w"`
	PoolH   int `json:"pool_h"`
	StrideW int `json:"stride_w"`
	StrideH int `json:"stride_h"`
	PadW    int `json:"pad_w"`
	PadH    int `json:"pad_h"`
}

type MaxPool3DRequest struct {
	Params PoolParams `json:"params"`
	H      int        `json:"h"`
	W      int        `json:"w"`
	C      int        `json:"c"`
	Data   []int32    `json:"data"`
}

type MaxPool4DRequest struct {
	Params PoolParams `json:"params"`
	C8     int        `json:"c8"`
	H      int        `json:"h"`
	W      int        `json:"w"`
	Data   []int32    `json:"data"`
}

type ALURequest struct {
	Mode string   `json:"mode"`
	A    []uint64 `json:"a"`
	B    []uint64 `json:"b"`
}

type MACRequest struct {
	A []uint32 `json:"a"`
	B []uint32 `json:"b"`
}

type VectorsRequest struct {
	Seed uint64             `json:"seed"`
	Spec datagen.VectorSpec `json:"spec"`
}

type VectorsResponse struct {
	ID      string           `json:"id"`
	Object  string           `json:"object"`
	Vectors *datagen.Vectors `json:"vectors"`
}

type DeleteResultResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}
