// Package api serves golden kernel outputs over HTTP so verification tooling
// outside Go can request reference results.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/snax-hw/goldengen/internal/datagen"
	"github.com/snax-hw/goldengen/internal/logger"
	"github.com/snax-hw/goldengen/pkg/golden"
)

type Server struct {
	store *ResultStore
	log   logger.Logger
	clock func() time.Time
}

func NewServer(store *ResultStore, log logger.Logger) *Server {
	if store == nil {
		store = NewResultStore(0)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		store: store,
		log:   log,
		clock: time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)

	for _, k := range kernels {
		e.POST("/v1/golden/"+k.route, s.goldenHandler(k))
	}

	e.GET("/v1/golden/:id", s.handleGetResult)
	e.DELETE("/v1/golden/:id", s.handleDeleteResult)

	e.POST("/v1/vectors", s.handleVectors)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

// kernel binds a route to a request decoder and a golden kernel.
type kernel struct {
	name  string
	route string
	run   func(io.Reader) (GoldenResult, error)
}

var kernels = []kernel{
	{"block_gemm", "block-gemm", decodeAndRun(runBlockGemm)},
	{"im2col", "im2col", decodeAndRun(runIm2Col)},
	{"conv2d", "conv2d", decodeAndRun(runConv2D)},
	{"reshuffle", "reshuffle", decodeAndRun(runReshuffle)},
	{"requantize", "requantize", decodeAndRun(runRequantize)},
	{"maxpool3d", "maxpool3d", decodeAndRun(runMaxPool3D)},
	{"maxpool4d", "maxpool4d", decodeAndRun(runMaxPool4D)},
	{"alu", "alu", decodeAndRun(runALU)},
	{"mac", "mac", decodeAndRun(runMAC)},
}

func decodeAndRun[Req any](run func(Req) (GoldenResult, error)) func(io.Reader) (GoldenResult, error) {
	return func(r io.Reader) (GoldenResult, error) {
		req, err := decodeJSON[Req](r)
		if err != nil {
			return GoldenResult{}, err
		}
		return run(req)
	}
}

// Kernels lists the kernel names Evaluate accepts.
func Kernels() []string {
	names := make([]string, len(kernels))
	for i, k := range kernels {
		names[i] = k.name
	}
	return names
}

// Evaluate decodes a request body for the named kernel and computes its
// golden output. The result carries no ID.
func Evaluate(name string, body io.Reader) (GoldenResult, error) {
	for _, k := range kernels {
		if k.name == name || k.route == name {
			res, err := k.run(body)
			if err != nil {
				return GoldenResult{}, err
			}
			res.Object = "golden.result"
			res.Kernel = k.name
			return res, nil
		}
	}
	return GoldenResult{}, newInvalidRequest(fmt.Sprintf("unknown kernel %q", name))
}

func (s *Server) goldenHandler(k kernel) echo.HandlerFunc {
	return func(c *echo.Context) error {
		res, err := k.run(c.Request().Body)
		if err != nil {
			return s.writeFailure(c, err)
		}
		res.ID = newResultID()
		res.Object = "golden.result"
		res.CreatedAt = s.clock().Unix()
		res.Kernel = k.name
		s.store.Put(res)

		s.log.Debug("golden result", "id", res.ID, "kernel", k.name, "shape", res.Shape)
		return writeJSON(c, http.StatusOK, res)
	}
}

func (s *Server) handleGetResult(c *echo.Context) error {
	id := c.Param("id")
	res, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "result not found")
	}
	return writeJSON(c, http.StatusOK, res)
}

func (s *Server) handleDeleteResult(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "result not found")
	}
	return writeJSON(c, http.StatusOK, DeleteResultResp{
		ID:      id,
		Object:  "golden.result.deleted",
		Deleted: true,
	})
}

func (s *Server) handleVectors(c *echo.Context) error {
	req, err := decodeJSON[VectorsRequest](c.Request().Body)
	if err != nil {
		return s.writeFailure(c, err)
	}
	ctx := logger.WithContext(c.Request().Context(), s.log)
	vecs, err := generateVectors(ctx, req)
	if err != nil {
		return s.writeFailure(c, err)
	}
	return writeJSON(c, http.StatusOK, VectorsResponse{
		ID:      newVectorsID(),
		Object:  "vectors",
		Vectors: vecs,
	})
}

func generateVectors(ctx context.Context, req VectorsRequest) (*datagen.Vectors, error) {
	if _, err := req.Spec.Kernel(); err != nil {
		return nil, newInvalidRequest(err.Error())
	}
	if err := req.Spec.Validate(); err != nil {
		if isKernelError(err) {
			return nil, err
		}
		return nil, newInvalidRequest(err.Error())
	}
	return datagen.Generate(ctx, req.Spec, datagen.NewRand(req.Seed, 0))
}

func isKernelError(err error) bool {
	status, _ := errorStatus(err)
	return status != http.StatusInternalServerError
}

func runBlockGemm(req BlockGemmRequest) (GoldenResult, error) {
	p := golden.GemmParams{
		M: req.Params.M, K: req.Params.K, N: req.Params.N,
		Row: req.Params.Row, Size: req.Params.Size, Col: req.Params.Col,
		SubtractionA: req.Params.SubtractionA,
		SubtractionB: req.Params.SubtractionB,
	}
	if err := p.Validate(); err != nil {
		return GoldenResult{}, err
	}
	c := req.C
	if c == nil {
		c = make([]int32, p.Layout().CLen())
	}
	out, err := golden.BlockGemm(p, req.A, req.B, c)
	if err != nil {
		return GoldenResult{}, err
	}
	return GoldenResult{Output: out, Shape: []int{p.M, p.N, p.Row, p.Col}}, nil
}

func (p ConvParams) toGolden() golden.ConvParams {
	return golden.ConvParams{
		Batch: p.Batch, InH: p.H, InW: p.W, InC: p.Cin,
		OutC: p.Cout, KH: p.Kh, KW: p.Kw,
		StrideH: p.StrideH, StrideW: p.StrideW,
		PadH: p.PadH, PadW: p.PadW,
	}
}

func runIm2Col(req ConvRequest) (GoldenResult, error) {
	p := req.Params.toGolden()
	patches, weights, err := golden.Im2Col(p, req.Input, req.Kernel)
	if err != nil {
		return GoldenResult{}, err
	}
	outH, outW := p.OutDims()
	cols := p.PatchLen()
	return GoldenResult{
		Output:       patches,
		Shape:        []int{p.Batch * outH * outW, cols},
		Weights:      weights,
		WeightsShape: []int{cols, p.OutC},
	}, nil
}

func runConv2D(req ConvRequest) (GoldenResult, error) {
	p := req.Params.toGolden()
	out, err := golden.Conv2D(p, req.Input, req.Kernel)
	if err != nil {
		return GoldenResult{}, err
	}
	outH, outW := p.OutDims()
	return GoldenResult{Output: out, Shape: []int{p.Batch, outH, outW, p.OutC}}, nil
}

func runReshuffle(req ReshuffleRequest) (GoldenResult, error) {
	w, ok := golden.ParseElemWidth(req.Params.Width)
	if !ok {
		return GoldenResult{}, newInvalidRequest("width must be int8 or int32")
	}
	p := golden.ReshuffleParams{
		TempLoop0: req.Params.TempLoop0, TempLoop1: req.Params.TempLoop1,
		SpatialLen0: req.Params.SpatialLen0, SpatialLen1: req.Params.SpatialLen1,
		TempStride0: req.Params.TempStride0, TempStride1: req.Params.TempStride1,
		SpatialStride0: req.Params.SpatialStride0, SpatialStride1: req.Params.SpatialStride1,
		Width: w,
	}
	out, err := golden.ReshuffleWidth(p, req.Data)
	if err != nil {
		return GoldenResult{}, err
	}
	return GoldenResult{Output: out, Shape: []int{len(out)}}, nil
}

func runRequantize(req RequantRequest) (GoldenResult, error) {
	p := golden.RequantParams{
		InputZP:     req.Params.InputZP,
		OutputZP:    req.Params.OutputZP,
		Multiplier:  req.Params.Multiplier,
		Shift:       req.Params.Shift,
		MinInt:      req.Params.MinInt,
		MaxInt:      req.Params.MaxInt,
		DoubleRound: req.Params.DoubleRound,
	}
	out, err := golden.Requantize(p, req.Data)
	if err != nil {
		return GoldenResult{}, err
	}
	return GoldenResult{Output: out, Shape: []int{len(out)}}, nil
}

func (p PoolParams) toGolden() golden.PoolParams {
	return golden.PoolParams{
		PoolW: p.PoolW, PoolH: p.PoolH,
		StrideW: p.StrideW, StrideH: p.StrideH,
		PadW: p.PadW, PadH: p.PadH,
	}
}

func runMaxPool3D(req MaxPool3DRequest) (GoldenResult, error) {
	out, dims, err := golden.MaxPool3D(req.Params.toGolden(), golden.Dims3{H: req.H, W: req.W, C: req.C}, req.Data)
	if err != nil {
		return GoldenResult{}, err
	}
	return GoldenResult{Output: out, Shape: []int{dims.H, dims.W, dims.C}}, nil
}

func runMaxPool4D(req MaxPool4DRequest) (GoldenResult, error) {
	out, dims, err := golden.MaxPool4D(req.Params.toGolden(), golden.Dims4{C8: req.C8, H: req.H, W: req.W}, req.Data)
	if err != nil {
		return GoldenResult{}, err
	}
	return GoldenResult{Output: out, Shape: []int{dims.C8, dims.H, dims.W, golden.Lanes}}, nil
}

func runALU(req ALURequest) (GoldenResult, error) {
	mode, err := golden.ParseALUMode(req.Mode)
	if err != nil {
		return GoldenResult{}, err
	}
	out, err := golden.ALU(mode, req.A, req.B)
	if err != nil {
		return GoldenResult{}, err
	}
	return GoldenResult{Output: out, Shape: []int{len(out)}}, nil
}

func runMAC(req MACRequest) (GoldenResult, error) {
	out, err := golden.MAC(req.A, req.B)
	if err != nil {
		return GoldenResult{}, err
	}
	return GoldenResult{Output: out, Shape: []int{len(out)}}, nil
}
