package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v5"

	"github.com/snax-hw/goldengen/pkg/golden"
)

func newTestEcho() *echo.Echo {
	server := NewServer(NewResultStore(4), nil)
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// goldenBody mirrors GoldenResult with a concrete output type.
type goldenBody[T any] struct {
	ID           string `json:"id"`
	Object       string `json:"object"`
	Kernel       string `json:"kernel"`
	Output       []T    `json:"output"`
	Shape        []int  `json:"shape"`
	Weights      []T    `json:"weights"`
	WeightsShape []int  `json:"weights_shape"`
}

func decodeGolden[T any](t *testing.T, rec *httptest.ResponseRecorder) goldenBody[T] {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var out goldenBody[T]
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(out.ID, "golden_") {
		t.Fatalf("unexpected id %q", out.ID)
	}
	return out
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var out ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode error: %v body=%s", err, rec.Body.String())
	}
	return out
}

func TestHealth(t *testing.T) {
	t.Parallel()
	rec := doJSON(t, newTestEcho(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("health: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestBlockGemmEndpoint(t *testing.T) {
	t.Parallel()
	e := newTestEcho()
	// Single 2x2x2 tile: C = (A - 1) * (B - 0) + C0.
	body := `{
		"params": {"m": 1, "k": 1, "n": 1, "row": 2, "size": 2, "col": 2, "subtraction_a": 1},
		"a": [2, 3, 4, 5],
		"b": [1, 0, 0, 1],
		"c": [10, 20, 30, 40]
	}`
	res := decodeGolden[int32](t, doJSON(t, e, http.MethodPost, "/v1/golden/block-gemm", body))
	if res.Kernel != "block_gemm" {
		t.Fatalf("kernel: got %q", res.Kernel)
	}
	// B tile is column-major, so B = I and C = (A - 1) + C0.
	if diff := cmp.Diff([]int32{11, 22, 33, 44}, res.Output); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 1, 2, 2}, res.Shape); diff != "" {
		t.Fatalf("shape mismatch (-want +got):\n%s", diff)
	}
}

func TestConvEndpoints(t *testing.T) {
	t.Parallel()
	e := newTestEcho()
	// 1x2x2x1 input, one 1x1 filter of weight 3.
	body := `{
		"params": {"batch": 1, "h": 2, "w": 2, "cin": 1, "cout": 1, "kh": 1, "kw": 1, "stride_h": 1, "stride_w": 1},
		"input": [1, -2, 3, -4],
		"kernel": [3]
	}`
	conv := decodeGolden[int32](t, doJSON(t, e, http.MethodPost, "/v1/golden/conv2d", body))
	if diff := cmp.Diff([]int32{3, -6, 9, -12}, conv.Output); diff != "" {
		t.Fatalf("conv2d mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 2, 1}, conv.Shape); diff != "" {
		t.Fatalf("conv2d shape mismatch (-want +got):\n%s", diff)
	}

	im2col := decodeGolden[int8](t, doJSON(t, e, http.MethodPost, "/v1/golden/im2col", body))
	if diff := cmp.Diff([]int8{1, -2, 3, -4}, im2col.Output); diff != "" {
		t.Fatalf("patches mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 1}, im2col.WeightsShape); diff != "" {
		t.Fatalf("weights shape mismatch (-want +got):\n%s", diff)
	}
}

func TestReshuffleEndpoint(t *testing.T) {
	t.Parallel()
	e := newTestEcho()
	// 1x1 outer loops over a 2x2 block read transposed; 200 wraps in int8.
	body := `{
		"params": {"temp_loop_0": 1, "temp_loop_1": 1, "spatial_len_0": 2, "spatial_len_1": 2,
		           "spatial_stride_0": 2, "spatial_stride_1": 1},
		"data": [1, 2, 200, 4]
	}`
	res := decodeGolden[int64](t, doJSON(t, e, http.MethodPost, "/v1/golden/reshuffle", body))
	if diff := cmp.Diff([]int64{1, -56, 2, 4}, res.Output); diff != "" {
		t.Fatalf("reshuffle mismatch (-want +got):\n%s", diff)
	}

	bad := strings.Replace(body, `"spatial_stride_1": 1}`, `"spatial_stride_1": 1, "width": "int16"}`, 1)
	rec := doJSON(t, e, http.MethodPost, "/v1/golden/reshuffle", bad)
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Error.Type != "invalid_request_error" {
		t.Fatalf("bad width: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRequantizeEndpoint(t *testing.T) {
	t.Parallel()
	e := newTestEcho()
	body := `{
		"params": {"multiplier": 1, "shift": 1, "min_int": -128, "max_int": 127, "double_round": true},
		"data": [3, -3, 1000]
	}`
	res := decodeGolden[int32](t, doJSON(t, e, http.MethodPost, "/v1/golden/requantize", body))
	if diff := cmp.Diff([]int32{2, -2, 127}, res.Output); diff != "" {
		t.Fatalf("requantize mismatch (-want +got):\n%s", diff)
	}
}

func TestMaxPoolEndpoints(t *testing.T) {
	t.Parallel()
	e := newTestEcho()
	body3 := `{
		"params": {"pool_w": 2, "pool_h": 2, "stride_w": 2, "stride_h": 2},
		"h": 2, "w": 2, "c": 1,
		"data": [-5, 7, 1, -9]
	}`
	res := decodeGolden[int32](t, doJSON(t, e, http.MethodPost, "/v1/golden/maxpool3d", body3))
	if diff := cmp.Diff([]int32{7}, res.Output); diff != "" {
		t.Fatalf("maxpool3d mismatch (-want +got):\n%s", diff)
	}

	data := make([]string, 8)
	for i := range data {
		data[i] = "-1"
	}
	body4 := `{
		"params": {"pool_w": 1, "pool_h": 1, "stride_w": 1, "stride_h": 1, "pad_w": 1},
		"c8": 1, "h": 1, "w": 1,
		"data": [` + strings.Join(data, ",") + `]
	}`
	res = decodeGolden[int32](t, doJSON(t, e, http.MethodPost, "/v1/golden/maxpool4d", body4))
	if diff := cmp.Diff([]int{1, 1, 3, 8}, res.Shape); diff != "" {
		t.Fatalf("maxpool4d shape mismatch (-want +got):\n%s", diff)
	}
	// Padding columns read as zero; the centre column keeps -1.
	if res.Output[0] != 0 || res.Output[8] != -1 || res.Output[16] != 0 {
		t.Fatalf("maxpool4d output: %v", res.Output)
	}
}

func TestElementwiseEndpoints(t *testing.T) {
	t.Parallel()
	e := newTestEcho()
	alu := decodeGolden[uint64](t, doJSON(t, e, http.MethodPost, "/v1/golden/alu",
		`{"mode": "sub", "a": [5, 0], "b": [3, 1]}`))
	if diff := cmp.Diff([]uint64{2, 18446744073709551615}, alu.Output); diff != "" {
		t.Fatalf("alu mismatch (-want +got):\n%s", diff)
	}
	mac := decodeGolden[uint32](t, doJSON(t, e, http.MethodPost, "/v1/golden/mac",
		`{"a": [7, 65536], "b": [6, 65536]}`))
	if diff := cmp.Diff([]uint32{42, 0}, mac.Output); diff != "" {
		t.Fatalf("mac mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()
	e := newTestEcho()
	tests := []struct {
		name    string
		path    string
		body    string
		status  int
		errType string
	}{
		{"malformed json", "/v1/golden/mac", `{"a": [1,`, http.StatusBadRequest, "invalid_request_error"},
		{"empty body", "/v1/golden/mac", ``, http.StatusBadRequest, "invalid_request_error"},
		{"unknown field", "/v1/golden/mac", `{"a": [], "b": [], "c": []}`, http.StatusBadRequest, "invalid_request_error"},
		{"length mismatch", "/v1/golden/mac", `{"a": [1, 2], "b": [1]}`, http.StatusUnprocessableEntity, "shape_mismatch"},
		{"bad mode", "/v1/golden/alu", `{"mode": "div", "a": [], "b": []}`, http.StatusBadRequest, "invalid_parameter"},
		{"bad shift", "/v1/golden/requantize", `{"params": {"shift": 0}, "data": [1]}`, http.StatusBadRequest, "invalid_parameter"},
		{"negative pool extent", "/v1/golden/maxpool3d",
			`{"params": {"pool_w": 1, "pool_h": 1, "stride_w": 1, "stride_h": 1, "pad_w": 2, "pad_h": 2}, "h": -1, "w": -2, "c": 1, "data": [0, 0]}`,
			http.StatusBadRequest, "invalid_parameter"},
		{"short operand", "/v1/golden/block-gemm",
			`{"params": {"m": 1, "k": 1, "n": 1, "row": 2, "size": 2, "col": 2}, "a": [1], "b": [1, 2, 3, 4]}`,
			http.StatusUnprocessableEntity, "shape_mismatch"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, tc.path, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status: got %d want %d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if got := decodeError(t, rec).Error.Type; got != tc.errType {
				t.Fatalf("error type: got %q want %q", got, tc.errType)
			}
		})
	}
}

func TestResultLifecycle(t *testing.T) {
	t.Parallel()
	e := newTestEcho()
	created := decodeGolden[uint32](t, doJSON(t, e, http.MethodPost, "/v1/golden/mac", `{"a": [2], "b": [3]}`))

	got := decodeGolden[uint32](t, doJSON(t, e, http.MethodGet, "/v1/golden/"+created.ID, ""))
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("stored result mismatch (-created +got):\n%s", diff)
	}

	rec := doJSON(t, e, http.MethodDelete, "/v1/golden/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodGet, "/v1/golden/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d", rec.Code)
	}
}

func TestResultStoreEvictsOldest(t *testing.T) {
	t.Parallel()
	s := NewResultStore(2)
	for _, id := range []string{"a", "b", "c"} {
		s.Put(GoldenResult{ID: id})
	}
	if _, ok := s.Get("a"); ok {
		t.Fatal("oldest result should be evicted")
	}
	if s.Len() != 2 {
		t.Fatalf("len: got %d", s.Len())
	}
	if !s.Delete("b") || s.Delete("b") {
		t.Fatal("delete should succeed exactly once")
	}
	s.Put(GoldenResult{ID: "d"})
	s.Put(GoldenResult{ID: "e"})
	if _, ok := s.Get("c"); ok {
		t.Fatal("c should be evicted after d and e")
	}
}

func TestVectorsEndpoint(t *testing.T) {
	t.Parallel()
	e := newTestEcho()
	body := `{"seed": 9, "spec": {"name": "m", "mac": {"length": 5}}}`
	first := doJSON(t, e, http.MethodPost, "/v1/vectors", body)
	if first.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", first.Code, first.Body.String())
	}
	var a, b struct {
		ID      string `json:"id"`
		Vectors struct {
			Kernel string `json:"kernel"`
			Arrays []struct {
				Name   string   `json:"name"`
				Values []uint32 `json:"values"`
			} `json:"arrays"`
		} `json:"vectors"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	second := doJSON(t, e, http.MethodPost, "/v1/vectors", body)
	if err := json.Unmarshal(second.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Vectors.Kernel != "mac" || len(a.Vectors.Arrays) != 4 {
		t.Fatalf("unexpected vectors: %+v", a.Vectors)
	}
	if diff := cmp.Diff(a.Vectors, b.Vectors); diff != "" {
		t.Fatalf("same seed must give same vectors (-first +second):\n%s", diff)
	}
	if a.ID == b.ID {
		t.Fatal("each response needs its own id")
	}

	rec := doJSON(t, e, http.MethodPost, "/v1/vectors", `{"seed": 1, "spec": {"name": "none"}}`)
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Error.Type != "invalid_request_error" {
		t.Fatalf("empty spec: got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodPost, "/v1/vectors", `{"spec": {"alu": {"mode": "div", "length": 1}}}`)
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Error.Type != "invalid_parameter" {
		t.Fatalf("bad alu mode: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	res, err := Evaluate("mac", strings.NewReader(`{"a": [3], "b": [4]}`))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Kernel != "mac" || res.ID != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if diff := cmp.Diff([]uint32{12}, res.Output); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	// Route names are accepted too.
	if _, err := Evaluate("block-gemm", strings.NewReader(`{"params": {}}`)); !errors.Is(err, golden.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter, got %v", err)
	}
	if _, err := Evaluate("softmax", strings.NewReader(`{}`)); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if got := len(Kernels()); got != 9 {
		t.Fatalf("expected 9 kernels, got %d", got)
	}
}
