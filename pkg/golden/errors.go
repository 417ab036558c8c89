package golden

import (
	"errors"
	"fmt"
	"math"
)

// maxExtent bounds every buffer length and padded extent a kernel computes, so
// the index arithmetic, including sums of a few such terms, stays inside int.
const maxExtent = math.MaxInt >> 2

var (
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ShapeError reports a buffer whose length does not match the length implied
// by the kernel parameters.
type ShapeError struct {
	Kernel  string
	Operand string
	Got     int
	Want    int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: operand %s has length %d, want %d", e.Kernel, e.Operand, e.Got, e.Want)
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

// ParamError reports a parameter outside its valid range.
type ParamError struct {
	Kernel string
	Param  string
	Value  int64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s=%d %s", e.Kernel, e.Param, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

func checkLen(kernel, operand string, got, want int) error {
	if got != want {
		return &ShapeError{Kernel: kernel, Operand: operand, Got: got, Want: want}
	}
	return nil
}

func checkPositive(kernel, param string, v int) error {
	if v <= 0 {
		return &ParamError{Kernel: kernel, Param: param, Value: int64(v), Reason: "must be positive"}
	}
	return nil
}

func checkNonNegative(kernel, param string, v int) error {
	if v < 0 {
		return &ParamError{Kernel: kernel, Param: param, Value: int64(v), Reason: "must not be negative"}
	}
	return nil
}

// checkProduct rejects dims whose product exceeds maxExtent. dims must be
// non-negative.
func checkProduct(kernel, param string, dims ...int) error {
	n := 1
	for _, d := range dims {
		if d != 0 && n > maxExtent/d {
			return &ParamError{Kernel: kernel, Param: param, Value: int64(d), Reason: "overflows the addressable buffer size"}
		}
		n *= d
	}
	return nil
}
