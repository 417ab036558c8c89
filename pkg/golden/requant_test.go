package golden

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func int8Range(p RequantParams) RequantParams {
	p.MinInt, p.MaxInt = -128, 127
	return p
}

func TestRequantizeClipsExample(t *testing.T) {
	t.Parallel()
	p := int8Range(RequantParams{Shift: 2, Multiplier: 1})
	got, err := Requantize(p, []int32{1000})
	if err != nil {
		t.Fatalf("Requantize: %v", err)
	}
	if got[0] != 127 {
		t.Fatalf("got %d want 127", got[0])
	}
}

func TestRequantizeDoubleRoundBoundary(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      int32
		plain   int32
		rounded int32
	}{
		// 3 >> 1 = 1 sits on the half boundary of the final shift.
		{name: "positive", in: 3, plain: 0, rounded: 1},
		// -3 >> 1 = -2, again a half boundary.
		{name: "negative", in: -3, plain: -1, rounded: -2},
		// 1 >> 1 = 0 rounds to 0 either way.
		{name: "below boundary", in: 1, plain: 0, rounded: 0},
		{name: "even", in: 4, plain: 1, rounded: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := int8Range(RequantParams{Shift: 2, Multiplier: 1})
			if got := p.Apply(tc.in); got != tc.plain {
				t.Fatalf("double_round=false: got %d want %d", got, tc.plain)
			}
			p.DoubleRound = true
			if got := p.Apply(tc.in); got != tc.rounded {
				t.Fatalf("double_round=true: got %d want %d", got, tc.rounded)
			}
		})
	}
}

func TestRequantizePipelineOrder(t *testing.T) {
	t.Parallel()
	p := RequantParams{
		InputZP:    10,
		OutputZP:   -5,
		Multiplier: 3,
		Shift:      4,
		MinInt:     math.MinInt32,
		MaxInt:     math.MaxInt32,
	}
	// (110-10)*3 = 300; 300>>3 = 37; 37>>1 = 18; 18-5 = 13
	if got := p.Apply(110); got != 13 {
		t.Fatalf("got %d want 13", got)
	}
	p.DoubleRound = true
	// 37+1 = 38; 38>>1 = 19; 19-5 = 14
	if got := p.Apply(110); got != 14 {
		t.Fatalf("got %d want 14", got)
	}
}

func TestRequantizeWideProduct(t *testing.T) {
	t.Parallel()
	p := RequantParams{
		Multiplier: math.MaxInt32,
		Shift:      32,
		MinInt:     math.MinInt32,
		MaxInt:     math.MaxInt32,
	}
	// (2^31-1)^2 >> 31 = 2^31-2, then >> 1.
	if got := p.Apply(math.MaxInt32); got != 1073741823 {
		t.Fatalf("got %d want 1073741823", got)
	}
}

func TestRequantizeStaysInRange(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(3, 4))
	data := make([]int32, 1<<16)
	for i := range data {
		data[i] = int32(rng.Uint32())
	}
	for _, dr := range []bool{false, true} {
		p := RequantParams{
			InputZP:     -7,
			OutputZP:    12,
			Multiplier:  1 << 20,
			Shift:       30,
			MinInt:      -100,
			MaxInt:      90,
			DoubleRound: dr,
		}
		got, err := Requantize(p, data)
		if err != nil {
			t.Fatalf("Requantize: %v", err)
		}
		for i, v := range got {
			if v < p.MinInt || v > p.MaxInt {
				t.Fatalf("out[%d] = %d outside [%d, %d]", i, v, p.MinInt, p.MaxInt)
			}
			if v != p.Apply(data[i]) {
				t.Fatalf("out[%d] = %d differs from scalar path %d", i, v, p.Apply(data[i]))
			}
		}
	}
}

func TestRequantizeDoesNotModifyInput(t *testing.T) {
	t.Parallel()
	data := []int32{-300, 0, 300}
	p := int8Range(RequantParams{Shift: 1, Multiplier: 1})
	if _, err := Requantize(p, data); err != nil {
		t.Fatalf("Requantize: %v", err)
	}
	if diff := cmp.Diff([]int32{-300, 0, 300}, data); diff != "" {
		t.Fatalf("input modified (-want +got):\n%s", diff)
	}
}

func TestRequantizeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		p    RequantParams
	}{
		{"zero shift", RequantParams{Shift: 0, MaxInt: 1}},
		{"shift too large", RequantParams{Shift: 65, MaxInt: 1}},
		{"inverted clip", RequantParams{Shift: 1, MinInt: 5, MaxInt: 4}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Requantize(tc.p, []int32{1})
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}
