package golden

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestALUModes(t *testing.T) {
	t.Parallel()
	a := []uint64{5, 0, math.MaxUint64}
	b := []uint64{3, 1, 2}

	tests := []struct {
		mode ALUMode
		want []uint64
	}{
		{ALUAdd, []uint64{8, 1, 1}},
		{ALUSub, []uint64{2, math.MaxUint64, math.MaxUint64 - 2}},
		{ALUMul, []uint64{15, 0, math.MaxUint64 - 1}},
		{ALUXor, []uint64{6, 1, math.MaxUint64 ^ 2}},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			got, err := ALU(tc.mode, a, b)
			if err != nil {
				t.Fatalf("ALU: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseALUMode(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"add", "sub", "mul", "xor"} {
		m, err := ParseALUMode(name)
		if err != nil {
			t.Fatalf("ParseALUMode(%q): %v", name, err)
		}
		if m.String() != name {
			t.Fatalf("round trip: got %q want %q", m.String(), name)
		}
	}
	if _, err := ParseALUMode("div"); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := ALU(ALUMode(7), nil, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestMAC(t *testing.T) {
	t.Parallel()
	got, err := MAC([]uint32{99, 67, 39, 1 << 16}, []uint32{86, 10, 14, 1 << 16})
	if err != nil {
		t.Fatalf("MAC: %v", err)
	}
	if diff := cmp.Diff([]uint32{8514, 670, 546, 0}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if _, err := MAC([]uint32{1}, nil); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}
