package golden

import "fmt"

const (
	kernelALU = "alu"
	kernelMAC = "mac"
)

// ALUMode is the operation selected by the ALU mode CSR.
type ALUMode int

const (
	ALUAdd ALUMode = iota
	ALUSub
	ALUMul
	ALUXor
)

var aluModeNames = [...]string{"add", "sub", "mul", "xor"}

func (m ALUMode) String() string {
	if m < 0 || int(m) >= len(aluModeNames) {
		return fmt.Sprintf("ALUMode(%d)", int(m))
	}
	return aluModeNames[m]
}

// ParseALUMode maps a mode name to its ALUMode.
func ParseALUMode(s string) (ALUMode, error) {
	for i, name := range aluModeNames {
		if s == name {
			return ALUMode(i), nil
		}
	}
	return 0, &ParamError{Kernel: kernelALU, Param: "mode", Value: -1, Reason: fmt.Sprintf("unknown mode %q", s)}
}

// ALU applies mode elementwise to a and b on 64-bit lanes with wraparound.
func ALU(mode ALUMode, a, b []uint64) ([]uint64, error) {
	if mode < ALUAdd || mode > ALUXor {
		return nil, &ParamError{Kernel: kernelALU, Param: "mode", Value: int64(mode), Reason: "must be in [0, 3]"}
	}
	if err := checkLen(kernelALU, "b", len(b), len(a)); err != nil {
		return nil, err
	}
	res := make([]uint64, len(a))
	for i := range a {
		switch mode {
		case ALUAdd:
			res[i] = a[i] + b[i]
		case ALUSub:
			res[i] = a[i] - b[i]
		case ALUMul:
			res[i] = a[i] * b[i]
		case ALUXor:
			res[i] = a[i] ^ b[i]
		}
	}
	return res, nil
}

// MAC returns the elementwise 32-bit product of a and b.
func MAC(a, b []uint32) ([]uint32, error) {
	if err := checkLen(kernelMAC, "b", len(b), len(a)); err != nil {
		return nil, err
	}
	res := make([]uint32, len(a))
	for i := range a {
		res[i] = a[i] * b[i]
	}
	return res, nil
}
