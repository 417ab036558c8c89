package golden

// Integer is the set of fixed-width element types a tensor buffer may hold.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// ElemWidth selects the element width of a reshuffler output.
type ElemWidth int

const (
	Width8  ElemWidth = 8
	Width32 ElemWidth = 32
)

func (w ElemWidth) String() string {
	switch w {
	case Width8:
		return "int8"
	case Width32:
		return "int32"
	default:
		return "unknown"
	}
}

// ParseElemWidth maps "int8"/"8" and "int32"/"32" to an ElemWidth.
func ParseElemWidth(s string) (ElemWidth, bool) {
	switch s {
	case "int8", "8", "":
		return Width8, true
	case "int32", "32":
		return Width32, true
	default:
		return 0, false
	}
}

// Narrow truncates v to the element width, wrapping like a store into a
// narrower register.
func (w ElemWidth) Narrow(v int64) int64 {
	switch w {
	case Width8:
		return int64(int8(v))
	case Width32:
		return int64(int32(v))
	default:
		return v
	}
}
