// Package cheader renders integer buffers as C constant declarations so the
// accelerator test programs can compile golden vectors in.
package cheader

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// valuesPerLine bounds the width of generated initializer lists.
const valuesPerLine = 10

// Integer is the set of element types a declaration can hold.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int
}

// Option adjusts a vector declaration.
type Option func(*declOptions)

type declOptions struct {
	alignment int
	section   string
}

// Aligned adds __attribute__((aligned(n))).
func Aligned(n int) Option {
	return func(o *declOptions) { o.alignment = n }
}

// Section places the array in the named linker section.
func Section(name string) Option {
	return func(o *declOptions) { o.section = name }
}

// Scalar formats "ctype name = value;".
func Scalar[T Integer](ctype, name string, value T) string {
	return fmt.Sprintf("%s %s = %s;", ctype, name, formatInt(value))
}

// Vector formats a sized array definition with its initializer list.
func Vector[T Integer](ctype, name string, values []T, opts ...Option) string {
	var o declOptions
	for _, opt := range opts {
		opt(&o)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s[%d]", ctype, name, len(values))
	if o.section != "" {
		fmt.Fprintf(&b, " __attribute__((section(%q)))", o.section)
	}
	if o.alignment > 0 {
		fmt.Fprintf(&b, " __attribute__((aligned(%d)))", o.alignment)
	}
	b.WriteString(" = {")
	for i, v := range values {
		if i%valuesPerLine == 0 {
			b.WriteString("\n    ")
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(formatInt(v))
		if i != len(values)-1 {
			b.WriteByte(',')
		}
	}
	b.WriteString("\n};")
	return b.String()
}

func formatInt[T Integer](v T) string {
	var zero T
	if ^zero > 0 {
		// unsigned
		return strconv.FormatUint(uint64(v), 10)
	}
	return strconv.FormatInt(int64(v), 10)
}

// File accumulates declarations for one header.
type File struct {
	decls []string
}

// Add appends pre-formatted declarations.
func (f *File) Add(decls ...string) {
	f.decls = append(f.decls, decls...)
}

// Len reports the number of declarations.
func (f *File) Len() int {
	return len(f.decls)
}

// String renders the header: the stdint include followed by the declarations
// separated by blank lines.
func (f *File) String() string {
	var b strings.Builder
	b.WriteString("#include <stdint.h>\n\n")
	b.WriteString(strings.Join(f.decls, "\n\n"))
	b.WriteByte('\n')
	return b.String()
}

// WriteTo writes the rendered header to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, f.String())
	return int64(n), err
}
