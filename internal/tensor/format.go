package tensor

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a human-readable dump of m to w:
//
//	name: 2 x 3
//	0.100 0.200 0.700
//	0.333 0.333 0.333
func Fprint(w io.Writer, name string, m *Matrix) error {
	if name == "" {
		name = "(unnamed)"
	}
	if err := checkMatrix("tensor.Fprint", "m", m); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s: %d x %d\n", name, m.rows, m.cols); err != nil {
		return err
	}
	var sb strings.Builder
	for r := 0; r < m.rows; r++ {
		sb.Reset()
		for _, v := range m.data[r*m.cols : (r+1)*m.cols] {
			fmt.Fprintf(&sb, "%0.3f ", v)
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

// String implements fmt.Stringer.
func (m *Matrix) String() string {
	var sb strings.Builder
	if err := Fprint(&sb, "Matrix", m); err != nil {
		return "<invalid matrix>"
	}
	return sb.String()
}
