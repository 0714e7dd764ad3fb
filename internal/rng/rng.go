// Package rng adapts an injected uniform random source for weight
// initialization.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"

	"github.com/chewxy/math32"

	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

// Source produces uniform values in [0, 1).
type Source interface {
	Next01() float32
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func() float32

// Next01 calls f.
func (f SourceFunc) Next01() float32 { return f() }

// NewMathRand returns a deterministic Source seeded with seed.
func NewMathRand(seed int64) Source {
	//nolint:gosec // weight initialization is not security-sensitive
	r := mrand.New(mrand.NewSource(seed))
	return SourceFunc(r.Float32)
}

// Crypto returns a Source backed by the operating system's entropy pool.
// Only the top 24 bits of each draw are used so the result is exact in
// float32 and stays below 1. A failed read yields 0.
func Crypto() Source {
	return SourceFunc(func() float32 {
		var b [4]byte
		if _, err := rand.Read(b[:]); err != nil {
			return 0
		}
		return float32(binary.LittleEndian.Uint32(b[:])>>8) / (1 << 24)
	})
}

// XavierUniform fills w with values drawn from U(-a, a) where
// a = sqrt(6 / (fanIn + fanOut)).
//
// Each element is (2u - 1) * a for a fresh u from src.
func XavierUniform(w *tensor.Matrix, src Source, fanIn, fanOut int) error {
	const op = "rng.XavierUniform"
	if w == nil || len(w.Data()) == 0 {
		return status.Invalid(op, "nil matrix")
	}
	if src == nil {
		return status.Invalid(op, "nil source")
	}
	if fanIn <= 0 || fanOut <= 0 {
		return status.Invalid(op, "fans %d/%d must be > 0", fanIn, fanOut)
	}

	bound := math32.Sqrt(6 / float32(fanIn+fanOut))
	data := w.Data()
	for i := range data {
		u := src.Next01()
		data[i] = (2*u - 1) * bound
	}
	return nil
}

// XavierUniformDense is XavierUniform with fanIn = w.Cols() and
// fanOut = w.Rows().
func XavierUniformDense(w *tensor.Matrix, src Source) error {
	if w == nil {
		return status.Invalid("rng.XavierUniformDense", "nil matrix")
	}
	return XavierUniform(w, src, w.Cols(), w.Rows())
}
