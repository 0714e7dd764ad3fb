// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides dense float32 matrices backed by a bump arena.
//
// # Overview
//
// A Matrix is a fixed-shape, row-major block of float32 values. Its memory
// comes either from an Arena, a bump allocator over a caller-supplied byte
// buffer, or from a caller slice via Wrap. Nothing is ever freed
// individually: the arena is reset or dropped as a whole.
//
// # Basic Usage
//
//	import "github.com/born-ml/arenaml/tensor"
//
//	func main() {
//	    a, _ := tensor.NewArena(make([]byte, tensor.KiB(64)))
//
//	    x, _ := tensor.New(a, 2, 3)
//	    _ = x.FillScalar(1)
//
//	    w, _ := tensor.New(a, 3, 4)
//	    _ = w.FillScalar(0.5)
//
//	    z, _ := tensor.MatMul(a, x, w) // (2, 4)
//	    fmt.Print(z)
//	}
//
// # Errors
//
// Every operation validates its operands before touching any output and
// reports failures with one of the sentinel errors re-exported here,
// usually wrapped. Compare with errors.Is:
//
//	if errors.Is(err, tensor.ErrOutOfMemory) {
//	    // grow the arena buffer
//	}
//
// # Aliasing
//
// In-place broadcast operations (AddRowVecInPlace, SubColVecInPlace,
// DivColVecInPlace, SGDInPlace) accept an operand that is exactly the
// destination but reject partial overlap. MatMulInto, TransposeInto and
// the row/column reductions reject any overlap between output and input.
//
// # Concurrency
//
// Arenas and matrices are not safe for concurrent use.
package tensor
