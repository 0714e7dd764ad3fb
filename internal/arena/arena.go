// Package arena implements a fixed-capacity bump allocator over a caller
// supplied byte buffer.
//
// Allocations are never freed individually. Every slice handed out stays
// valid until the arena is Reset or the backing buffer is dropped.
// An Arena is not safe for concurrent use.
package arena

import (
	"fmt"
	"unsafe"

	"github.com/born-ml/arenaml/internal/status"
)

// Align is the alignment of every allocation (pointer size).
const Align = int(unsafe.Sizeof(uintptr(0)))

// KiB returns n kibibytes.
func KiB(n int) int { return n << 10 }

// MiB returns n mebibytes.
func MiB(n int) int { return n << 20 }

// Arena hands out aligned, non-overlapping regions of buf.
type Arena struct {
	buf []byte
	off int // 0 <= off <= len(buf)
}

// New creates an arena over buf. The arena owns buf from now on.
func New(buf []byte) (*Arena, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("arena: empty buffer: %w", status.ErrInvalidArgument)
	}
	return &Arena{buf: buf}, nil
}

// Alloc returns size bytes aligned to Align.
//
// A zero-size request returns a nil slice and consumes nothing. When the
// request does not fit, ErrOutOfMemory is returned and the arena is left
// untouched. The returned slice has its capacity clipped so appends can
// never spill into a neighbouring allocation.
func (a *Arena) Alloc(size int) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("arena: nil arena: %w", status.ErrInvalidArgument)
	}
	if size < 0 {
		return nil, fmt.Errorf("arena: negative size %d: %w", size, status.ErrInvalidArgument)
	}
	if size == 0 {
		return nil, nil
	}

	start := a.alignedOffset()
	if start > len(a.buf) || size > len(a.buf)-start {
		return nil, fmt.Errorf("arena: alloc %d bytes at offset %d of %d: %w",
			size, start, len(a.buf), status.ErrOutOfMemory)
	}

	end := start + size
	a.off = end
	return a.buf[start:end:end], nil
}

// AllocFloat32 returns a []float32 of n elements carved from the arena.
// The contents are whatever the buffer held before.
func (a *Arena) AllocFloat32(n int) ([]float32, error) {
	if n < 0 {
		return nil, fmt.Errorf("arena: negative element count %d: %w", n, status.ErrInvalidArgument)
	}
	b, err := a.Alloc(n * 4)
	if err != nil || b == nil {
		return nil, err
	}
	//nolint:gosec // region is aligned to Align and exactly n*4 bytes long
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), n), nil
}

// alignedOffset rounds the current offset up so that the absolute address
// of the next allocation is a multiple of Align.
func (a *Arena) alignedOffset() int {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))
	addr := base + uintptr(a.off)
	pad := (uintptr(Align) - addr%uintptr(Align)) % uintptr(Align)
	return a.off + int(pad)
}

// FreeBytes reports capacity minus the current offset. It does not account
// for padding the next allocation may need.
func (a *Arena) FreeBytes() int {
	if a == nil {
		return 0
	}
	return len(a.buf) - a.off
}

// Cap returns the arena capacity in bytes.
func (a *Arena) Cap() int {
	if a == nil {
		return 0
	}
	return len(a.buf)
}

// Used returns the current offset, padding included.
func (a *Arena) Used() int {
	if a == nil {
		return 0
	}
	return a.off
}

// Reset rewinds the arena to empty. Every slice previously returned by
// Alloc aliases memory that later allocations will hand out again.
func (a *Arena) Reset() {
	if a != nil {
		a.off = 0
	}
}
