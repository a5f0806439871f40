// Package strings provides pooled string-building utilities for Stratum.
package strings

import (
	"fmt"
	"sync"
)

// Builder accumulates string fragments into a single buffer. Unlike
// strings.Builder it can be reset and reused through a Pool.
type Builder struct {
	buf []byte
}

// NewBuilder creates a builder with the given initial capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, capacity)}
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns the accumulated string.
func (b *Builder) String() string {
	return string(b.buf)
}

// Len returns the current length.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// Size selects a builder pool bucket.
type Size int

// Pool bucket sizes.
const (
	Small  Size = iota // < 1 KiB
	Medium             // < 16 KiB
	Large
)

var pools = [3]*sync.Pool{
	{New: func() interface{} { return NewBuilder(256) }},
	{New: func() interface{} { return NewBuilder(4096) }},
	{New: func() interface{} { return NewBuilder(64 * 1024) }},
}

// GetBuilder retrieves a builder from the sized pool.
func GetBuilder(size Size) *Builder {
	return pools[size].Get().(*Builder)
}

// PutBuilder returns a builder to its pool.
func PutBuilder(b *Builder, size Size) {
	b.Reset()
	pools[size].Put(b)
}

// Sprintf formats using a pooled builder to avoid the intermediate
// allocations of fmt.Sprintf on hot paths.
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}

	size := Small
	if estimated := len(format) + len(args)*16; estimated > 16*1024 {
		size = Large
	} else if estimated > 1024 {
		size = Medium
	}

	builder := GetBuilder(size)
	defer PutBuilder(builder, size)

	fmt.Fprintf(builder, format, args...)
	return builder.String()
}

// Join concatenates elements with a delimiter using a pooled builder.
func Join(elems []string, delimiter string) string {
	switch len(elems) {
	case 0:
		return ""
	case 1:
		return elems[0]
	}

	builder := GetBuilder(Small)
	defer PutBuilder(builder, Small)

	for i, s := range elems {
		if i > 0 {
			builder.WriteString(delimiter)
		}
		builder.WriteString(s)
	}
	return builder.String()
}
