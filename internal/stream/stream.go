// Package stream provides packed item buffers for AXI-stream bus
// transfer. One item is a fixed number of int32 words (the bus's
// packed width); a Buffer is a contiguous items-by-words block, the
// shape the wrapper's work call consumes and produces.
package stream

import "fmt"

// Buffer holds items of a fixed word width in contiguous storage.
type Buffer struct {
	words int
	data  []int32
}

// NewBuffer allocates a buffer with capacity for items entries of the
// given word width. Length starts at items (zero filled); use
// NewEmpty plus Append to build incrementally.
func NewBuffer(words, items int) *Buffer {
	if words <= 0 {
		panic("stream: item width must be positive")
	}
	return &Buffer{words: words, data: make([]int32, words*items)}
}

// NewEmpty allocates a zero-length buffer of the given word width.
func NewEmpty(words int) *Buffer {
	if words <= 0 {
		panic("stream: item width must be positive")
	}
	return &Buffer{words: words}
}

// Words returns the item width in int32 words.
func (b *Buffer) Words() int { return b.words }

// Items returns the number of items currently stored.
func (b *Buffer) Items() int { return len(b.data) / b.words }

// Item returns the i-th item as a slice view into the buffer.
func (b *Buffer) Item(i int) []int32 {
	off := i * b.words
	return b.data[off : off+b.words]
}

// Append adds one item. The word count must match the buffer width.
func (b *Buffer) Append(item ...int32) error {
	if len(item) != b.words {
		return fmt.Errorf("item has %d words, buffer expects %d", len(item), b.words)
	}
	b.data = append(b.data, item...)
	return nil
}

// Data returns the underlying packed storage. Callers passing this
// across the shared-library boundary must keep the buffer alive for
// the duration of the call.
func (b *Buffer) Data() []int32 { return b.data }

// Truncate shortens the buffer to n items.
func (b *Buffer) Truncate(n int) {
	b.data = b.data[:n*b.words]
}

// Plan allocates one buffer per bus for the given packed widths.
// items may be zero for output staging that the callee fills.
func Plan(wordWidths []int, items int) []*Buffer {
	out := make([]*Buffer, len(wordWidths))
	for i, w := range wordWidths {
		out[i] = NewBuffer(w, items)
	}
	return out
}
