package utils

// RingBuffer is a fixed-capacity FIFO window. Once full, every Append drops
// the oldest entry, so the length can never drift past the capacity. Index 0
// is always the oldest retained entry.
type RingBuffer[T any] struct {
	values []T
	head   int
	length int
}

func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	return &RingBuffer[T]{
		values: make([]T, capacity),
	}
}

func (r *RingBuffer[T]) Capacity() int {
	return len(r.values)
}

func (r *RingBuffer[T]) Len() int {
	return r.length
}

func (r *RingBuffer[T]) IsFull() bool {
	return r.length == len(r.values)
}

func (r *RingBuffer[T]) Append(value T) {
	tail := (r.head + r.length) % len(r.values)
	r.values[tail] = value

	if r.length < len(r.values) {
		r.length++
		return
	}

	r.head = (r.head + 1) % len(r.values)
}

func (r *RingBuffer[T]) At(index int) T {
	return r.values[(r.head+index)%len(r.values)]
}

func (r *RingBuffer[T]) Last() T {
	return r.At(r.length - 1)
}

func (r *RingBuffer[T]) Items() []T {
	items := make([]T, 0, r.length)
	for index := 0; index < r.length; index++ {
		items = append(items, r.At(index))
	}

	return items
}
