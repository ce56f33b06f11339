package ring

// Buffer is a circular store of (x, y) int32 pairs indexed relative to the
// most recent write.
//
// The zero value is an uninitialized buffer; call Init (or use New) before
// any other operation. Buffer is not safe for concurrent use.
type Buffer struct {
	xs   []int32
	ys   []int32
	head int
	tail int
}

// New returns an initialized buffer with the given capacity.
func New(capacity int) (*Buffer, error) {
	b := &Buffer{}
	if err := b.Init(capacity); err != nil {
		return nil, err
	}
	return b, nil
}

// Init allocates zero-filled storage for capacity slots.
// It fails with ErrAlreadyInitialized while storage is live; Close first.
func (b *Buffer) Init(capacity int) error {
	if b.xs != nil {
		return ErrAlreadyInitialized
	}
	if err := validateCapacity(capacity); err != nil {
		return err
	}
	b.xs = make([]int32, capacity)
	b.ys = make([]int32, capacity)
	b.head = 0
	b.tail = 0
	return nil
}

// Close releases storage. Closing an uninitialized buffer is a no-op.
func (b *Buffer) Close() {
	b.xs = nil
	b.ys = nil
	b.head = 0
	b.tail = 0
}

// Initialized reports whether storage is live.
func (b *Buffer) Initialized() bool {
	return b.xs != nil
}

// Cap returns the number of slots, or 0 when uninitialized.
func (b *Buffer) Cap() int {
	return len(b.xs)
}

// Len returns the number of stored pairs, at most Cap()-1.
func (b *Buffer) Len() int {
	size := len(b.xs)
	if size == 0 {
		return 0
	}
	return (b.head - b.tail + size) % size
}

// Empty reports whether head == tail.
func (b *Buffer) Empty() bool {
	return b.head == b.tail
}

// Full reports whether the buffer holds Cap()-1 pairs.
func (b *Buffer) Full() bool {
	size := len(b.xs)
	return size > 0 && b.Len() == size-1
}

// Head returns the slot of the most recent write.
func (b *Buffer) Head() int { return b.head }

// Tail returns the slot of the most recent pop.
func (b *Buffer) Tail() int { return b.tail }

// Put stores a pair one slot past head. When that slot is the tail the write
// is rejected with ErrFull and neither index moves.
func (b *Buffer) Put(x, y int32) error {
	size := len(b.xs)
	if size == 0 {
		return ErrNotInitialized
	}

	head := b.head + 1
	if head == size {
		head = 0
	}
	if head == b.tail {
		return ErrFull
	}

	b.xs[head] = x
	b.ys[head] = y
	b.head = head
	return nil
}

// Pop advances tail and returns the pair found there.
//
// Pop succeeds only while the buffer holds exactly Cap()-1 pairs; below that
// it reports ErrNotReady and leaves tail where it was. Together with one Put
// per step this keeps the buffer a window of the last Cap()-1 pairs.
func (b *Buffer) Pop() (x, y int32, err error) {
	size := len(b.xs)
	if size == 0 {
		return 0, 0, ErrNotInitialized
	}
	if b.head == b.tail {
		return 0, 0, ErrEmpty
	}
	if b.Len() != size-1 {
		return 0, 0, ErrNotReady
	}

	b.tail++
	if b.tail == size {
		b.tail = 0
	}
	return b.xs[b.tail], b.ys[b.tail], nil
}

// PeekBack returns the pair written offset steps before head without moving
// any index. Offset 0 is the most recent write; offsets up to Cap() are
// accepted and wrap, so Cap() aliases the head slot.
func (b *Buffer) PeekBack(offset int) (x, y int32, err error) {
	size := len(b.xs)
	if size == 0 {
		return 0, 0, ErrNotInitialized
	}
	if offset < 0 || offset > size {
		return 0, 0, ErrBadArgument
	}
	if b.head == b.tail {
		return 0, 0, ErrEmpty
	}

	slot := (size + b.head - offset) % size
	return b.xs[slot], b.ys[slot], nil
}

// Reset zeroes storage and rewinds both indices without releasing memory.
func (b *Buffer) Reset() {
	for i := range b.xs {
		b.xs[i] = 0
		b.ys[i] = 0
	}
	b.head = 0
	b.tail = 0
}
