package buddha

// Buffer is a dense width x height histogram of trajectory-point visits,
// plus the running maximum used for normalization. Cells are float32: for
// any realistic sample count the counters saturate (float32 addition
// plateaus at 2^24) instead of overflowing.
//
// A Buffer is exclusively owned by its render job while the job is running;
// it is safe for concurrent reads only once the job has completed.
type Buffer struct {
	width  int
	height int
	cells  []float32
	max    float32
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		width:  width,
		height: height,
		cells:  make([]float32, width*height),
	}
}

// Width returns the buffer width in cells.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in cells.
func (b *Buffer) Height() int { return b.height }

// At returns the density at (x, y), or 0 outside the buffer.
func (b *Buffer) At(x, y int) float32 {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return 0
	}
	return b.cells[y*b.width+x]
}

// MaxDensity returns the largest cell value observed so far.
func (b *Buffer) MaxDensity() float32 { return b.max }

// add increments one cell by flat index and keeps max current.
func (b *Buffer) add(i int) {
	c := b.cells[i] + 1
	b.cells[i] = c
	if c > b.max {
		b.max = c
	}
}
