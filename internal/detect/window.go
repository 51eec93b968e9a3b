package detect

const (
	// HeartRateWindowSize covers roughly two minutes at 1 Hz.
	HeartRateWindowSize = 120
	// MotionWindowSize covers roughly thirty seconds of motion readings.
	MotionWindowSize = 30
)

// Window is a bounded FIFO of recent values. Pushing beyond capacity evicts
// the oldest entry. It carries no locking of its own; the owner serializes
// access.
type Window struct {
	values []float64
	size   int
}

func NewWindow(size int) *Window {
	return &Window{size: size}
}

// Push appends a value, evicting the oldest entry once the window is full.
func (w *Window) Push(value float64) {
	w.values = append(w.values, value)
	if len(w.values) > w.size {
		w.values = w.values[1:]
	}
}

func (w *Window) Len() int {
	return len(w.values)
}

// At returns the value at index i, oldest first.
func (w *Window) At(i int) float64 {
	return w.values[i]
}

// Last returns up to n of the most recent values, oldest first.
func (w *Window) Last(n int) []float64 {
	if n > len(w.values) {
		n = len(w.values)
	}

	return w.values[len(w.values)-n:]
}

// Average returns the mean of the windowed values, or 0 when empty.
func (w *Window) Average() float64 {
	if len(w.values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range w.values {
		sum += v
	}

	return sum / float64(len(w.values))
}

// Reset discards all windowed values.
func (w *Window) Reset() {
	w.values = w.values[:0]
}
