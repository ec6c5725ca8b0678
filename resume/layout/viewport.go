package layout

import (
	"sync"
	"time"
)

// Viewport tracks the reported width of one container. Bursts of reports
// inside the debounce window collapse into one update carrying the last
// width. Subscribers are notified outside the lock.
type Viewport struct {
	mu      sync.Mutex
	delay   time.Duration
	pending float64
	timer   *time.Timer
	current Frame
	subs    map[int]func(Frame)
	nextID  int
	closed  bool
}

// NewViewport returns a viewport that waits delay after the last report
// before publishing. A zero delay publishes synchronously.
func NewViewport(delay time.Duration) *Viewport {
	return &Viewport{delay: delay, subs: make(map[int]func(Frame))}
}

// Observe records a measured width.
func (v *Viewport) Observe(width float64) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.pending = width
	if v.delay <= 0 {
		v.mu.Unlock()
		v.flush()
		return
	}
	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(v.delay, v.flush)
	v.mu.Unlock()
}

// Current returns the last published frame.
func (v *Viewport) Current() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Subscribe registers fn for frame changes and returns a func that removes it.
func (v *Viewport) Subscribe(fn func(Frame)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}

// Close stops pending updates and drops all subscribers.
func (v *Viewport) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.subs = map[int]func(Frame){}
}

func (v *Viewport) flush() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.timer = nil
	frame := NewFrame(v.pending)
	if frame == v.current {
		v.mu.Unlock()
		return
	}
	v.current = frame
	subs := make([]func(Frame), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	v.mu.Unlock()

	for _, fn := range subs {
		fn(frame)
	}
}
