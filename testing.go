package aio

import (
	"sync"

	"github.com/behrlich/go-aio/internal/interfaces"
)

// MockWatcher is the Watcher MockLoop hands back from WatchReadable.
// It tracks whether Cancel has been called, for test assertions.
type MockWatcher struct {
	mu        sync.Mutex
	fd        int
	cancelled bool
	loop      *MockLoop
}

// Cancel implements interfaces.Watcher.
func (w *MockWatcher) Cancel() error {
	w.mu.Lock()
	w.cancelled = true
	w.mu.Unlock()
	w.loop.forget(w.fd)
	return nil
}

// Cancelled reports whether Cancel has been called.
func (w *MockWatcher) Cancelled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancelled
}

// MockLoop is an in-process fake of the two capabilities an Engine
// consumes from a host loop. It runs callbacks synchronously — there
// is no goroutine of its own — which makes tests deterministic without
// needing the real epoll reactor.
type MockLoop struct {
	mu       sync.Mutex
	watchers map[int]func()
	posted   []func()

	watchCalls int
	postCalls  int
}

// NewMockLoop creates an empty MockLoop.
func NewMockLoop() *MockLoop {
	return &MockLoop{watchers: make(map[int]func())}
}

// WatchReadable implements interfaces.Loop.
func (l *MockLoop) WatchReadable(fd int, cb func()) (interfaces.Watcher, error) {
	l.mu.Lock()
	l.watchers[fd] = cb
	l.watchCalls++
	l.mu.Unlock()
	return &MockWatcher{fd: fd, loop: l}, nil
}

// PostCompletion implements interfaces.Loop. The closure is queued,
// not run inline, so tests can exercise both the post and the drain.
func (l *MockLoop) PostCompletion(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.postCalls++
	l.mu.Unlock()
}

// Fire invokes the watcher callback registered for fd, as if the loop
// observed fd become readable.
func (l *MockLoop) Fire(fd int) {
	l.mu.Lock()
	cb := l.watchers[fd]
	l.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// RunPosted runs every completion queued by PostCompletion since the
// last call to RunPosted, in FIFO order.
func (l *MockLoop) RunPosted() {
	l.mu.Lock()
	pending := l.posted
	l.posted = nil
	l.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (l *MockLoop) forget(fd int) {
	l.mu.Lock()
	delete(l.watchers, fd)
	l.mu.Unlock()
}

// WatchCalls returns how many times WatchReadable has been called.
func (l *MockLoop) WatchCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.watchCalls
}

// PostCalls returns how many times PostCompletion has been called.
func (l *MockLoop) PostCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.postCalls
}

// Compile-time interface checks.
var (
	_ interfaces.Loop    = (*MockLoop)(nil)
	_ interfaces.Watcher = (*MockWatcher)(nil)
)
