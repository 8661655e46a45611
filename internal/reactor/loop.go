//go:build linux

// Package reactor provides a minimal epoll-based event loop satisfying
// the two capabilities the aio Engine consumes from a host loop
// (registering a readable-fd watcher, posting a completion closure).
// It exists to make the engine runnable in tests and examples without
// a production event loop on hand — it is deliberately tiny compared
// to a real loop (no timers, no other fd types).
package reactor

import (
	"encoding/binary"
	"errors"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/behrlich/go-aio/internal/interfaces"
)

// Watcher cancels a single fd registration. Cancel does not close the fd.
type Watcher struct {
	loop *Loop
	fd   int
}

// Cancel stops delivering callbacks for the watched fd.
func (w *Watcher) Cancel() error {
	return w.loop.unwatch(w.fd)
}

// Loop is a single-goroutine epoll reactor. WatchReadable and
// PostCompletion are safe to call only from the loop goroutine (i.e.
// from within a callback Run is currently dispatching); Stop is safe
// to call from any goroutine.
type Loop struct {
	epfd   int
	stopfd int

	mu       sync.Mutex
	watchers map[int]func()
	post     []func()
	running  bool
}

// NewLoop creates an epoll instance and the internal eventfd used to
// wake Run out of epoll_wait when Stop is called.
func NewLoop() (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	stopfd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, err
	}
	l := &Loop{epfd: epfd, stopfd: stopfd, watchers: make(map[int]func())}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, stopfd, &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(stopfd)}); err != nil {
		unix.Close(stopfd)
		unix.Close(epfd)
		return nil, err
	}
	return l, nil
}

// WatchReadable registers fd for EPOLLIN; cb runs on the loop goroutine
// whenever fd becomes readable. One watcher per fd.
func (l *Loop) WatchReadable(fd int, cb func()) (interfaces.Watcher, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.watchers[fd]; exists {
		return nil, errors.New("reactor: fd already watched")
	}
	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return nil, err
	}
	l.watchers[fd] = cb
	return &Watcher{loop: l, fd: fd}, nil
}

func (l *Loop) unwatch(fd int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.watchers[fd]; !exists {
		return nil
	}
	delete(l.watchers, fd)
	return unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// PostCompletion queues fn to run on the next loop iteration, after
// the current batch of watcher callbacks has been dispatched.
func (l *Loop) PostCompletion(fn func()) {
	l.mu.Lock()
	l.post = append(l.post, fn)
	l.mu.Unlock()
}

// Run dispatches events until Stop is called or a wait error occurs.
func (l *Loop) Run() error {
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()

	var events [64]unix.EpollEvent
	for {
		l.mu.Lock()
		running := l.running
		l.mu.Unlock()
		if !running {
			return nil
		}

		n, err := unix.EpollWait(l.epfd, events[:], -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			if fd == l.stopfd {
				var scratch [8]byte
				unix.Read(l.stopfd, scratch[:])
				continue
			}
			l.mu.Lock()
			cb := l.watchers[fd]
			l.mu.Unlock()
			if cb != nil {
				cb()
			}
		}

		l.mu.Lock()
		pending := l.post
		l.post = nil
		l.mu.Unlock()
		for _, fn := range pending {
			fn()
		}
	}
}

// Stop interrupts Run. Safe to call from any goroutine.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.running = false
	l.mu.Unlock()

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	unix.Write(l.stopfd, buf[:])
}

// Alive reports whether the loop has any registered fd watchers beyond
// its own internal stop fd, or any completions queued. A loop that
// attaches an engine is alive for as long as the engine is attached;
// closing the engine (which cancels its eventfd watcher) is what makes
// the loop not-alive again.
func (l *Loop) Alive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.watchers) > 0 || len(l.post) > 0
}

// Close releases the epoll instance and the internal stop eventfd.
func (l *Loop) Close() error {
	unix.Close(l.stopfd)
	return unix.Close(l.epfd)
}

var _ interfaces.Loop = (*Loop)(nil)
