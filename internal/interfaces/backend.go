// Package interfaces provides internal interface definitions for go-aio.
// These are separate from the public interfaces to avoid circular imports
// between the root package and its internal packages.
package interfaces

// Logger interface for optional logging.
type Logger interface {
	Printf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Observer interface for metrics collection.
// Implementations must be thread-safe as methods are called from the
// loop thread and may be read concurrently by another goroutine.
type Observer interface {
	ObserveSubmit(fragments int, latencyNs uint64, success bool)
	ObserveComplete(bytes uint64, latencyNs uint64, success bool)
	ObserveQueueDepth(depth uint32)
}

// Watcher is a registration returned by Loop.WatchReadable. Cancel stops
// further callbacks for the watched fd; it does not close the fd.
type Watcher interface {
	Cancel() error
}

// Loop is the set of capabilities the engine needs from a host event
// loop: registering a readable-fd watcher for the completion eventfd,
// and posting a completion closure back onto the loop thread. Nothing
// else about the loop's scheduling, timers, or other fd types is
// visible here.
type Loop interface {
	WatchReadable(fd int, cb func()) (Watcher, error)
	PostCompletion(fn func())
}
