// Package aio implements a Linux kernel AIO (io_setup/io_submit/
// io_getevents) engine integrated with a host event loop. See Engine
// for the entry point.
package aio

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/behrlich/go-aio/internal/abi"
	"github.com/behrlich/go-aio/internal/constants"
	"github.com/behrlich/go-aio/internal/interfaces"
	"github.com/behrlich/go-aio/internal/logging"
	"github.com/behrlich/go-aio/internal/queue"
	"github.com/behrlich/go-aio/internal/sys"
)

// Engine mediates between one event loop and one kernel AIO context.
// All of its methods except Attach are expected to run on the loop
// thread; there is no internal locking (spec §5).
type Engine struct {
	loop     interfaces.Loop
	logger   *logging.Logger
	observer Observer

	ctx      sys.AIOContext
	eventfd  int
	watcher  interfaces.Watcher
	batchCap int

	pending    *queue.Pending[*Request]
	inflight   map[uint64]*Request
	nextCookie uint64
	events     []abi.IOEvent

	closed bool
}

// Option configures Attach.
type Option func(*Engine)

// WithBatchCapacity overrides the default AIO context size / per-cycle
// event cap (constants.DefaultBatchCapacity).
func WithBatchCapacity(n int) Option {
	return func(e *Engine) { e.batchCap = n }
}

// WithLogger overrides the engine's logger (defaults to logging.Default()).
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObserver attaches a metrics Observer (defaults to NoOpObserver).
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// Attach creates a kernel AIO context and an eventfd, registers the
// eventfd as a readable watcher on loop, and returns a ready-to-use
// Engine. Engine initialization failures are fatal and propagated to
// the caller (spec §4.2, §7).
func Attach(loop interfaces.Loop, opts ...Option) (*Engine, error) {
	e := &Engine{
		loop:     loop,
		logger:   logging.Default(),
		observer: NoOpObserver{},
		batchCap: constants.DefaultBatchCapacity,
		pending:  queue.NewPending[*Request](),
		inflight: make(map[uint64]*Request),
	}
	for _, opt := range opts {
		opt(e)
	}

	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, NewErrorWithErrno("ATTACH", ErrCodeEventFD, err.(syscall.Errno))
	}
	e.eventfd = fd

	ctx, err := sys.Setup(uint32(e.batchCap))
	if err != nil {
		unix.Close(fd)
		return nil, NewErrorWithErrno("ATTACH", ErrCodeContext, err.(syscall.Errno))
	}
	e.ctx = ctx
	e.events = make([]abi.IOEvent, e.batchCap)

	watcher, err := loop.WatchReadable(fd, e.onReadable)
	if err != nil {
		sys.Destroy(ctx)
		unix.Close(fd)
		return nil, NewError("ATTACH", ErrCodeWatch, err.Error())
	}
	e.watcher = watcher

	e.logger.Debug("engine attached", "eventfd", fd, "batch_capacity", e.batchCap)
	return e, nil
}

// Submit fragments req into one kernel control block per buffer and
// enqueues it for submission (spec §4.3). req.Done fires exactly once,
// on the loop thread, when every fragment has completed, or when a
// non-EAGAIN submission error ends the request early (see failSubmit).
//
// Submit rejects a nil or empty Buffers vector before touching the
// pending queue or allocating anything (spec §8 scenario 5), and
// rejects a Request that is not in its fresh/Done state rather than
// silently corrupting the pending queue (spec §9 resolution 3).
func (e *Engine) Submit(req *Request) error {
	if e.closed {
		return ErrClosed
	}
	if len(req.Buffers) == 0 {
		return ErrInvalidArgument
	}
	if req.state != stateNew && req.state != stateDone {
		return ErrAlreadySubmitted
	}

	start := time.Now()
	e.nextCookie++
	cookie := e.nextCookie
	req.fragment(cookie, e.eventfd)
	e.inflight[cookie] = req
	req.state = statePending
	e.pending.PushBack(req)

	e.observer.ObserveSubmit(req.fragmentCount, uint64(time.Since(start).Nanoseconds()), true)
	e.observer.ObserveQueueDepth(uint32(e.pending.Len()))

	e.drainPending()
	return nil
}

// drainPending is the submitter/drain engine (spec §4.4): it repeatedly
// pulls from the head of the pending queue and pushes up to batchCap
// control blocks into the kernel, stopping at the first EAGAIN.
func (e *Engine) drainPending() {
	for {
		req, ok := e.pending.Front()
		if !ok {
			return
		}

		remaining := req.fragmentCount - req.submitted
		batch := remaining
		if batch > e.batchCap {
			batch = e.batchCap
		}

		n, err := sys.Submit(e.ctx, req.cbs[req.submitted:req.submitted+batch])
		if err != nil {
			if err == syscall.EAGAIN {
				return
			}
			e.logger.Error("submit failed", "errno", err, "fd", req.FD)
			e.failSubmit(req, err.(syscall.Errno))
			continue
		}

		req.submitted += n
		if req.submitted >= req.fragmentCount {
			e.pending.Remove(req)
			req.state = stateInFlight
		}
	}
}

// failSubmit implements spec §9 resolution 2: a non-EAGAIN submission
// error is propagated to the affected request instead of swallowed.
// Its still-unsubmitted fragments are abandoned; req.Result is set to
// the negative errno (sticky-first-error, same as observe) so no later
// fragment result can paper over the failure.
//
// If an earlier batch of this same request was already accepted by the
// kernel (req.submitted > 0), those fragments are still outstanding and
// hold live pointers into req.Buffers — completing the request now
// would tell the caller the buffers are free to reuse while the kernel
// is still writing through them, and the eventual real completions
// would arrive for a cookie no longer in e.inflight and be dropped,
// violating the "completion fires exactly once, only when
// done == fragment_count" invariant (spec §3). So in that case the
// abandoned fragments are trimmed off the end of fragmentCount and the
// request is left inflight; workDone completes it once every fragment
// the kernel actually accepted has been observed (or it is completed
// here, if all of them have been observed already).
func (e *Engine) failSubmit(req *Request, errno syscall.Errno) {
	e.pending.Remove(req)
	if req.Result >= 0 {
		req.Result = -int64(errno)
	}
	if req.submitted == 0 {
		e.complete(req)
		return
	}
	req.fragmentCount = req.submitted
	req.state = stateInFlight
	if req.doneCount == req.fragmentCount {
		e.complete(req)
	}
}

// onReadable is the watcher callback triggered when the eventfd
// becomes readable (spec §4.5). It drains the eventfd counter, which
// is used purely as a wakeup signal, then dispatches completions.
//
// Any read error other than EAGAIN/EWOULDBLOCK/EINTR means the eventfd
// itself is broken (e.g. EBADF from a closed fd) — there is no way to
// recover the engine's notion of pending completions at that point, so
// this aborts the process rather than limping on with a silent log
// line (spec §7, matching original_source/src/unix/aio.c's uv__aio_io,
// which calls abort() on the same condition).
func (e *Engine) onReadable() {
	var scratch [8]byte
	for {
		_, err := unix.Read(e.eventfd, scratch[:])
		if err == nil {
			continue
		}
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			break
		}
		e.logger.Error("eventfd read failed, aborting", "errno", err)
		panic(NewErrorWithErrno("EVENTFD_READ", ErrCodeEventFDRead, err.(syscall.Errno)))
	}
	e.workDone()
}

// workDone is the completion dispatcher (spec §4.6): drain completed
// events, aggregate results per request, fire each request's done
// closure exactly once, then re-run the submitter since completions
// free kernel-side submission capacity (resolved from
// original_source/src/unix/aio.c's uv__aio_work_done, SPEC_FULL §13).
func (e *Engine) workDone() {
	for {
		n, err := sys.GetEvents(e.ctx, e.events)
		if err != nil {
			e.logger.Error("get_events failed", "errno", err)
			break
		}
		if n == 0 {
			break
		}
		for _, ev := range e.events[:n] {
			req, ok := e.inflight[ev.Data]
			if !ok {
				continue
			}
			req.observe(ev.Res)
			if req.doneCount == req.fragmentCount {
				e.complete(req)
			}
		}
	}
	e.drainPending()
}

// complete finalizes req: removes it from the inflight table, marks
// it Done, and posts its completion closure onto the loop thread
// rather than invoking it inline — the engine's one concession to the
// "callback fires on the loop thread" invariant when Submit's
// early-failure path and the completion path both need to complete a
// request (spec §4.6, §12).
func (e *Engine) complete(req *Request) {
	delete(e.inflight, req.cookie)
	req.state = stateDone

	success := req.Result >= 0
	bytes := uint64(0)
	if success {
		bytes = uint64(req.Result)
	}
	latencyNs := uint64(time.Since(req.submittedAt).Nanoseconds())
	e.observer.ObserveComplete(bytes, latencyNs, success)

	done := req.Done
	e.loop.PostCompletion(func() {
		if done != nil {
			done(req)
		}
	})
}

// Close tears down the engine: stops the watcher, closes the eventfd,
// and destroys the kernel AIO context (spec §9 resolution 1 — leaving
// the context alive after the loop forgets it is a resource leak).
// Idempotent.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if e.watcher != nil {
		if err := e.watcher.Cancel(); err != nil {
			e.logger.Error("watcher cancel failed", "err", err)
		}
	}
	if err := unix.Close(e.eventfd); err != nil {
		e.logger.Error("eventfd close failed", "err", err)
	}
	if err := sys.Destroy(e.ctx); err != nil {
		e.logger.Error("io_destroy failed", "err", err)
		return WrapError("CLOSE", err)
	}
	return nil
}
