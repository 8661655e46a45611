package aio

import (
	"time"
	"unsafe"

	"github.com/behrlich/go-aio/internal/abi"
)

func ptrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

// Op identifies the operation a Request performs.
type Op int

const (
	// OpRead issues a positional read (IOCB_CMD_PREAD) per buffer.
	OpRead Op = iota
	// OpWrite issues a positional write (IOCB_CMD_PWRITE) per buffer.
	OpWrite
)

// state is the lifecycle a Request moves through (spec §4.8).
type state int

const (
	stateNew      state = iota // fragmented or not yet; safe to (re-)submit
	statePending                // in the pending queue, submitted < fragmentCount
	stateInFlight               // fully accepted by the kernel, awaiting completions
	stateDone                   // completion closure has fired
)

// Request is a single logical read or write spanning one or more
// buffers at a file descriptor and offset. The caller retains
// ownership of the Buffers memory and of the Request itself for the
// whole PENDING..DONE window — the kernel holds a direct pointer into
// each buffer while its fragment is outstanding, so neither may move
// or be reused until Done fires.
type Request struct {
	Op      Op
	FD      int
	Buffers [][]byte
	// Offset is the absolute file offset of the first buffer. A
	// negative value is clamped to 0 (the AIO path has no notion of
	// "current position").
	Offset int64
	// Result is the aggregated outcome once Done fires: the sum of
	// all fragment results if every fragment succeeded, or the res of
	// the first fragment observed to fail (sticky-first-error). A
	// non-EAGAIN io_submit error is recorded the same way, as its
	// negative errno.
	Result int64
	// Done is invoked exactly once, on the loop thread, when every
	// fragment the kernel accepted has completed. After a non-EAGAIN
	// io_submit error the fragments not yet submitted are dropped, so
	// Done can fire before all Buffers were transferred.
	Done func(*Request)

	state         state
	cookie        uint64
	cbs           []*abi.IOCB
	fragmentCount int
	submitted     int
	doneCount     int
	submittedAt   time.Time
}

func (r *Request) fragment(cookie uint64, eventfd int) {
	n := len(r.Buffers)
	r.cbs = make([]*abi.IOCB, n)
	r.fragmentCount = n
	r.submitted = 0
	r.doneCount = 0
	r.cookie = cookie
	r.Result = 0
	r.submittedAt = time.Now()

	opcode := abi.IOCBCmdPread
	if r.Op == OpWrite {
		opcode = abi.IOCBCmdPwrite
	}

	offset := r.Offset
	if offset < 0 {
		offset = 0
	}

	for i, buf := range r.Buffers {
		cb := &abi.IOCB{
			Data:    cookie,
			Opcode:  opcode,
			FD:      uint32(r.FD),
			Offset:  offset,
			Flags:   abi.IOCBFlagResFD,
			ResFD:   uint32(eventfd),
			Nbytes:  uint64(len(buf)),
		}
		if len(buf) > 0 {
			cb.Buf = uint64(ptrOf(buf))
		}
		r.cbs[i] = cb
		offset += int64(len(buf))
	}
}

// observe aggregates one fragment's result using sticky-first-error
// semantics (spec §3 invariants, §4.6): while every fragment seen so
// far is non-negative, Result is their sum; the first negative result
// becomes Result and is never overwritten by later successes.
func (r *Request) observe(res int64) {
	if r.Result >= 0 {
		if res >= 0 {
			r.Result += res
		} else {
			r.Result = res
		}
	}
	r.doneCount++
}
