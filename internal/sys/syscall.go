//go:build linux

// Package sys provides raw syscall wrappers for the Linux kernel AIO
// family (io_setup/io_destroy/io_submit/io_getevents/io_cancel).
package sys

import (
	"syscall"
	"unsafe"

	"github.com/behrlich/go-aio/internal/abi"
)

// AIOContext is the kernel's opaque aio_context_t.
type AIOContext uintptr

// Setup creates a kernel AIO context able to hold up to nrEvents
// concurrent iocbs. Returns the context handle on success.
func Setup(nrEvents uint32) (AIOContext, error) {
	var ctx AIOContext
	_, _, errno := syscall.Syscall(abi.SysIOSetup, uintptr(nrEvents), uintptr(unsafe.Pointer(&ctx)), 0)
	if errno != 0 {
		return 0, errno
	}
	return ctx, nil
}

// Destroy tears down a context created by Setup, cancelling any
// iocbs still in flight and blocking until they finish.
func Destroy(ctx AIOContext) error {
	_, _, errno := syscall.Syscall(abi.SysIODestroy, uintptr(ctx), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// Submit enqueues the given iocbs to the kernel. Returns the number
// accepted, which may be less than len(iocbs) on EAGAIN (the context's
// queue is full) — the caller retries the remainder later.
func Submit(ctx AIOContext, iocbs []*abi.IOCB) (int, error) {
	if len(iocbs) == 0 {
		return 0, nil
	}
	n, _, errno := syscall.Syscall(abi.SysIOSubmit, uintptr(ctx), uintptr(len(iocbs)), uintptr(unsafe.Pointer(&iocbs[0])))
	if errno != 0 {
		return 0, errno
	}
	return int(n), nil
}

// GetEvents drains up to len(events) completed events from ctx,
// without blocking (min_nr is 0, so the call returns at once even
// though no timeout is passed). Returns the number filled.
func GetEvents(ctx AIOContext, events []abi.IOEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	n, _, errno := syscall.Syscall6(abi.SysIOGetevents,
		uintptr(ctx),
		0,
		uintptr(len(events)),
		uintptr(unsafe.Pointer(&events[0])),
		0,
		0,
	)
	if errno != 0 {
		return 0, errno
	}
	return int(n), nil
}

// Cancel requests early cancellation of iocb within ctx. The shim is
// complete but nothing in this module calls it; cancellation of
// in-flight fragments is an explicit non-goal.
func Cancel(ctx AIOContext, iocb *abi.IOCB, result *abi.IOEvent) error {
	_, _, errno := syscall.Syscall6(abi.SysIOCancel,
		uintptr(ctx),
		uintptr(unsafe.Pointer(iocb)),
		uintptr(unsafe.Pointer(result)),
		0, 0, 0,
	)
	if errno != 0 {
		return errno
	}
	return nil
}
