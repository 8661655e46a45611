// Package abi provides the Linux kernel UAPI definitions for the AIO
// (io_setup/io_submit/io_getevents) family, matching linux/aio_abi.h.
package abi

// Opcodes for IOCB.Opcode. Only the two the engine needs are defined;
// the kernel header has a few more (PREADV, PWRITEV, FSYNC, ...) that
// this module never issues.
const (
	IOCBCmdPread  uint16 = 0
	IOCBCmdPwrite uint16 = 1
)

// IOCBFlagResFD requests that the kernel signal ResFD (an eventfd) on
// completion of this control block, instead of only updating the
// completion ring.
const IOCBFlagResFD uint32 = 1 << 0

// Syscall numbers for the AIO family (x86_64). The kernel has carried
// these at fixed numbers since their introduction; unlike io_uring
// there is no probing mechanism, so a build targeting another
// architecture needs its own constants here.
const (
	SysIOSetup     = 206
	SysIODestroy   = 207
	SysIOSubmit    = 209
	SysIOCancel    = 210
	SysIOGetevents = 208
)
