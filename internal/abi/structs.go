package abi

import "unsafe"

// IOCB must match the kernel's struct iocb exactly (64 bytes on x86_64):
//
//	struct iocb {
//	  __u64 aio_data;        // user data
//	  __u32 aio_key;         // kernel-internal, set to 0 on submit
//	  __kernel_rwf_t aio_rw_flags;
//	  __u16 aio_lio_opcode;  // IOCB_CMD_*
//	  __s16 aio_reqprio;
//	  __u32 aio_fildes;
//	  __u64 aio_buf;
//	  __u64 aio_nbytes;
//	  __s64 aio_offset;
//	  __u64 aio_reserved2;
//	  __u32 aio_flags;       // IOCB_FLAG_*
//	  __u32 aio_resfd;       // eventfd, valid when IOCB_FLAG_RESFD is set
//	};
type IOCB struct {
	Data      uint64
	Key       uint32
	RWFlags   int32
	Opcode    uint16
	ReqPrio   int16
	FD        uint32
	Buf       uint64
	Nbytes    uint64
	Offset    int64
	Reserved2 uint64
	Flags     uint32
	ResFD     uint32
}

// Compile-time size check - kernel struct iocb is 64 bytes.
var _ [64]byte = [unsafe.Sizeof(IOCB{})]byte{}

// IOEvent must match the kernel's struct io_event exactly (32 bytes):
//
//	struct io_event {
//	  __u64 data;  // the aio_data the submitting iocb carried
//	  __u64 obj;   // the *iocb this event is for
//	  __s64 res;   // result code
//	  __s64 res2;  // secondary result
//	};
type IOEvent struct {
	Data uint64
	Obj  uint64
	Res  int64
	Res2 int64
}

// Compile-time size check - kernel struct io_event is 32 bytes.
var _ [32]byte = [unsafe.Sizeof(IOEvent{})]byte{}
