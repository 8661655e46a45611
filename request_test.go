package aio

import (
	"testing"

	"github.com/behrlich/go-aio/internal/abi"
)

func TestFragmentOffsets(t *testing.T) {
	req := &Request{
		Op:      OpWrite,
		FD:      5,
		Buffers: [][]byte{make([]byte, 10), make([]byte, 20), make([]byte, 5)},
		Offset:  100,
	}
	req.fragment(1, 7)

	if len(req.cbs) != 3 {
		t.Fatalf("len(cbs) = %d, want 3", len(req.cbs))
	}

	wantOffsets := []int64{100, 110, 130}
	for i, cb := range req.cbs {
		if cb.Offset != wantOffsets[i] {
			t.Errorf("cbs[%d].Offset = %d, want %d", i, cb.Offset, wantOffsets[i])
		}
		if cb.Opcode != abi.IOCBCmdPwrite {
			t.Errorf("cbs[%d].Opcode = %d, want IOCBCmdPwrite", i, cb.Opcode)
		}
		if cb.Data != 1 {
			t.Errorf("cbs[%d].Data = %d, want cookie 1", i, cb.Data)
		}
		if cb.ResFD != 7 {
			t.Errorf("cbs[%d].ResFD = %d, want 7", i, cb.ResFD)
		}
		if cb.Flags&abi.IOCBFlagResFD == 0 {
			t.Errorf("cbs[%d].Flags missing IOCBFlagResFD", i)
		}
	}
}

func TestFragmentNegativeOffsetClampedToZero(t *testing.T) {
	req := &Request{
		Op:      OpWrite,
		FD:      5,
		Buffers: [][]byte{make([]byte, 13), make([]byte, 13)},
		Offset:  -1,
	}
	req.fragment(1, 7)

	if req.cbs[0].Offset != 0 {
		t.Errorf("cbs[0].Offset = %d, want 0", req.cbs[0].Offset)
	}
	if req.cbs[1].Offset != 13 {
		t.Errorf("cbs[1].Offset = %d, want 13", req.cbs[1].Offset)
	}
}

func TestFragmentReadOpcode(t *testing.T) {
	req := &Request{Op: OpRead, FD: 1, Buffers: [][]byte{make([]byte, 4)}}
	req.fragment(1, 7)
	if req.cbs[0].Opcode != abi.IOCBCmdPread {
		t.Errorf("Opcode = %d, want IOCBCmdPread", req.cbs[0].Opcode)
	}
}

func TestObserveAllSuccess(t *testing.T) {
	req := &Request{}
	req.fragment(1, 0)
	req.fragmentCount = 3

	req.observe(10)
	req.observe(20)
	req.observe(5)

	if req.Result != 35 {
		t.Errorf("Result = %d, want 35", req.Result)
	}
	if req.doneCount != 3 {
		t.Errorf("doneCount = %d, want 3", req.doneCount)
	}
}

func TestObserveStickyFirstError(t *testing.T) {
	req := &Request{}
	req.fragment(1, 0)

	req.observe(10)
	req.observe(-5) // -EIO, say
	req.observe(20) // must not overwrite the sticky error

	if req.Result != -5 {
		t.Errorf("Result = %d, want -5 (sticky first error)", req.Result)
	}
}

func TestObserveZeroLengthBufferIsNoOp(t *testing.T) {
	req := &Request{
		Op:      OpRead,
		FD:      1,
		Buffers: [][]byte{make([]byte, 0)},
	}
	req.fragment(1, 0)
	req.observe(0)

	if req.Result != 0 {
		t.Errorf("Result = %d, want 0", req.Result)
	}
}
