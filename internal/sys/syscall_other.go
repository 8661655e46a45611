//go:build !linux

package sys

import (
	"errors"

	"github.com/behrlich/go-aio/internal/abi"
)

// AIOContext mirrors the Linux type so non-Linux builds still compile.
type AIOContext uintptr

var errUnsupported = errors.New("aio: kernel AIO is only available on linux")

func Setup(nrEvents uint32) (AIOContext, error) {
	return 0, errUnsupported
}

func Destroy(ctx AIOContext) error {
	return errUnsupported
}

func Submit(ctx AIOContext, iocbs []*abi.IOCB) (int, error) {
	return 0, errUnsupported
}

func GetEvents(ctx AIOContext, events []abi.IOEvent) (int, error) {
	return 0, errUnsupported
}

func Cancel(ctx AIOContext, iocb *abi.IOCB, result *abi.IOEvent) error {
	return errUnsupported
}
