//go:build linux

package sys

import (
	"os"
	"testing"
	"unsafe"
)

func createTempFile(t *testing.T, contents []byte) (*os.File, error) {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "aio-sys-test-")
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(contents); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func ptrOf(b []byte) unsafe.Pointer {
	return unsafe.Pointer(&b[0])
}
