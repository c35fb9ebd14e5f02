//go:build unix

package paging

import (
	"os"

	"golang.org/x/sys/unix"
)

// decodeTraceFile maps the archive read-only and decodes it in place.
// DecodeTrace copies everything it keeps, so the mapping can be released
// before returning.
func decodeTraceFile(file *os.File, size int64) (*Trace, error) {
	data, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, ErrTraceIO("decodeTraceFile", err)
	}

	trace, decodeErr := DecodeTrace(data)
	if err := unix.Munmap(data); err != nil && decodeErr == nil {
		return nil, ErrTraceIO("decodeTraceFile", err)
	}
	return trace, decodeErr
}
