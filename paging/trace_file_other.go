//go:build !unix

package paging

import (
	"io"
	"os"
)

func decodeTraceFile(file *os.File, size int64) (*Trace, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(file, data); err != nil {
		return nil, ErrTraceIO("decodeTraceFile", err)
	}
	return DecodeTrace(data)
}
