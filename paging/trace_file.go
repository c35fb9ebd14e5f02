package paging

import (
	"os"
	"path/filepath"
)

// WriteTraceFile encodes a trace and writes it to path. The archive is
// written to a temporary file in the same directory and renamed into place,
// so readers never observe a partial file.
func WriteTraceFile(path string, trace *Trace, compression CompressionType) error {
	const op = "WriteTraceFile"

	data, err := EncodeTrace(trace, compression)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return ErrTraceIO(op, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return ErrTraceIO(op, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return ErrTraceIO(op, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ErrTraceIO(op, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return ErrTraceIO(op, err)
	}
	return nil
}

// ReadTraceFile reads and decodes a trace archive
func ReadTraceFile(path string) (*Trace, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ErrTraceIO("ReadTraceFile", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, ErrTraceIO("ReadTraceFile", err)
	}
	if info.Size() == 0 {
		return nil, ErrTraceCorrupted("ReadTraceFile", "trace file is empty", nil)
	}

	return decodeTraceFile(file, info.Size())
}
