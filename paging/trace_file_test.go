package paging

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestTraceFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nru.trace")

	original, err := RunTrace(AlgorithmNRU, belady, 3, Options{DirtyOverrides: map[int]bool{3: true}})
	if err != nil {
		t.Fatalf("RunTrace failed: %v", err)
	}

	if err := WriteTraceFile(path, original, CompressionLZ4); err != nil {
		t.Fatalf("WriteTraceFile failed: %v", err)
	}

	loaded, err := ReadTraceFile(path)
	if err != nil {
		t.Fatalf("ReadTraceFile failed: %v", err)
	}

	if loaded.Algorithm != AlgorithmNRU {
		t.Errorf("Expected NRU, got %s", loaded.Algorithm)
	}
	if !loaded.DirtyOverrides[3] {
		t.Errorf("Expected override at step 3, got %v", loaded.DirtyOverrides)
	}
	for i := range original.Snapshots {
		if !slices.Equal(loaded.Snapshots[i].FramePages(), original.Snapshots[i].FramePages()) {
			t.Errorf("Step %d: expected %v, got %v", i,
				original.Snapshots[i].FramePages(), loaded.Snapshots[i].FramePages())
		}
	}

	// A replayed trace matches a fresh run of its own configuration
	rerun, err := RunTrace(loaded.Algorithm, loaded.Sequence, loaded.FrameCount, Options{DirtyOverrides: loaded.DirtyOverrides})
	if err != nil {
		t.Fatalf("RunTrace failed: %v", err)
	}
	if rerun.Faults() != loaded.Faults() {
		t.Errorf("Expected %d faults on rerun, got %d", loaded.Faults(), rerun.Faults())
	}
}

func TestWriteTraceFileReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.trace")

	first, _ := RunTrace(AlgorithmFIFO, belady, 3, Options{})
	second, _ := RunTrace(AlgorithmOPT, belady, 4, Options{})

	if err := WriteTraceFile(path, first, CompressionNone); err != nil {
		t.Fatalf("WriteTraceFile failed: %v", err)
	}
	if err := WriteTraceFile(path, second, CompressionSnappy); err != nil {
		t.Fatalf("WriteTraceFile failed: %v", err)
	}

	loaded, err := ReadTraceFile(path)
	if err != nil {
		t.Fatalf("ReadTraceFile failed: %v", err)
	}
	if loaded.Algorithm != AlgorithmOPT || loaded.FrameCount != 4 {
		t.Errorf("Expected the second trace, got %s with %d frames", loaded.Algorithm, loaded.FrameCount)
	}

	// No temporary files are left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the trace file, found %d entries", len(entries))
	}
}

func TestReadTraceFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadTraceFile(filepath.Join(dir, "missing.trace")); !IsErrorCode(err, ErrCodeTraceIO) {
		t.Errorf("Expected TraceIO for a missing file, got %v", err)
	}

	empty := filepath.Join(dir, "empty.trace")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := ReadTraceFile(empty); !IsErrorCode(err, ErrCodeTraceCorrupted) {
		t.Errorf("Expected TraceCorrupted for an empty file, got %v", err)
	}

	garbage := filepath.Join(dir, "garbage.trace")
	if err := os.WriteFile(garbage, []byte("this is not a trace archive"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := ReadTraceFile(garbage); !IsErrorCode(err, ErrCodeTraceCorrupted) {
		t.Errorf("Expected TraceCorrupted for garbage, got %v", err)
	}
}

func TestWriteTraceFileMissingDirectory(t *testing.T) {
	trace, _ := RunTrace(AlgorithmFIFO, belady, 3, Options{})
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "run.trace")

	if err := WriteTraceFile(path, trace, CompressionNone); !IsErrorCode(err, ErrCodeTraceIO) {
		t.Errorf("Expected TraceIO, got %v", err)
	}
}
