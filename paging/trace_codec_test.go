package paging

import (
	"encoding/binary"
	"runtime"
	"slices"
	"testing"
)

func longTrace(t *testing.T, alg Algorithm) *Trace {
	t.Helper()
	seq := make([]int, 0, 200)
	for i := 0; i < 200; i++ {
		seq = append(seq, (i*7)%11)
	}
	trace, err := RunTrace(alg, seq, 4, Options{})
	if err != nil {
		t.Fatalf("RunTrace failed: %v", err)
	}
	return trace
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	compressions := []struct {
		name string
		typ  CompressionType
	}{
		{"None", CompressionNone},
		{"LZ4", CompressionLZ4},
		{"Snappy", CompressionSnappy},
		{"Best", CompressionBest},
	}

	for _, c := range compressions {
		t.Run(c.name, func(t *testing.T) {
			original := longTrace(t, AlgorithmClock)

			data, err := EncodeTrace(original, c.typ)
			if err != nil {
				t.Fatalf("EncodeTrace failed: %v", err)
			}

			decoded, err := DecodeTrace(data)
			if err != nil {
				t.Fatalf("DecodeTrace failed: %v", err)
			}

			if decoded.Algorithm != original.Algorithm || decoded.FrameCount != original.FrameCount {
				t.Errorf("Header fields mismatch: got %s/%d", decoded.Algorithm, decoded.FrameCount)
			}
			if !slices.Equal(decoded.Sequence, original.Sequence) {
				t.Error("Sequence mismatch after round trip")
			}
			if len(decoded.Snapshots) != len(original.Snapshots) {
				t.Fatalf("Expected %d snapshots, got %d", len(original.Snapshots), len(decoded.Snapshots))
			}
			for i := range original.Snapshots {
				if !slices.Equal(decoded.Snapshots[i].Frames, original.Snapshots[i].Frames) {
					t.Fatalf("Step %d: frames mismatch", i)
				}
				v, ok := decoded.Snapshots[i].Variables.(*ClockVariables)
				if !ok {
					t.Fatalf("Step %d: expected *ClockVariables, got %T", i, decoded.Snapshots[i].Variables)
				}
				if v.Pointer != original.Snapshots[i].ClockPointer {
					t.Fatalf("Step %d: pointer mismatch", i)
				}
			}
		})
	}
}

func TestEncodeCompressesRepetitiveTraces(t *testing.T) {
	trace := longTrace(t, AlgorithmLRU)

	for _, typ := range []CompressionType{CompressionLZ4, CompressionSnappy} {
		data, err := EncodeTrace(trace, typ)
		if err != nil {
			t.Fatalf("EncodeTrace failed: %v", err)
		}
		h, err := ReadArchiveHeader(data)
		if err != nil {
			t.Fatalf("ReadArchiveHeader failed: %v", err)
		}
		if h.Compression != typ {
			t.Errorf("Expected %s compression, got %s", typ, h.Compression)
		}
		if h.StoredSize >= h.UncompressedSize {
			t.Errorf("%s: expected stored size below %d, got %d", typ, h.UncompressedSize, h.StoredSize)
		}

		t.Logf("%s compression: %d → %d bytes (%.2fx ratio)",
			typ, h.UncompressedSize, h.StoredSize, h.CompressionRatio())
	}
}

func TestEncodeBestPicksConcreteType(t *testing.T) {
	data, err := EncodeTrace(longTrace(t, AlgorithmFIFO), CompressionBest)
	if err != nil {
		t.Fatalf("EncodeTrace failed: %v", err)
	}
	h, err := ReadArchiveHeader(data)
	if err != nil {
		t.Fatalf("ReadArchiveHeader failed: %v", err)
	}
	if h.Compression != CompressionLZ4 && h.Compression != CompressionSnappy {
		t.Errorf("Expected LZ4 or Snappy to be stored, got %s", h.Compression)
	}
}

func TestCompressPayloadFallsBackToNone(t *testing.T) {
	payload := []byte(`{"algorithm":"FIFO"}`)

	for _, typ := range []CompressionType{CompressionLZ4, CompressionSnappy} {
		stored, used, err := compressPayload(payload, typ)
		if err != nil {
			t.Fatalf("%s: compressPayload failed: %v", typ, err)
		}
		if used != CompressionNone {
			t.Errorf("%s: expected a tiny payload to be stored uncompressed, got %s", typ, used)
		}
		if !slices.Equal(stored, payload) {
			t.Errorf("%s: expected the payload stored as is", typ)
		}
	}

	if _, _, err := compressPayload(payload, CompressionType(9)); !IsErrorCode(err, ErrCodeInternal) {
		t.Errorf("Expected Internal for an unknown compression type, got %v", err)
	}
}

func TestArchiveHeaderUncompressed(t *testing.T) {
	trace, err := RunTrace(AlgorithmFIFO, []int{1}, 1, Options{})
	if err != nil {
		t.Fatalf("RunTrace failed: %v", err)
	}

	data, err := EncodeTrace(trace, CompressionNone)
	if err != nil {
		t.Fatalf("EncodeTrace failed: %v", err)
	}
	h, err := ReadArchiveHeader(data)
	if err != nil {
		t.Fatalf("ReadArchiveHeader failed: %v", err)
	}
	if h.Compression != CompressionNone || h.Version != TraceFormatVersion {
		t.Errorf("Unexpected header %+v", h)
	}
	if h.StoredSize != h.UncompressedSize || int(h.StoredSize)+TraceHeaderSize != len(data) {
		t.Errorf("Expected stored size %d to match payload, got %d", len(data)-TraceHeaderSize, h.StoredSize)
	}
	if h.CompressionRatio() != 1.0 {
		t.Errorf("Expected ratio 1.0, got %.2f", h.CompressionRatio())
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	valid, err := EncodeTrace(longTrace(t, AlgorithmOPT), CompressionSnappy)
	if err != nil {
		t.Fatalf("EncodeTrace failed: %v", err)
	}

	tests := []struct {
		name    string
		corrupt func(data []byte) []byte
	}{
		{"too short", func(data []byte) []byte { return data[:TraceHeaderSize-1] }},
		{"bad magic", func(data []byte) []byte {
			binary.LittleEndian.PutUint16(data[0:2], 0xDEAD)
			return data
		}},
		{"bad version", func(data []byte) []byte {
			data[3] = 9
			return data
		}},
		{"unknown compression", func(data []byte) []byte {
			data[2] = 7
			return data
		}},
		{"truncated payload", func(data []byte) []byte { return data[:len(data)-10] }},
		{"bad checksum", func(data []byte) []byte {
			binary.LittleEndian.PutUint32(data[12:16], 0)
			return data
		}},
		{"flipped payload byte", func(data []byte) []byte {
			data[TraceHeaderSize+5] ^= 0xFF
			return data
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.corrupt(slices.Clone(valid))
			_, err := DecodeTrace(data)
			if !IsErrorCode(err, ErrCodeTraceCorrupted) {
				t.Errorf("Expected TraceCorrupted, got %v", err)
			}
		})
	}
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	header := func(compression CompressionType, uncompressed, stored uint32) []byte {
		data := make([]byte, TraceHeaderSize+int(stored))
		binary.LittleEndian.PutUint16(data[0:2], TraceMagic)
		data[2] = byte(compression)
		data[3] = TraceFormatVersion
		binary.LittleEndian.PutUint32(data[4:8], uncompressed)
		binary.LittleEndian.PutUint32(data[8:12], stored)
		return data
	}

	snappyMismatch, err := EncodeTrace(longTrace(t, AlgorithmFIFO), CompressionSnappy)
	if err != nil {
		t.Fatalf("EncodeTrace failed: %v", err)
	}
	if CompressionType(snappyMismatch[2]) != CompressionSnappy {
		t.Fatalf("Expected snappy archive, got compression %d", snappyMismatch[2])
	}
	declared := binary.LittleEndian.Uint32(snappyMismatch[4:8])
	binary.LittleEndian.PutUint32(snappyMismatch[4:8], declared+1)

	tests := []struct {
		name string
		data []byte
	}{
		{"lz4 beyond size limit", header(CompressionLZ4, 1<<30, 8)},
		{"snappy beyond size limit", header(CompressionSnappy, 1<<30, 8)},
		{"none beyond size limit", header(CompressionNone, 1<<30, 8)},
		{"lz4 beyond expansion ratio", header(CompressionLZ4, 1<<20, 8)},
		{"snappy length disagrees", snappyMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := DecodeTrace(tt.data)
			runtime.ReadMemStats(&after)

			if !IsErrorCode(err, ErrCodeTraceCorrupted) {
				t.Errorf("Expected TraceCorrupted, got %v", err)
			}
			if grown := after.TotalAlloc - before.TotalAlloc; grown > 16<<20 {
				t.Errorf("Expected no payload allocation, got %d bytes", grown)
			}
		})
	}
}

func TestVerifyRejectsInconsistentTraces(t *testing.T) {
	tests := []struct {
		name   string
		modify func(tr *Trace)
	}{
		{"unknown algorithm", func(tr *Trace) { tr.Algorithm = "RANDOM" }},
		{"missing snapshot", func(tr *Trace) { tr.Snapshots = tr.Snapshots[:len(tr.Snapshots)-1] }},
		{"wrong step", func(tr *Trace) { tr.Snapshots[2].Step = 5 }},
		{"wrong page", func(tr *Trace) { tr.Snapshots[2].Page = 99 }},
		{"short frames", func(tr *Trace) { tr.Snapshots[1].Frames = tr.Snapshots[1].Frames[:1] }},
		{"bad counters", func(tr *Trace) { tr.Snapshots[4].CumulativeHits++ }},
		{"zero frames", func(tr *Trace) { tr.FrameCount = 0 }},
		{"replaced frame out of range", func(tr *Trace) { tr.Snapshots[0].ReplacedFrameIndex = 7 }},
		{"negative replaced frame", func(tr *Trace) { tr.Snapshots[0].ReplacedFrameIndex = -3 }},
		{"hit with replaced frame", func(tr *Trace) {
			for i := range tr.Snapshots {
				if !tr.Snapshots[i].IsFault {
					tr.Snapshots[i].ReplacedFrameIndex = 0
					return
				}
			}
		}},
		{"missing variables", func(tr *Trace) { tr.Snapshots[3].Variables = nil }},
		{"foreign variables", func(tr *Trace) { tr.Snapshots[3].Variables = &ClockVariables{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace, err := RunTrace(AlgorithmLFU, belady, 3, Options{})
			if err != nil {
				t.Fatalf("RunTrace failed: %v", err)
			}
			tt.modify(trace)
			if err := trace.Verify(); !IsErrorCode(err, ErrCodeTraceCorrupted) {
				t.Errorf("Expected TraceCorrupted, got %v", err)
			}
		})
	}
}

func TestParseCompressionType(t *testing.T) {
	tests := []struct {
		input string
		want  CompressionType
	}{
		{"", CompressionNone},
		{"none", CompressionNone},
		{"LZ4", CompressionLZ4},
		{"snappy", CompressionSnappy},
		{" best ", CompressionBest},
	}

	for _, tt := range tests {
		got, err := ParseCompressionType(tt.input)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.want, got)
		}
	}

	if _, err := ParseCompressionType("gzip"); !IsErrorCode(err, ErrCodeInvalidConfiguration) {
		t.Errorf("Expected InvalidConfiguration, got %v", err)
	}
}
