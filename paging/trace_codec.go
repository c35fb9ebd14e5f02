package paging

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// CompressionType represents the compression algorithm of a trace archive
type CompressionType uint8

const (
	CompressionNone   CompressionType = 0
	CompressionLZ4    CompressionType = 1
	CompressionSnappy CompressionType = 2

	// CompressionBest is a request, never stored: try LZ4 and Snappy and keep the smaller
	CompressionBest CompressionType = 0xFF
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionSnappy:
		return "snappy"
	case CompressionBest:
		return "best"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompressionType resolves a compression name from configuration
func ParseCompressionType(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "snappy":
		return CompressionSnappy, nil
	case "best":
		return CompressionBest, nil
	default:
		return 0, ErrInvalidConfiguration("ParseCompressionType",
			fmt.Sprintf("unsupported trace compression %q (must be none, lz4, snappy, or best)", s))
	}
}

// Trace archive header layout (little endian):
// [0-1]: Magic number (0x7AC3)
// [2]: Compression type (0=none, 1=LZ4, 2=Snappy)
// [3]: Format version
// [4-7]: Uncompressed payload size
// [8-11]: Stored payload size
// [12-15]: CRC32 (IEEE) of the uncompressed payload
// [16+]: Payload (JSON encoded Trace, possibly compressed)

const (
	TraceMagic            = 0x7AC3
	TraceFormatVersion    = 1
	TraceHeaderSize       = 16
	MinCompressionSavings = 64 // Minimum bytes saved to keep a compressed payload

	// MaxTraceSize bounds the uncompressed payload an archive may declare
	MaxTraceSize = 256 << 20

	// lz4MaxExpansion is the largest ratio an LZ4 block can decompress to
	lz4MaxExpansion = 255
)

// EncodeTrace serialises and compresses a trace into an archive
func EncodeTrace(trace *Trace, compression CompressionType) ([]byte, error) {
	payload, err := json.Marshal(trace)
	if err != nil {
		return nil, ErrInternal("EncodeTrace", "failed to marshal trace", err)
	}
	if len(payload) > MaxTraceSize {
		return nil, ErrInvalidConfiguration("EncodeTrace",
			fmt.Sprintf("trace payload of %d bytes exceeds limit %d", len(payload), MaxTraceSize))
	}

	if compression == CompressionBest {
		compression = chooseBestCompression(payload)
	}

	stored, compression, err := compressPayload(payload, compression)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, TraceHeaderSize+len(stored))
	binary.LittleEndian.PutUint16(buf[0:2], TraceMagic)
	buf[2] = uint8(compression)
	buf[3] = TraceFormatVersion
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(stored)))
	binary.LittleEndian.PutUint32(buf[12:16], crc32.ChecksumIEEE(payload))
	copy(buf[TraceHeaderSize:], stored)

	return buf, nil
}

// compressPayload returns the stored bytes and the compression actually used,
// which falls back to none when compression does not pay off
func compressPayload(payload []byte, compression CompressionType) ([]byte, CompressionType, error) {
	var compressed []byte

	switch compression {
	case CompressionNone:
		return payload, CompressionNone, nil

	case CompressionLZ4:
		compressed = make([]byte, lz4.CompressBlockBound(len(payload)))
		n, err := lz4.CompressBlock(payload, compressed, nil)
		if err != nil {
			return nil, 0, ErrInternal("compressPayload", "LZ4 compression failed", err)
		}
		// n == 0 means the block is incompressible
		if n == 0 {
			return payload, CompressionNone, nil
		}
		compressed = compressed[:n]

	case CompressionSnappy:
		compressed = snappy.Encode(nil, payload)

	default:
		return nil, 0, ErrInternal("compressPayload", fmt.Sprintf("unsupported compression type %s", compression), nil)
	}

	if len(payload)-len(compressed) < MinCompressionSavings {
		return payload, CompressionNone, nil
	}
	return compressed, compression, nil
}

func chooseBestCompression(payload []byte) CompressionType {
	lz4Size := lz4.CompressBlockBound(len(payload))
	buf := make([]byte, lz4Size)
	if n, err := lz4.CompressBlock(payload, buf, nil); err == nil && n > 0 {
		lz4Size = n
	}
	snappySize := len(snappy.Encode(nil, payload))

	if lz4Size < snappySize {
		return CompressionLZ4
	}
	return CompressionSnappy
}

// ArchiveHeader describes a trace archive without decoding its payload
type ArchiveHeader struct {
	Compression      CompressionType
	Version          uint8
	UncompressedSize uint32
	StoredSize       uint32
	Checksum         uint32
}

// CompressionRatio returns uncompressed size / stored size
func (h ArchiveHeader) CompressionRatio() float64 {
	if h.StoredSize == 0 {
		return 1.0
	}
	return float64(h.UncompressedSize) / float64(h.StoredSize)
}

// ReadArchiveHeader parses and checks the fixed-size archive header
func ReadArchiveHeader(data []byte) (ArchiveHeader, error) {
	const op = "ReadArchiveHeader"

	if len(data) < TraceHeaderSize {
		return ArchiveHeader{}, ErrTraceCorrupted(op,
			fmt.Sprintf("data too short for trace header: %d bytes", len(data)), nil)
	}

	magic := binary.LittleEndian.Uint16(data[0:2])
	if magic != TraceMagic {
		return ArchiveHeader{}, ErrTraceCorrupted(op,
			fmt.Sprintf("invalid magic number: got %04x, expected %04x", magic, TraceMagic), nil)
	}

	h := ArchiveHeader{
		Compression:      CompressionType(data[2]),
		Version:          data[3],
		UncompressedSize: binary.LittleEndian.Uint32(data[4:8]),
		StoredSize:       binary.LittleEndian.Uint32(data[8:12]),
		Checksum:         binary.LittleEndian.Uint32(data[12:16]),
	}

	if h.Version != TraceFormatVersion {
		return ArchiveHeader{}, ErrTraceCorrupted(op,
			fmt.Sprintf("unsupported format version %d", h.Version), nil)
	}
	if h.UncompressedSize > MaxTraceSize {
		return ArchiveHeader{}, ErrTraceCorrupted(op,
			fmt.Sprintf("declared payload size %d exceeds limit %d", h.UncompressedSize, MaxTraceSize), nil)
	}
	if h.Compression == CompressionLZ4 && uint64(h.UncompressedSize) > lz4MaxExpansion*uint64(h.StoredSize) {
		return ArchiveHeader{}, ErrTraceCorrupted(op,
			fmt.Sprintf("declared payload size %d impossible for %d LZ4 bytes", h.UncompressedSize, h.StoredSize), nil)
	}
	if TraceHeaderSize+int(h.StoredSize) > len(data) {
		return ArchiveHeader{}, ErrTraceCorrupted(op,
			fmt.Sprintf("insufficient data for payload: need %d bytes, have %d",
				TraceHeaderSize+int(h.StoredSize), len(data)), nil)
	}
	return h, nil
}

// DecodeTrace verifies and decodes an archive produced by EncodeTrace.
// The input is not retained, so it may be backed by a memory mapping.
func DecodeTrace(data []byte) (*Trace, error) {
	const op = "DecodeTrace"

	h, err := ReadArchiveHeader(data)
	if err != nil {
		return nil, err
	}
	stored := data[TraceHeaderSize : TraceHeaderSize+int(h.StoredSize)]

	var payload []byte
	switch h.Compression {
	case CompressionNone:
		payload = stored

	case CompressionLZ4:
		payload = make([]byte, h.UncompressedSize)
		n, err := lz4.UncompressBlock(stored, payload)
		if err != nil {
			return nil, ErrTraceCorrupted(op, "LZ4 decompression failed", err)
		}
		if n != int(h.UncompressedSize) {
			return nil, ErrTraceCorrupted(op,
				fmt.Sprintf("LZ4 decompression size mismatch: got %d, expected %d", n, h.UncompressedSize), nil)
		}

	case CompressionSnappy:
		n, err := snappy.DecodedLen(stored)
		if err != nil {
			return nil, ErrTraceCorrupted(op, "snappy header unreadable", err)
		}
		if n != int(h.UncompressedSize) {
			return nil, ErrTraceCorrupted(op,
				fmt.Sprintf("snappy decoded length %d, expected %d", n, h.UncompressedSize), nil)
		}
		payload, err = snappy.Decode(nil, stored)
		if err != nil {
			return nil, ErrTraceCorrupted(op, "snappy decompression failed", err)
		}
		if len(payload) != int(h.UncompressedSize) {
			return nil, ErrTraceCorrupted(op,
				fmt.Sprintf("snappy decompression size mismatch: got %d, expected %d", len(payload), h.UncompressedSize), nil)
		}

	default:
		return nil, ErrTraceCorrupted(op, fmt.Sprintf("unsupported compression type: %d", h.Compression), nil)
	}

	if len(payload) != int(h.UncompressedSize) {
		return nil, ErrTraceCorrupted(op,
			fmt.Sprintf("payload size mismatch: got %d, expected %d", len(payload), h.UncompressedSize), nil)
	}

	if checksum := crc32.ChecksumIEEE(payload); checksum != h.Checksum {
		return nil, ErrTraceCorrupted(op,
			fmt.Sprintf("checksum mismatch: got %08x, expected %08x", checksum, h.Checksum), nil)
	}

	trace := &Trace{}
	if err := json.Unmarshal(payload, trace); err != nil {
		return nil, ErrTraceCorrupted(op, "malformed trace payload", err)
	}
	if err := trace.Verify(); err != nil {
		return nil, err
	}
	return trace, nil
}

// Verify checks the structural invariants of a trace: a valid configuration,
// one snapshot per reference, full frame arrays, consistent counters and
// variables of the trace's own algorithm
func (t *Trace) Verify() error {
	const op = "Verify"

	if !t.Algorithm.Valid() {
		return ErrTraceCorrupted(op, fmt.Sprintf("unknown algorithm %q", t.Algorithm), nil)
	}
	if err := ValidateRun(t.Sequence, t.FrameCount, Options{DirtyOverrides: t.DirtyOverrides}); err != nil {
		return ErrTraceCorrupted(op, "invalid trace configuration", err)
	}
	if len(t.Snapshots) != len(t.Sequence) {
		return ErrTraceCorrupted(op,
			fmt.Sprintf("%d snapshots for %d references", len(t.Snapshots), len(t.Sequence)), nil)
	}

	for i, s := range t.Snapshots {
		switch {
		case s.Step != i:
			return ErrTraceCorrupted(op, fmt.Sprintf("snapshot %d has step %d", i, s.Step), nil)
		case s.Page != t.Sequence[i]:
			return ErrTraceCorrupted(op, fmt.Sprintf("snapshot %d has page %d, sequence has %d", i, s.Page, t.Sequence[i]), nil)
		case len(s.Frames) != t.FrameCount:
			return ErrTraceCorrupted(op, fmt.Sprintf("snapshot %d has %d frames, expected %d", i, len(s.Frames), t.FrameCount), nil)
		case s.CumulativeFaults+s.CumulativeHits != i+1:
			return ErrTraceCorrupted(op, fmt.Sprintf("snapshot %d counters do not add up to %d", i, i+1), nil)
		case s.IsFault && (s.ReplacedFrameIndex < 0 || s.ReplacedFrameIndex >= t.FrameCount):
			return ErrTraceCorrupted(op, fmt.Sprintf("snapshot %d replaced frame %d out of range", i, s.ReplacedFrameIndex), nil)
		case !s.IsFault && s.ReplacedFrameIndex != NoFrame:
			return ErrTraceCorrupted(op, fmt.Sprintf("snapshot %d is a hit with replaced frame %d", i, s.ReplacedFrameIndex), nil)
		case s.Variables == nil:
			return ErrTraceCorrupted(op, fmt.Sprintf("snapshot %d has no variables", i), nil)
		case s.Variables.Algorithm() != t.Algorithm:
			return ErrTraceCorrupted(op,
				fmt.Sprintf("snapshot %d carries %s variables in a %s trace", i, s.Variables.Algorithm(), t.Algorithm), nil)
		}
	}
	return nil
}
