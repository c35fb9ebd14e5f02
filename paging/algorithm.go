package paging

import (
	"strings"
)

// Algorithm identifies a page replacement policy
type Algorithm string

const (
	AlgorithmFIFO  Algorithm = "FIFO"
	AlgorithmLRU   Algorithm = "LRU"
	AlgorithmNRU   Algorithm = "NRU"
	AlgorithmOPT   Algorithm = "OPT"
	AlgorithmClock Algorithm = "CLOCK"
	AlgorithmLFU   Algorithm = "LFU"
	AlgorithmMFU   Algorithm = "MFU"
)

// Algorithms lists every supported algorithm in display order
var Algorithms = []Algorithm{
	AlgorithmFIFO,
	AlgorithmLRU,
	AlgorithmNRU,
	AlgorithmOPT,
	AlgorithmClock,
	AlgorithmLFU,
	AlgorithmMFU,
}

var algorithmDescriptions = map[Algorithm]string{
	AlgorithmFIFO:  "First In, First Out",
	AlgorithmLRU:   "Least Recently Used",
	AlgorithmNRU:   "Not Recently Used",
	AlgorithmOPT:   "Optimal (Belady)",
	AlgorithmClock: "Second Chance",
	AlgorithmLFU:   "Least Frequently Used",
	AlgorithmMFU:   "Most Frequently Used",
}

// Valid reports whether the algorithm is one of the supported ids
func (a Algorithm) Valid() bool {
	_, ok := algorithmDescriptions[a]
	return ok
}

// Description returns a human readable name
func (a Algorithm) Description() string {
	return algorithmDescriptions[a]
}

func (a Algorithm) String() string {
	return string(a)
}

// ParseAlgorithm resolves an algorithm id case-insensitively.
// "SECOND-CHANCE" is accepted as an alias of CLOCK.
func ParseAlgorithm(s string) (Algorithm, error) {
	id := Algorithm(strings.ToUpper(strings.TrimSpace(s)))
	if id == "SECOND-CHANCE" || id == "SECOND_CHANCE" {
		id = AlgorithmClock
	}
	if !id.Valid() {
		return "", ErrUnsupportedAlgorithm("ParseAlgorithm", s)
	}
	return id, nil
}
