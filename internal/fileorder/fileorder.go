// Package fileorder defines the canonical processing order for source PDFs.
// Every place that cares about file order (directory scans, redaction,
// personal-info lookup, the extractor) sorts with the same key so that the
// numeric FileMapping order and the extraction order always agree.
package fileorder

import (
	"sort"
	"strconv"
	"strings"
)

// Sentinel sorts non-numeric filenames after every real file number.
const Sentinel = 999999

// Key returns the sort key for a PDF filename. A purely numeric stem
// ("12.pdf") sorts by its integer value; anything else gets Sentinel so it
// lands at the end. Callers must use a stable sort so sentinel files keep
// their original relative order.
func Key(filename string) int {
	stem := strings.TrimSuffix(filename, ".pdf")
	n, err := strconv.Atoi(stem)
	if err != nil || n < 0 {
		return Sentinel
	}
	return n
}

// Sort orders filenames in place by Key, stably.
func Sort(filenames []string) {
	sort.SliceStable(filenames, func(i, j int) bool {
		return Key(filenames[i]) < Key(filenames[j])
	})
}
