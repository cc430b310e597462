package fileorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, 12, Key("12.pdf"))
	assert.Equal(t, 0, Key("0.pdf"))
	assert.Equal(t, 1, Key("1.pdf"))
	assert.Equal(t, Sentinel, Key("scan_001.pdf"))
	assert.Equal(t, Sentinel, Key("x.pdf"))
	assert.Equal(t, Sentinel, Key(".pdf"))
	assert.Equal(t, Sentinel, Key("-3.pdf"))
	assert.Equal(t, Sentinel, Key("12.PDF"))
}

func TestSortNumericAscendingThenNonNumeric(t *testing.T) {
	files := []string{"3.pdf", "1.pdf", "10.pdf", "x.pdf"}
	Sort(files)
	assert.Equal(t, []string{"1.pdf", "3.pdf", "10.pdf", "x.pdf"}, files)
}

func TestSortNonNumericIsStable(t *testing.T) {
	files := []string{"zeta.pdf", "alpha.pdf", "2.pdf", "mid.pdf"}
	Sort(files)
	// Non-numeric names keep their original relative order after the numbers.
	assert.Equal(t, []string{"2.pdf", "zeta.pdf", "alpha.pdf", "mid.pdf"}, files)
}
