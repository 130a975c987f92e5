package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfIsDeterministic(t *testing.T) {
	a := Of([]byte("bank guarantee no. 123"))
	b := Of([]byte("bank guarantee no. 123"))
	assert.Equal(t, a, b)
}

func TestOfDiffersOnSingleByteChange(t *testing.T) {
	a := Of([]byte("bank guarantee no. 123"))
	b := Of([]byte("bank guarantee no. 124"))
	assert.NotEqual(t, a, b)
}

func TestOfEmptyInputStillHashes(t *testing.T) {
	fp := Of(nil)
	assert.Len(t, string(fp), 64)
	assert.Equal(t, fp, Of([]byte{}))
}

func TestShouldExtract(t *testing.T) {
	fp := Of([]byte("upload"))
	other := Of([]byte("different upload"))

	tests := []struct {
		name     string
		next     Fingerprint
		previous Fingerprint
		want     bool
	}{
		{"same file resubmitted", fp, fp, false},
		{"first upload", fp, "", true},
		{"changed file", fp, other, true},
		{"no current fingerprint", "", fp, true},
		{"both undefined", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldExtract(tt.next, tt.previous))
		})
	}
}
