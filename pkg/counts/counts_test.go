package counts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  int64
		ok    bool
	}{
		{"plain integer", "1234", 1234, true},
		{"thousands separator", "1,234", 1234, true},
		{"zero", "0", 0, true},
		{"k suffix", "1.2K", 1200, true},
		{"lowercase k suffix", "1.2k", 1200, true},
		{"m suffix", "2.5M", 2500000, true},
		{"b suffix", "3B", 3000000000, true},
		{"suffix without decimal", "10K", 10000, true},
		{"decimal truncates", "1.239K", 1239, true},
		{"surrounding spaces", "  512 ", 512, true},
		{"comma and suffix", "1,2K", 12000, true},
		{"empty", "", 0, false},
		{"prose", "abc", 0, false},
		{"mixed", "12abc", 0, false},
		{"negative unsupported", "-5", 0, false},
		{"bare decimal", "1.5", 1, true},
		{"unknown suffix", "7T", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.token)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCleanToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"middle dot", "·1.2K", "1.2K"},
		{"bullet", "500•", "500"},
		{"pipe", "|42|", "42"},
		{"trailing comma", "1200,", "1200"},
		{"clean already", "900", "900"},
		{"only separators", "·|•", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanToken(tt.token))
		})
	}
}

func TestIsMissing(t *testing.T) {
	missing := []string{"", "  ", "NA", "na", "N/A", "None", "null", " NULL "}
	for _, cell := range missing {
		assert.True(t, IsMissing(cell), "cell %q should be missing", cell)
	}

	present := []string{"0", "1234", "2.5M", "abc"}
	for _, cell := range present {
		assert.False(t, IsMissing(cell), "cell %q should be present", cell)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2500000", Format(2500000))
	assert.Equal(t, "0", Format(0))
}
