package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in   string
		want Bytes
	}{
		{"0", 0},
		{"4096", 4096},
		{"512B", 512},
		{"64KiB", 64 * KiB},
		{"64K", 64000},
		{"64KB", 64000},
		{" 1 MiB ", MiB},
		{"1.5MiB", MiB + MiB/2},
		{"3M", 3000000},
		{"2GiB", 2 * GiB},
		{"1,024", KiB},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBytes(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestParseBytes_String tests that exact unit multiples survive formatting.
func TestParseBytes_String(t *testing.T) {
	for _, b := range []Bytes{1, 1000, KiB, 3 * KiB, 64 * KiB, 5 * MiB, GiB} {
		got, err := ParseBytes(b.String())
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
}

func TestParseBytes_Invalid(t *testing.T) {
	for _, in := range []string{"", "KiB", "-1", "12XB", "99999999999999999GiB", "8EiB"} {
		_, err := ParseBytes(in)
		assert.ErrorIs(t, err, ErrInvalidSize, "input %q", in)
	}
}
