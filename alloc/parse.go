package alloc

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseBytes parses sizes such as "4096", "512B", "64KiB", "1.5MiB" or "2GB".
// IEC suffixes (KiB, MiB, GiB) are binary; SI suffixes (K, KB, M, MB, G, GB)
// are decimal. It accepts everything Bytes.String produces.
func ParseBytes(s string) (Bytes, error) {
	s = strings.TrimSpace(s)
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidSize, s, err)
	}
	if n > uint64(maxBytes) {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidSize, s)
	}
	return Bytes(n), nil
}
