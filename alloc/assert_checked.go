//go:build !memkit_unchecked

package alloc

// checked enables contract assertions. Build with -tags memkit_unchecked to
// remove them from hot paths.
const checked = true
