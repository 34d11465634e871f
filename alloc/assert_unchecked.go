//go:build memkit_unchecked

package alloc

const checked = false
