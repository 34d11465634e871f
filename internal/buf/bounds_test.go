package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestMulOverflowSafe(t *testing.T) {
	tests := []struct {
		a, b int
		want int
		ok   bool
	}{
		{0, 7, 0, true},
		{3, 4, 12, true},
		{math.MaxInt, 2, 0, false},
		{-1, 4, 0, false},
		{math.MaxInt / 8, 8, (math.MaxInt / 8) * 8, true},
	}
	for _, tt := range tests {
		got, ok := MulOverflowSafe(tt.a, tt.b)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("MulOverflowSafe(%d,%d)=%d,%v want %d,%v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAlignUpOverflowSafe(t *testing.T) {
	if got, ok := AlignUpOverflowSafe(13, 8); !ok || got != 16 {
		t.Fatalf("AlignUpOverflowSafe(13,8)=%d,%v want 16,true", got, ok)
	}
	if got, ok := AlignUpOverflowSafe(4096, 4096); !ok || got != 4096 {
		t.Fatalf("AlignUpOverflowSafe(4096,4096)=%d,%v want 4096,true", got, ok)
	}
	if _, ok := AlignUpOverflowSafe(10, 3); ok {
		t.Fatalf("non power-of-two alignment must be rejected")
	}
	if _, ok := AlignUpOverflowSafe(math.MaxInt, 16); ok {
		t.Fatalf("expected overflow near MaxInt")
	}
}

func TestArraySize(t *testing.T) {
	if total, err := ArraySize(10, 8); err != nil || total != 80 {
		t.Fatalf("ArraySize(10,8)=%d,%v want 80,nil", total, err)
	}
	if _, err := ArraySize(-1, 8); err == nil {
		t.Fatalf("negative count must fail")
	}
	if _, err := ArraySize(math.MaxInt, 2); err == nil {
		t.Fatalf("overflowing size must fail")
	}
}

func TestSlice(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	got, ok := Slice(data, 1, 3)
	if !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if cap(got) != 3 {
		t.Fatalf("Slice must cap the result, cap=%d", cap(got))
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if _, ok := Slice(data, 5, 0); !ok {
		t.Fatalf("Slice should allow an empty range at the end")
	}

	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
	if _, ok := Slice(data, 1, -1); ok {
		t.Fatalf("Slice should reject negative length")
	}
}
