package alloc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/internal/vm"
)

type liveBlock struct {
	span      RWByteSpan
	alignment Alignment
}

// stackCase builds one composed allocator for the random workload.
type stackCase struct {
	name  string
	build func(t *testing.T) Allocator
}

func propertyStacks() []stackCase {
	return []stackCase{
		{"system", func(*testing.T) Allocator { return System() }},
		{"linear", func(*testing.T) Allocator { return NewLinear(System(), smallChunks(256)) }},
		{"stack", func(*testing.T) Allocator { return NewStack(System(), smallChunks(1*KiB)) }},
		{"quota>linear", func(*testing.T) Allocator {
			return NewQuota(NewLinear(System(), nil), 8*KiB)
		}},
		{"fallback(pool,system)", func(*testing.T) Allocator {
			return NewFallback(newPool(2*KiB), System())
		}},
		{"counting>reference>stack", func(*testing.T) Allocator {
			return NewCounting(Reference(NewStack(System(), nil)))
		}},
		{"virtual-stack", func(t *testing.T) Allocator {
			return newTestVirtualStack(t, 4*MiB)
		}},
		{"fallback(virtual,system)", func(t *testing.T) Allocator {
			return NewFallback(newTestVirtual(t, 32*Bytes(vm.PageSize()), 0), System())
		}},
	}
}

// Test_Property_AlignmentAndOwnership runs a seeded random allocate/deallocate
// workload against every stack and checks after each step that live blocks
// are aligned, sized exactly and still owned.
func Test_Property_AlignmentAndOwnership(t *testing.T) {
	alignments := []Alignment{1, 2, 4, 8, 16, 32, 64, 128}

	for _, sc := range propertyStacks() {
		t.Run(sc.name, func(t *testing.T) {
			a := sc.build(t)
			rng := rand.New(rand.NewSource(42)) // Fixed seed for reproducibility
			var live []liveBlock

			for step := range 2000 {
				if len(live) == 0 || rng.Intn(3) != 0 {
					size := Bytes(1 + rng.Intn(700))
					al := alignments[rng.Intn(len(alignments))]
					b := a.Allocate(size, al)
					if b.IsEmpty() {
						continue
					}
					require.Equal(t, size, b.Size(), "step %d", step)
					require.True(t, al.IsAligned(b.Begin()), "step %d: %#x not %v", step, b.Begin(), al)
					require.True(t, a.Owns(b.ReadOnly()), "step %d: fresh block not owned", step)
					live = append(live, liveBlock{b, al})
				} else {
					i := rng.Intn(len(live))
					a.Deallocate(live[i].span, live[i].alignment)
					live[i] = live[len(live)-1]
					live = live[:len(live)-1]
				}

				if step%100 == 0 {
					for _, lb := range live {
						require.True(t, a.Owns(lb.span.ReadOnly()), "step %d: live block lost", step)
					}
				}
			}
			for _, lb := range live {
				a.Deallocate(lb.span, lb.alignment)
			}
			DeallocateAll(a)
		})
	}
}

// Test_Property_QuotaConservation checks that outstanding bytes never exceed
// the quota and that denied requests leave usage unchanged.
func Test_Property_QuotaConservation(t *testing.T) {
	const limit = 4 * KiB
	q := NewQuota(NewCounting(System()), limit)
	rng := rand.New(rand.NewSource(7))
	var live []RWByteSpan
	var outstanding Bytes

	for step := range 5000 {
		if len(live) > 0 && rng.Intn(2) == 0 {
			i := rng.Intn(len(live))
			q.Deallocate(live[i], DefaultAlignment)
			outstanding -= live[i].Size()
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		} else {
			before := q.Usage()
			size := Bytes(1 + rng.Intn(1024))
			b := q.Allocate(size, DefaultAlignment)
			if b.IsEmpty() {
				require.Equal(t, before, q.Usage(), "step %d: denied request consumed quota", step)
				require.Greater(t, before+size, limit, "step %d: request within quota denied", step)
			} else {
				live = append(live, b)
				outstanding += b.Size()
			}
		}
		require.LessOrEqual(t, outstanding, limit, "step %d", step)
		require.Equal(t, outstanding, q.Usage(), "step %d", step)
	}
}

// Test_Property_CountingAccuracy checks live and lifetime counts against a
// model over a random workload that includes failures.
func Test_Property_CountingAccuracy(t *testing.T) {
	c := NewCounting(NewQuota(System(), 2*KiB))
	rng := rand.New(rand.NewSource(99))
	var live []RWByteSpan
	var n, m int64

	for range 3000 {
		if len(live) > 0 && rng.Intn(2) == 0 {
			i := rng.Intn(len(live))
			c.Deallocate(live[i], DefaultAlignment)
			m++
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		} else if b := c.Allocate(Bytes(1+rng.Intn(512)), DefaultAlignment); !b.IsEmpty() {
			live = append(live, b)
			n++
		}
		require.Equal(t, n-m, c.AllocationCount())
		require.Equal(t, n, c.ProgressiveAllocationCount())
	}
}

// Test_Property_FallbackMatchesBackup checks that with a failing primary
// every outcome equals what an identical standalone backup produces.
func Test_Property_FallbackMatchesBackup(t *testing.T) {
	f := NewFallback(&failingAllocator{}, NewQuota(System(), 3*KiB))
	model := NewQuota(System(), 3*KiB)
	rng := rand.New(rand.NewSource(3))
	var live, modelLive []RWByteSpan

	for step := range 2000 {
		if len(live) > 0 && rng.Intn(3) == 0 {
			i := rng.Intn(len(live))
			f.Deallocate(live[i], DefaultAlignment)
			model.Deallocate(modelLive[i], DefaultAlignment)
			live = append(live[:i], live[i+1:]...)
			modelLive = append(modelLive[:i], modelLive[i+1:]...)
			continue
		}
		size := Bytes(1 + rng.Intn(900))
		got := f.Allocate(size, DefaultAlignment)
		want := model.Allocate(size, DefaultAlignment)
		require.Equal(t, want.IsEmpty(), got.IsEmpty(), "step %d", step)
		if !got.IsEmpty() {
			require.True(t, f.Fallback().Owns(got.ReadOnly()))
			live = append(live, got)
			modelLive = append(modelLive, want)
		}
	}
}
