package alloc

import (
	"sync"

	"github.com/joshuapare/memkit/internal/goid"
)

// slots maps goroutine id to the slot installed on that goroutine.
// Goroutines using System have no entry.
var slots sync.Map

// slot boxes an installed allocator. Scopes are matched by slot identity, so
// allocators need not be comparable.
type slot struct {
	alloc Allocator
}

// Active returns the allocator installed on the calling goroutine, or System
// if none is.
func Active() Allocator {
	return activeOn(goid.Get())
}

// SetActive installs a on the calling goroutine and returns the previously
// active allocator. Installing nil or System clears the slot.
//
// Prefer Enter, which restores the previous allocator on Exit.
func SetActive(a Allocator) Allocator {
	var next *slot
	if a != nil && !Same(a, System()) {
		next = &slot{alloc: a}
	}
	return swapSlot(goid.Get(), next).allocator()
}

func slotOn(id uint64) *slot {
	if s, ok := slots.Load(id); ok {
		return s.(*slot)
	}
	return nil
}

func activeOn(id uint64) Allocator {
	return slotOn(id).allocator()
}

// swapSlot installs next on goroutine id, clearing the entry when next is
// nil, and returns the slot it replaced.
func swapSlot(id uint64, next *slot) *slot {
	var old any
	var loaded bool
	if next == nil {
		old, loaded = slots.LoadAndDelete(id)
	} else {
		old, loaded = slots.Swap(id, next)
	}
	if !loaded {
		return nil
	}
	return old.(*slot)
}

// allocator returns the boxed allocator; the nil slot stands for System.
func (s *slot) allocator() Allocator {
	if s == nil {
		return System()
	}
	return s.alloc
}

// AllocationContext installs an allocator on the current goroutine for the
// duration of a scope:
//
//	ctx := alloc.Enter(arena)
//	defer ctx.Exit()
//
// Scopes nest. Exiting out of order, exiting twice, or exiting on a goroutine
// other than the one that entered is a contract violation.
type AllocationContext struct {
	installed *slot
	prev      *slot
	gid       uint64
	exited    bool
}

// Enter makes a the active allocator until Exit is called.
func Enter(a Allocator) *AllocationContext {
	assertf(a != nil, "scope: enter with nil allocator")
	id := goid.Get()
	installed := &slot{alloc: a}
	return &AllocationContext{
		installed: installed,
		prev:      swapSlot(id, installed),
		gid:       id,
	}
}

// Allocator returns the allocator this scope installed.
func (c *AllocationContext) Allocator() Allocator { return c.installed.alloc }

// Previous returns the allocator that will be restored by Exit.
func (c *AllocationContext) Previous() Allocator { return c.prev.allocator() }

// Exit restores the allocator that was active when the scope was entered.
func (c *AllocationContext) Exit() {
	if checked {
		if c.exited {
			violation("scope: exit called twice")
		}
		if id := goid.Get(); id != c.gid {
			violation("scope: exit on goroutine %d, entered on %d", id, c.gid)
		}
		if slotOn(c.gid) != c.installed {
			violation("scope: exit out of order")
		}
	}
	c.exited = true
	swapSlot(c.gid, c.prev)
}
