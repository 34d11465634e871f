package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joshuapare/memkit/alloc"
)

// Default sizes for layers whose size argument is omitted.
const (
	defaultReservation = 64 * alloc.MiB
)

// layer is one allocator in a built stack.
type layer struct {
	Name  string
	Alloc alloc.Allocator
	stats func() map[string]any
}

// allocStack is an allocator stack built from a description. Layers are
// ordered outermost first; the last one is the leaf.
type allocStack struct {
	Desc   string
	Layers []layer

	closers []func() error
}

// Top returns the outermost allocator.
func (s *allocStack) Top() alloc.Allocator { return s.Layers[0].Alloc }

// Stats collects every layer's statistics, outermost first.
func (s *allocStack) Stats() []layerReport {
	out := make([]layerReport, 0, len(s.Layers))
	for _, l := range s.Layers {
		r := layerReport{Name: l.Name}
		if l.stats != nil {
			r.Stats = l.stats()
		}
		out = append(out, r)
	}
	return out
}

// Release bulk-deallocates every arena layer, outermost first so that outer
// arenas hand their chunks back before the arenas beneath them reset.
func (s *allocStack) Release() {
	for _, l := range s.Layers {
		if bulk, ok := l.Alloc.(alloc.BulkDeallocator); ok {
			bulk.DeallocateAll()
		}
	}
}

// Close releases reservations held by virtual-memory leaves.
func (s *allocStack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// buildStack parses a description such as
//
//	counting>quota:1MiB>linear:64KiB>system
//
// into an allocator stack. Layers are separated by '>' and listed outermost
// first; the last layer must be a leaf. Layer arguments follow ':'.
//
// Leaves:    system, null, virtual[:capacity[:page]], vstack[:capacity[:step]]
// Wrappers:  counting, quota:limit, linear[:granularity], stack[:granularity],
//
//	sync, ref, fallback (falls back to system)
func buildStack(desc string, log *slog.Logger) (_ *allocStack, err error) {
	tokens := strings.Split(desc, ">")
	s := &allocStack{Desc: desc, Layers: make([]layer, len(tokens))}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	var inner alloc.Allocator
	for i := len(tokens) - 1; i >= 0; i-- {
		name, args := splitToken(tokens[i])
		if name == "" {
			return nil, fmt.Errorf("layer %d: empty layer in %q", i+1, desc)
		}
		leaf := i == len(tokens)-1

		var l layer
		if leaf {
			l, err = s.buildLeaf(name, args, log)
		} else {
			l, err = buildWrapper(name, args, inner, log)
		}
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i+1, tokens[i], err)
		}
		s.Layers[i] = l
		inner = l.Alloc
	}
	return s, nil
}

func splitToken(tok string) (string, []string) {
	parts := strings.Split(strings.TrimSpace(tok), ":")
	return strings.ToLower(parts[0]), parts[1:]
}

func (s *allocStack) buildLeaf(name string, args []string, log *slog.Logger) (layer, error) {
	switch name {
	case "system":
		return layer{Name: name, Alloc: alloc.System()}, checkArity(args, 0)
	case "null":
		return layer{Name: name, Alloc: alloc.Null()}, checkArity(args, 0)

	case "virtual":
		sizes, err := parseSizes(args, 2, defaultReservation, 0)
		if err != nil {
			return layer{}, err
		}
		v, err := alloc.NewVirtual(sizes[0], &alloc.VirtualOptions{PageSize: sizes[1], Logger: log})
		if err != nil {
			return layer{}, err
		}
		s.closers = append(s.closers, v.Close)
		return layer{Name: name, Alloc: v, stats: func() map[string]any {
			st := v.Stats()
			return map[string]any{
				"reserved":        int64(st.Reserved),
				"page_size":       int64(st.PageSize),
				"committed_pages": st.CommittedPages,
				"in_use_pages":    st.InUsePages,
				"free_pages":      st.FreePages,
				"commits":         st.Commits,
				"decommits":       st.Decommits,
			}
		}}, nil

	case "vstack":
		sizes, err := parseSizes(args, 2, defaultReservation, 0)
		if err != nil {
			return layer{}, err
		}
		v, err := alloc.NewVirtualStack(sizes[0], &alloc.VirtualOptions{PageSize: sizes[1], Logger: log})
		if err != nil {
			return layer{}, err
		}
		s.closers = append(s.closers, v.Close)
		return layer{Name: name, Alloc: v, stats: func() map[string]any {
			st := v.Stats()
			return map[string]any{
				"reserved":  int64(st.Reserved),
				"committed": int64(st.Committed),
				"in_use":    int64(st.InUse),
				"commits":   st.Commits,
				"decommits": st.Decommits,
			}
		}}, nil
	}
	return layer{}, fmt.Errorf("unknown leaf %q", name)
}

func buildWrapper(name string, args []string, inner alloc.Allocator, log *slog.Logger) (layer, error) {
	switch name {
	case "counting":
		c := alloc.NewCounting(inner)
		return layer{Name: name, Alloc: c, stats: func() map[string]any {
			return map[string]any{
				"live":          c.AllocationCount(),
				"allocations":   c.ProgressiveAllocationCount(),
				"deallocations": c.DeallocationCount(),
			}
		}}, checkArity(args, 0)

	case "quota":
		if len(args) != 1 {
			return layer{}, errors.New("quota needs a limit, e.g. quota:1MiB")
		}
		limit, err := alloc.ParseBytes(args[0])
		if err != nil {
			return layer{}, err
		}
		q := alloc.NewQuota(inner, limit)
		return layer{Name: name, Alloc: q, stats: func() map[string]any {
			return map[string]any{
				"max":       int64(q.Max()),
				"usage":     int64(q.Usage()),
				"available": int64(q.Available()),
			}
		}}, nil

	case "linear", "stack":
		sizes, err := parseSizes(args, 1, alloc.DefaultChunkGranularity)
		if err != nil {
			return layer{}, err
		}
		opts := alloc.DefaultLinearOptions()
		opts.ChunkGranularity = sizes[0]
		opts.Logger = log
		if name == "stack" {
			st := alloc.NewStack(inner, opts)
			return layer{Name: name, Alloc: st, stats: linearStats(st.Metrics)}, nil
		}
		l := alloc.NewLinear(inner, opts)
		return layer{Name: name, Alloc: l, stats: linearStats(l.Metrics)}, nil

	case "sync":
		return layer{Name: name, Alloc: alloc.NewSynchronized(inner)}, checkArity(args, 0)
	case "ref":
		return layer{Name: name, Alloc: alloc.Reference(inner)}, checkArity(args, 0)
	case "fallback":
		return layer{Name: name, Alloc: alloc.NewFallback(inner, alloc.System())}, checkArity(args, 0)

	case "system", "null", "virtual", "vstack":
		return layer{}, fmt.Errorf("%s is a leaf and must come last", name)
	}
	return layer{}, fmt.Errorf("unknown layer %q", name)
}

func linearStats(metrics func() alloc.LinearMetrics) func() map[string]any {
	return func() map[string]any {
		m := metrics()
		return map[string]any{
			"size_in_use": int64(m.SizeInUse),
			"capacity":    int64(m.Capacity),
			"chunks":      m.NumChunks,
			"granularity": int64(m.ChunkGranularity),
			"utilization": m.Utilization,
		}
	}
}

// parseSizes parses up to len(defaults) size arguments, filling the rest
// from defaults.
func parseSizes(args []string, maxArgs int, defaults ...alloc.Bytes) ([]alloc.Bytes, error) {
	if err := checkArity(args, maxArgs); err != nil {
		return nil, err
	}
	out := append([]alloc.Bytes(nil), defaults...)
	for i, a := range args {
		n, err := alloc.ParseBytes(a)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func checkArity(args []string, maxArgs int) error {
	if len(args) > maxArgs {
		return fmt.Errorf("expected at most %d argument(s), got %d", maxArgs, len(args))
	}
	return nil
}
