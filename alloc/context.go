package alloc

import "context"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying a. Use it where the allocator must
// follow a request across goroutines, which the goroutine-scoped Active slot
// cannot do.
func NewContext(ctx context.Context, a Allocator) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the allocator carried by ctx, or Active if there is none.
func FromContext(ctx context.Context) Allocator {
	if a, ok := ctx.Value(ctxKey{}).(Allocator); ok && a != nil {
		return a
	}
	return Active()
}
