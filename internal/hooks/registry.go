// Package hooks provides named extension points: ordered filter callbacks
// that rewrite a value and action callbacks that observe an event.
package hooks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// DefaultPriority is the priority used by most callbacks
const DefaultPriority = 10

// FilterFunc rewrites a value flowing through an extension point
type FilterFunc[T any] func(ctx context.Context, value T, args ...any) T

// ActionFunc observes an event
type ActionFunc func(ctx context.Context, args ...any)

// callback is a registered filter or action
type callback struct {
	priority int
	seq      int
	fn       any
}

// Registry holds every registered callback keyed by extension point name
type Registry struct {
	mu      sync.RWMutex
	filters map[string][]*callback
	actions map[string][]*callback
	seq     int
	logger  *zap.Logger
}

// NewRegistry creates an empty hook registry
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		filters: make(map[string][]*callback),
		actions: make(map[string][]*callback),
		logger:  logger,
	}
}

// AddFilter registers a filter. Lower priority runs first; equal
// priorities run in registration order.
func AddFilter[T any](r *Registry, name string, priority int, fn FilterFunc[T]) {
	r.add(r.filters, name, priority, fn)
}

// AddAction registers an action
func AddAction(r *Registry, name string, priority int, fn ActionFunc) {
	r.add(r.actions, name, priority, fn)
}

func (r *Registry) add(set map[string][]*callback, name string, priority int, fn any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	list := append(set[name], &callback{priority: priority, seq: r.seq, fn: fn})
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority < list[j].priority
		}
		return list[i].seq < list[j].seq
	})
	set[name] = list
}

// ApplyFilters passes value through every filter registered under name and
// returns the result. Filters registered for another value type are
// skipped, as are filters that panic.
func ApplyFilters[T any](r *Registry, ctx context.Context, name string, value T, args ...any) T {
	if r == nil {
		return value
	}
	for _, cb := range r.snapshot(r.filters, name) {
		fn, ok := cb.fn.(FilterFunc[T])
		if !ok {
			r.logger.Warn("filter skipped: value type mismatch",
				zap.String("hook", name),
				zap.String("want", fmt.Sprintf("%T", value)))
			continue
		}
		value = runFilter(r, ctx, name, fn, value, args)
	}
	return value
}

// runFilter calls fn and keeps the incoming value when it panics
func runFilter[T any](r *Registry, ctx context.Context, name string, fn FilterFunc[T], value T, args []any) (out T) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("filter panicked", zap.String("hook", name), zap.Any("panic", rec))
			out = value
		}
	}()
	return fn(ctx, value, args...)
}

// DoAction calls every action registered under name
func (r *Registry) DoAction(ctx context.Context, name string, args ...any) {
	if r == nil {
		return
	}
	for _, cb := range r.snapshot(r.actions, name) {
		fn := cb.fn.(ActionFunc)
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Warn("action panicked", zap.String("hook", name), zap.Any("panic", rec))
				}
			}()
			fn(ctx, args...)
		}()
	}
}

// Has reports whether any filter or action is registered under name
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.filters[name]) > 0 || len(r.actions[name]) > 0
}

// RemoveAll drops every callback registered under name
func (r *Registry) RemoveAll(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.filters, name)
	delete(r.actions, name)
}

// Names returns the extension points that have callbacks, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for name := range r.filters {
		seen[name] = true
	}
	for name := range r.actions {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) snapshot(set map[string][]*callback, name string) []*callback {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*callback(nil), set[name]...)
}
