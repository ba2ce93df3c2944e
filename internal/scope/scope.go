// Package scope gives each view instance its own cancellable lifetime, so
// requests started for a view stop when the view goes away and their late
// results are dropped.
package scope

import (
	"context"
	"sync"
)

// Scope is the lifetime of one view instance.
type Scope struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, name string) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{name: name, ctx: ctx, cancel: cancel}
}

func (s *Scope) Name() string { return s.name }

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context { return s.ctx }

// Alive reports whether results may still be applied for this scope.
func (s *Scope) Alive() bool { return s.ctx.Err() == nil }

// Close cancels outstanding work. It is safe to call more than once.
func (s *Scope) Close() { s.cancel() }

// Apply runs fn only while the scope is alive, reporting whether it ran.
func (s *Scope) Apply(fn func()) bool {
	if !s.Alive() {
		return false
	}
	fn()
	return true
}

// Views tracks the open scope for each view key. Entering a view that is
// already open closes the previous instance first.
type Views struct {
	parent context.Context

	mu   sync.Mutex
	open map[string]*Scope
}

func NewViews(parent context.Context) *Views {
	return &Views{parent: parent, open: make(map[string]*Scope)}
}

func (v *Views) Enter(key string) *Scope {
	v.mu.Lock()
	defer v.mu.Unlock()
	if prev, ok := v.open[key]; ok {
		prev.Close()
	}
	s := New(v.parent, key)
	v.open[key] = s
	return s
}

// Current returns the open scope for key, if any.
func (v *Views) Current(key string) (*Scope, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s, ok := v.open[key]
	return s, ok
}

func (v *Views) Leave(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.open[key]; ok {
		s.Close()
		delete(v.open, key)
	}
}

// CloseAll tears down every open view, e.g. on logout or shutdown.
func (v *Views) CloseAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for key, s := range v.open {
		s.Close()
		delete(v.open, key)
	}
}
