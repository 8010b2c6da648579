// Package keys maps key events to handlers, per view scope.
package keys

import "github.com/gdamore/tcell/v2"

// Binding ties a key to a handler.
type Binding struct {
	Key         tcell.Key
	Rune        rune
	Label       string // key as shown in hints, e.g. "h"
	Description string
	Handler     func()
	Visible     bool
}

// Matches returns true if the event matches this binding.
func (b *Binding) Matches(ev *tcell.EventKey) bool {
	if b.Key != tcell.KeyRune {
		return ev.Key() == b.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == b.Rune
}

// Registry holds keybindings organized by scope, in registration order.
type Registry struct {
	Global []*Binding
	Scopes map[string][]*Binding
}

// NewRegistry creates a new keybinding registry.
func NewRegistry() *Registry {
	return &Registry{
		Scopes: make(map[string][]*Binding),
	}
}

// AddGlobal registers a global keybinding.
func (r *Registry) AddGlobal(b *Binding) {
	r.Global = append(r.Global, b)
}

// Add registers a keybinding active only in scope.
func (r *Registry) Add(scope string, b *Binding) {
	r.Scopes[scope] = append(r.Scopes[scope], b)
}

// Hints returns the visible bindings of scope followed by the global ones.
func (r *Registry) Hints(scope string) []*Binding {
	var hints []*Binding
	for _, b := range r.Scopes[scope] {
		if b.Visible {
			hints = append(hints, b)
		}
	}
	for _, b := range r.Global {
		if b.Visible {
			hints = append(hints, b)
		}
	}
	return hints
}

// HandleEvent dispatches a key event to the first matching binding.
// Scope bindings win over global ones. Returns true if a handler matched.
func (r *Registry) HandleEvent(scope string, ev *tcell.EventKey) bool {
	for _, b := range r.Scopes[scope] {
		if b.Matches(ev) {
			b.Handler()
			return true
		}
	}
	for _, b := range r.Global {
		if b.Matches(ev) {
			b.Handler()
			return true
		}
	}
	return false
}
