// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package fsm provides a small, strict state machine used to drive the
// remote job watch lifecycle. Unknown transitions are errors.
package fsm

import (
	"fmt"
	"sync"
)

// Transition describes a single edge in the machine.
type Transition[S ~string, E ~string] struct {
	From  S
	Event E
	To    S
}

// Machine tracks a current state and applies events atomically.
type Machine[S ~string, E ~string] struct {
	mu       sync.Mutex
	state    S
	edges    map[string]S
	terminal map[S]bool
}

// New builds a machine from an initial state and its transition table.
// Duplicate (from, event) pairs are rejected. States that never appear as
// a transition source are terminal.
func New[S ~string, E ~string](initial S, transitions []Transition[S, E]) (*Machine[S, E], error) {
	edges := make(map[string]S, len(transitions))
	sources := make(map[S]bool, len(transitions))
	states := make(map[S]bool, len(transitions)*2)
	for _, t := range transitions {
		k := key(t.From, t.Event)
		if _, exists := edges[k]; exists {
			return nil, fmt.Errorf("duplicate transition: %s on %s", t.From, t.Event)
		}
		edges[k] = t.To
		sources[t.From] = true
		states[t.From] = true
		states[t.To] = true
	}
	terminal := make(map[S]bool)
	for s := range states {
		if !sources[s] {
			terminal[s] = true
		}
	}
	return &Machine[S, E]{state: initial, edges: edges, terminal: terminal}, nil
}

// State returns the current state.
func (m *Machine[S, E]) State() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Terminal reports whether the machine has reached a state with no outgoing edges.
func (m *Machine[S, E]) Terminal() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.terminal[m.state]
}

// Fire applies an event and returns the new state. An event with no edge
// from the current state leaves the state untouched and returns an error.
func (m *Machine[S, E]) Fire(event E) (S, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	to, ok := m.edges[key(m.state, event)]
	if !ok {
		return m.state, fmt.Errorf("invalid transition: state=%s event=%s", m.state, event)
	}
	m.state = to
	return to, nil
}

func key[S ~string, E ~string](from S, event E) string {
	return string(from) + "|" + string(event)
}
