package rete

import (
	"fmt"
	"sync"

	"github.com/asaskevich/EventBus"
)

// memory is the bundled WorkingMemory implementation. It owns the live
// fact set (spec.md §4.1) and broadcasts "add"/"remove" events over an
// EventBus.Bus, the same library the teacher wires for its success/failure
// notifications (rulesengine/engine.go). EventBus.Publish invokes
// synchronously-subscribed handlers in registration order on the calling
// goroutine, which is exactly the delivery guarantee spec.md §4.1 requires.
type memory struct {
	mu    sync.RWMutex
	facts map[FactID]Fact
	bus   EventBus.Bus
}

func newMemory() *memory {
	return &memory{
		facts: make(map[FactID]Fact),
		bus:   EventBus.New(),
	}
}

func (m *memory) Assert(typeTag string, attrs map[string]Value) (Fact, error) {
	f := Fact{ID: newFactID(), Type: typeTag, Attrs: attrs}
	m.mu.Lock()
	m.facts[f.ID] = f
	m.mu.Unlock()
	m.bus.Publish("add", f)
	return f, nil
}

// Retract is idempotent on an absent fact (spec.md §4.1: "silent no-op").
func (m *memory) Retract(id FactID) error {
	m.mu.Lock()
	f, ok := m.facts[id]
	if ok {
		delete(m.facts, id)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	m.bus.Publish("remove", f)
	return nil
}

// Update is semantically equivalent to retract+assert (spec.md §6.2),
// but keeps the fact's identity stable for callers that already hold it.
func (m *memory) Update(id FactID, attrs map[string]Value) (Fact, error) {
	m.mu.Lock()
	old, ok := m.facts[id]
	if !ok {
		m.mu.Unlock()
		return Fact{}, &UndefinedFactError{FactID: id}
	}
	updated := Fact{ID: id, Type: old.Type, Attrs: attrs}
	m.facts[id] = updated
	m.mu.Unlock()

	m.bus.Publish("remove", old)
	m.bus.Publish("add", updated)
	return updated, nil
}

func (m *memory) EachFact(fn func(Fact) bool) {
	m.mu.RLock()
	snapshot := make([]Fact, 0, len(m.facts))
	for _, f := range m.facts {
		snapshot = append(snapshot, f)
	}
	m.mu.RUnlock()

	for _, f := range snapshot {
		if !fn(f) {
			return
		}
	}
}

func (m *memory) Subscribe(event string, fn func(Fact)) error {
	if event != "add" && event != "remove" {
		return fmt.Errorf("working memory: unknown event %q, want \"add\" or \"remove\"", event)
	}
	return m.bus.Subscribe(event, fn)
}

func (m *memory) reset() {
	m.mu.Lock()
	m.facts = make(map[FactID]Fact)
	m.mu.Unlock()
}
