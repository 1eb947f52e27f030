package rete

import "github.com/google/uuid"

// FactID is the engine-assigned identity of a Fact, distinct from any
// equal-valued fact (spec.md §3). Adapted from the teacher's string Fact.ID
// (rulesengine/fact.go); here it is a uuid so that two facts with identical
// (type, attrs) asserted at different times never collide.
type FactID string

func newFactID() FactID {
	return FactID(uuid.NewString())
}

// Fact is an immutable (type_tag, attribute_map) value (spec.md §3).
type Fact struct {
	ID    FactID
	Type  string
	Attrs map[string]Value
}

// Get returns the attribute's value, or Nil with ok=false if absent.
func (f Fact) Get(attr string) (Value, bool) {
	v, ok := f.Attrs[attr]
	return v, ok
}

// WorkingMemory is the external collaborator contract spec.md §6.2
// describes for an alternative persistent backend. The bundled
// implementation (memory.go) backs it with EventBus-delivered observer
// notifications; any replacement must preserve synchronous, registration-
// ordered delivery of "add"/"remove" events.
type WorkingMemory interface {
	Assert(typeTag string, attrs map[string]Value) (Fact, error)
	Retract(id FactID) error
	Update(id FactID, attrs map[string]Value) (Fact, error)
	EachFact(fn func(Fact) bool)
	Subscribe(event string, fn func(Fact)) error // event: "add" | "remove"
}
