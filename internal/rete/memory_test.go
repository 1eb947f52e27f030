package rete

import "testing"

func TestMemoryAssertRetract(t *testing.T) {
	m := newMemory()

	var added, removed []Fact
	m.Subscribe("add", func(f Fact) { added = append(added, f) })
	m.Subscribe("remove", func(f Fact) { removed = append(removed, f) })

	f, err := m.Assert("widget", map[string]Value{"id": Number(1)})
	if err != nil {
		t.Fatalf("Assert: %v", err)
	}
	if len(added) != 1 || added[0].ID != f.ID {
		t.Fatalf("expected one add event for %v, got %v", f.ID, added)
	}

	if err := m.Retract(f.ID); err != nil {
		t.Fatalf("Retract: %v", err)
	}
	if len(removed) != 1 || removed[0].ID != f.ID {
		t.Fatalf("expected one remove event for %v, got %v", f.ID, removed)
	}
}

func TestMemoryRetractUnknownIsNoop(t *testing.T) {
	m := newMemory()
	var removed int
	m.Subscribe("remove", func(Fact) { removed++ })

	if err := m.Retract(FactID("does-not-exist")); err != nil {
		t.Fatalf("Retract of unknown id should be a no-op, got error: %v", err)
	}
	if removed != 0 {
		t.Errorf("expected no remove event for an unknown fact, got %d", removed)
	}
}

func TestMemorySubscribeOrderIsRegistrationOrder(t *testing.T) {
	m := newMemory()
	var order []int
	m.Subscribe("add", func(Fact) { order = append(order, 1) })
	m.Subscribe("add", func(Fact) { order = append(order, 2) })
	m.Subscribe("add", func(Fact) { order = append(order, 3) })

	m.Assert("widget", nil)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("expected synchronous, registration-ordered delivery, got %v", order)
	}
}

func TestMemoryUpdatePreservesID(t *testing.T) {
	m := newMemory()
	f, _ := m.Assert("widget", map[string]Value{"count": Number(1)})

	updated, err := m.Update(f.ID, map[string]Value{"count": Number(2)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != f.ID {
		t.Errorf("Update changed fact identity: %v != %v", updated.ID, f.ID)
	}
	count, _ := updated.Get("count")
	if !count.Equal(Number(2)) {
		t.Errorf("Update did not apply new attrs, got %v", count)
	}
}

func TestMemoryUpdateUnknownIsError(t *testing.T) {
	m := newMemory()
	_, err := m.Update(FactID("nope"), nil)
	if _, ok := err.(*UndefinedFactError); !ok {
		t.Fatalf("expected *UndefinedFactError, got %T (%v)", err, err)
	}
}
