package rete

import "testing"

func TestCompiledRuleExtractBindings(t *testing.T) {
	cr := &compiledRule{
		bindings: []varBinding{
			{Name: "n", Position: 0, Attr: "name"},
			{Name: "c", Position: 1, Attr: "color"},
		},
	}

	facts := []Fact{
		{Type: "driver", Attrs: map[string]Value{"name": String("Alice")}},
		{Type: "car", Attrs: map[string]Value{"color": String("red")}},
	}

	bindings := cr.ExtractBindings(facts)
	if !bindings["n"].Equal(String("Alice")) {
		t.Errorf("bindings[n] = %v, want Alice", bindings["n"])
	}
	if !bindings["c"].Equal(String("red")) {
		t.Errorf("bindings[c] = %v, want red", bindings["c"])
	}
}

func TestCompiledRuleExtractBindingsMissingAttribute(t *testing.T) {
	cr := &compiledRule{
		bindings: []varBinding{{Name: "n", Position: 0, Attr: "name"}},
	}
	facts := []Fact{{Type: "driver", Attrs: map[string]Value{}}}

	bindings := cr.ExtractBindings(facts)
	if !bindings["n"].IsNil() {
		t.Errorf("bindings[n] = %v, want Nil for an absent attribute", bindings["n"])
	}
}

func TestCompiledRuleExtractBindingsOutOfRangePosition(t *testing.T) {
	cr := &compiledRule{
		bindings: []varBinding{{Name: "n", Position: 5, Attr: "name"}},
	}
	bindings := cr.ExtractBindings(nil)
	if !bindings["n"].IsNil() {
		t.Errorf("bindings[n] = %v, want Nil for an out-of-range position", bindings["n"])
	}
}
