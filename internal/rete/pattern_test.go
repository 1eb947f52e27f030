package rete

import "testing"

func TestPatternMatches(t *testing.T) {
	p := Pattern{
		TypeTag: "player",
		Constraints: map[string]Constraint{
			"fouls": PredicateConstraint(Gte(Number(6))),
			"team":  LiteralConstraint(String("bulls")),
			"name":  VariableConstraint("playerName"),
		},
	}

	testCases := []struct {
		name string
		fact Fact
		want bool
	}{
		{
			"all constraints pass",
			Fact{Type: "player", Attrs: map[string]Value{
				"fouls": Number(6), "team": String("bulls"), "name": String("Jones"),
			}},
			true,
		},
		{
			"wrong type tag",
			Fact{Type: "coach", Attrs: map[string]Value{
				"fouls": Number(6), "team": String("bulls"), "name": String("Jones"),
			}},
			false,
		},
		{
			"predicate fails",
			Fact{Type: "player", Attrs: map[string]Value{
				"fouls": Number(2), "team": String("bulls"), "name": String("Jones"),
			}},
			false,
		},
		{
			"literal mismatch",
			Fact{Type: "player", Attrs: map[string]Value{
				"fouls": Number(6), "team": String("heat"), "name": String("Jones"),
			}},
			false,
		},
		{
			"missing attribute fails predicate",
			Fact{Type: "player", Attrs: map[string]Value{
				"team": String("bulls"), "name": String("Jones"),
			}},
			false,
		},
		{
			"variable constraint passes even when attribute absent",
			Fact{Type: "player", Attrs: map[string]Value{
				"fouls": Number(6), "team": String("bulls"),
			}},
			true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Matches(tc.fact)
			if err != nil {
				t.Fatalf("Matches() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("Matches() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPatternMatchesPredicatePanicIsolated(t *testing.T) {
	p := Pattern{
		TypeTag: "player",
		Constraints: map[string]Constraint{
			"fouls": PredicateConstraint(func(v Value) bool { panic("boom") }),
		},
	}
	fact := Fact{Type: "player", Attrs: map[string]Value{"fouls": Number(6)}}

	got, err := p.Matches(fact)
	if got {
		t.Errorf("Matches() = true, want false for a panicking predicate")
	}
	uce, ok := err.(*UserCodeError)
	if !ok {
		t.Fatalf("Matches() error = %v (%T), want *UserCodeError", err, err)
	}
	if uce.Stage != "predicate" {
		t.Errorf("UserCodeError.Stage = %q, want %q", uce.Stage, "predicate")
	}
}

func TestPatternKeyIgnoresVariableName(t *testing.T) {
	p1 := Pattern{TypeTag: "player", Constraints: map[string]Constraint{
		"name": VariableConstraint("a"),
	}}
	p2 := Pattern{TypeTag: "player", Constraints: map[string]Constraint{
		"name": VariableConstraint("b"),
	}}

	k1, err := p1.key()
	if err != nil {
		t.Fatalf("p1.key(): %v", err)
	}
	k2, err := p2.key()
	if err != nil {
		t.Fatalf("p2.key(): %v", err)
	}
	if k1 != k2 {
		t.Errorf("expected patterns differing only by variable name to share a key, got %q and %q", k1, k2)
	}
}

func TestPatternKeyDistinguishesPredicateIdentity(t *testing.T) {
	p1 := Pattern{TypeTag: "player", Constraints: map[string]Constraint{
		"fouls": PredicateConstraint(Gte(Number(6))),
	}}
	p2 := Pattern{TypeTag: "player", Constraints: map[string]Constraint{
		"fouls": PredicateConstraint(Gte(Number(6))),
	}}

	k1, err := p1.key()
	if err != nil {
		t.Fatalf("p1.key(): %v", err)
	}
	k2, err := p2.key()
	if err != nil {
		t.Fatalf("p2.key(): %v", err)
	}
	if k1 == k2 {
		t.Errorf("expected two distinct predicate closures to yield distinct keys")
	}
}

func TestPatternKeyStableAcrossMapOrder(t *testing.T) {
	p := Pattern{TypeTag: "player", Constraints: map[string]Constraint{
		"a": LiteralConstraint(Number(1)),
		"b": LiteralConstraint(Number(2)),
		"c": LiteralConstraint(Number(3)),
	}}

	k1, err := p.key()
	if err != nil {
		t.Fatalf("key(): %v", err)
	}
	for i := 0; i < 5; i++ {
		k2, err := p.key()
		if err != nil {
			t.Fatalf("key(): %v", err)
		}
		if k1 != k2 {
			t.Errorf("key() not stable across calls: %q vs %q", k1, k2)
		}
	}
}
