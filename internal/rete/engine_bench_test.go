package rete

import (
	"testing"

	faker "github.com/go-faker/faker/v4"
)

// BenchmarkEngineTwoConditionJoin mirrors the teacher's
// BenchmarkRuleEngineWithPath (benchmarks/benchmark_with_path_test.go):
// synthesize N driver/car fact pairs with faker-generated names and measure
// assert+run throughput for a two-condition join rule.
func BenchmarkEngineTwoConditionJoin(b *testing.B) {
	e := NewEngine(nil)
	fired := 0
	err := e.AddRule(&Rule{
		Name: "owner-red-car",
		Conditions: []Condition{
			{TypeTag: "driver", Constraint: map[string]Constraint{"name": VariableConstraint("n")}},
			{TypeTag: "car", Constraint: map[string]Constraint{
				"color": LiteralConstraint(String("red")),
				"owner": VariableConstraint("n"),
			}},
		},
		Action: func(facts []Fact, bindings map[string]Value) error {
			fired++
			return nil
		},
	})
	if err != nil {
		b.Fatalf("AddRule: %v", err)
	}

	names := make([]string, b.N)
	for i := range names {
		names[i] = faker.LastName()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Assert("driver", map[string]Value{"name": String(names[i])})
		e.Assert("car", map[string]Value{"color": String("red"), "owner": String(names[i])})
	}
	e.Run()
}
