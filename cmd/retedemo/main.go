package main

import (
	"fmt"

	"github.com/MadBomber/kbs-sub000/internal/rete"
)

func main() {
	engine := rete.NewEngine(nil)

	rule := &rete.Rule{
		Name:     "fouled-out",
		Priority: 10,
		Conditions: []rete.Condition{
			{
				TypeTag: "player",
				Constraint: map[string]rete.Constraint{
					"name":  rete.VariableConstraint("playerName"),
					"fouls": rete.PredicateConstraint(rete.Gte(rete.Number(6))),
				},
			},
			{
				TypeTag: "roster-entry",
				Negated: true,
				Constraint: map[string]rete.Constraint{
					"name":   rete.VariableConstraint("playerName"),
					"status": rete.LiteralConstraint(rete.String("ejected")),
				},
			},
		},
		Action: func(facts []rete.Fact, bindings map[string]rete.Value) error {
			fouls, _ := facts[0].Get("fouls")
			fmt.Printf("%s has fouled out (%v fouls)\n", bindings["playerName"].String(), fouls.AsInterface())
			return nil
		},
	}

	if err := engine.AddRule(rule); err != nil {
		panic(err)
	}

	if _, err := engine.Assert("roster-entry", map[string]rete.Value{
		"name":   rete.String("Jones"),
		"status": rete.String("active"),
	}); err != nil {
		panic(err)
	}

	if _, err := engine.Assert("player", map[string]rete.Value{
		"name":  rete.String("Jones"),
		"fouls": rete.Number(6),
	}); err != nil {
		panic(err)
	}

	result := engine.Run()
	for _, fired := range result.Fired {
		fmt.Printf("fired %s\n", fired.Rule)
	}
	for _, err := range result.Errors {
		fmt.Println("error:", err)
	}
}
