package rete

import "strings"

// Predicate is the unary boolean function a PredicateConstraint wraps
// (spec.md §3): "fails if attribute missing" is enforced by the alpha
// memory before the predicate ever sees a value (pattern.go), so every
// Predicate here can assume it is called with a present attribute.
type Predicate func(Value) bool

// The functions below are convenience constructors for common predicates,
// adapted from the teacher's DefaultOperators() (rulesengine/default_operators.go).
// The teacher's operators are binary (factValue, jsonValue) comparisons
// looked up by name from a condition's "operator" string; this engine's
// patterns carry predicates directly (spec.md §3 closes over the RHS
// instead of naming an operator), so each constructor here closes over the
// comparison value and returns the resulting unary Predicate.

func Eq(rhs Value) Predicate {
	return func(v Value) bool { return v.Equal(rhs) }
}

func Ne(rhs Value) Predicate {
	return func(v Value) bool { return !v.Equal(rhs) }
}

func Lt(rhs Value) Predicate {
	return func(v Value) bool { return v.Kind() == KindNumber && rhs.Kind() == KindNumber && v.Number() < rhs.Number() }
}

func Lte(rhs Value) Predicate {
	return func(v Value) bool { return v.Kind() == KindNumber && rhs.Kind() == KindNumber && v.Number() <= rhs.Number() }
}

func Gt(rhs Value) Predicate {
	return func(v Value) bool { return v.Kind() == KindNumber && rhs.Kind() == KindNumber && v.Number() > rhs.Number() }
}

func Gte(rhs Value) Predicate {
	return func(v Value) bool { return v.Kind() == KindNumber && rhs.Kind() == KindNumber && v.Number() >= rhs.Number() }
}

// In reports whether the attribute value equals one of set.
func In(set ...Value) Predicate {
	return func(v Value) bool {
		for _, s := range set {
			if v.Equal(s) {
				return true
			}
		}
		return false
	}
}

func NotIn(set ...Value) Predicate {
	in := In(set...)
	return func(v Value) bool { return !in(v) }
}

func StartsWith(prefix string) Predicate {
	return func(v Value) bool { return v.Kind() == KindString && strings.HasPrefix(v.String(), prefix) }
}

func EndsWith(suffix string) Predicate {
	return func(v Value) bool { return v.Kind() == KindString && strings.HasSuffix(v.String(), suffix) }
}

func Includes(substr string) Predicate {
	return func(v Value) bool { return v.Kind() == KindString && strings.Contains(v.String(), substr) }
}
