package rete

import (
	"fmt"
	"sort"
	"strings"
	"unsafe"

	"github.com/mitchellh/hashstructure/v2"
)

// ConstraintKind tags one entry of a Pattern's constraint_map (spec.md §3).
type ConstraintKind int

const (
	ConstraintLiteral ConstraintKind = iota
	ConstraintPredicate
	ConstraintVariable
)

// Constraint is one entry of a Pattern's constraint_map: a Literal, a
// Predicate, or a Variable (spec.md §3).
type Constraint struct {
	Kind      ConstraintKind
	Literal   Value     // valid when Kind == ConstraintLiteral
	Predicate Predicate // valid when Kind == ConstraintPredicate
	VarName   string    // valid when Kind == ConstraintVariable
}

func LiteralConstraint(v Value) Constraint {
	return Constraint{Kind: ConstraintLiteral, Literal: v}
}

func PredicateConstraint(p Predicate) Constraint {
	return Constraint{Kind: ConstraintPredicate, Predicate: p}
}

func VariableConstraint(name string) Constraint {
	return Constraint{Kind: ConstraintVariable, VarName: name}
}

// Pattern is the intra-fact constraint derived from one rule condition
// (spec.md §3). The negated_flag lives on Condition, not Pattern: spec.md
// §4.2 keys patterns on "(type_tag, constraint_map)" alone, so a negated
// and a non-negated condition with identical constraints share one alpha
// memory.
type Pattern struct {
	TypeTag     string
	Constraints map[string]Constraint
}

// patternKey canonicalizes TypeTag+Constraints so structurally identical
// patterns across different rules resolve to the same alpha memory
// (spec.md §4.2). Literal/variable shape is hashed with hashstructure
// (teacher: rulesengine/fact.go HashFromObject); predicates are identity-
// compared per spec.md §4.2 ("two textually identical predicate literals
// in different rules yield distinct keys") by folding each predicate's
// closure pointer into the key instead of hashing its behavior. Variable
// names are left out of the key: they matter only for bindings.
type patternKey string

func (p Pattern) key() (patternKey, error) {
	type literalEntry struct {
		Attr string
		Kind ConstraintKind
		Val  interface{}
	}
	var literals []literalEntry
	var predicateAttrs []string
	predicatePtrs := map[string]uintptr{}

	for attr, c := range p.Constraints {
		switch c.Kind {
		case ConstraintPredicate:
			predicateAttrs = append(predicateAttrs, attr)
			// The closure value itself, not its code pointer: two closures
			// built by the same constructor share code but not identity.
			predicatePtrs[attr] = *(*uintptr)(unsafe.Pointer(&c.Predicate))
		default:
			var val interface{}
			if c.Kind == ConstraintLiteral {
				val = c.Literal.AsInterface()
			}
			literals = append(literals, literalEntry{Attr: attr, Kind: c.Kind, Val: val})
		}
	}
	sort.Slice(literals, func(i, j int) bool { return literals[i].Attr < literals[j].Attr })
	sort.Strings(predicateAttrs)

	hash, err := hashstructure.Hash(struct {
		Type     string
		Literals []literalEntry
	}{Type: p.TypeTag, Literals: literals}, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("pattern key: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%x", hash)
	for _, attr := range predicateAttrs {
		fmt.Fprintf(&b, "|%s:%d", attr, predicatePtrs[attr])
	}
	return patternKey(b.String()), nil
}

// Matches reports whether fact passes every entry of the pattern's
// constraint_map (spec.md §4.2):
//   - Literal entries require attribute equality;
//   - Predicate entries require the attribute to be present and the
//     predicate to return truthy;
//   - Variable entries always pass.
//
// A panicking predicate is isolated to this evaluation (spec.md §7): it is
// treated as a failed match and surfaced as a non-nil error rather than
// propagating into the caller's Assert/AssertJSON.
func (p Pattern) Matches(f Fact) (bool, error) {
	if f.Type != p.TypeTag {
		return false, nil
	}
	for attr, c := range p.Constraints {
		v, present := f.Get(attr)
		switch c.Kind {
		case ConstraintLiteral:
			if !present || !v.Equal(c.Literal) {
				return false, nil
			}
		case ConstraintPredicate:
			if !present {
				return false, nil
			}
			ok, err := callPredicate(c.Predicate, v)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		case ConstraintVariable:
			// always passes; binds to Nil when absent (spec.md §3).
		}
	}
	return true, nil
}

// callPredicate runs a user-supplied Predicate behind a recover, matching
// the action-panic isolation in Engine.fire (spec.md §7): a panicking
// predicate yields result=false and a *UserCodeError instead of unwinding
// through AlphaMemory.Activate / AlphaNetwork.Dispatch.
func callPredicate(p Predicate, v Value) (result bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = false
			err = &UserCodeError{Stage: "predicate", Cause: r}
		}
	}()
	return p(v), nil
}
