package rete

import "fmt"

// StructuralError represents an invariant-violating input to the engine,
// rejected synchronously at AddRule (spec.md §7 "Structural").
type StructuralError struct {
	Message string
	Code    string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newStructuralError(code, format string, args ...interface{}) *StructuralError {
	return &StructuralError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func errUndefinedVariable(rule, varName string) *StructuralError {
	return newStructuralError("UNDEFINED_VARIABLE",
		"rule %q references variable %q not bound by any earlier condition", rule, varName)
}

func errDuplicateRule(name string) *StructuralError {
	return newStructuralError("DUPLICATE_RULE", "rule %q already compiled into the network", name)
}

func errNegatedFirstCondition(rule string) *StructuralError {
	return newStructuralError("NEGATED_FIRST_CONDITION",
		"rule %q: the first condition cannot be negated", rule)
}

func errEmptyConditions(rule string) *StructuralError {
	return newStructuralError("EMPTY_CONDITIONS", "rule %q has no conditions", rule)
}

func errEmptyRuleName() *StructuralError {
	return newStructuralError("EMPTY_RULE_NAME", "rule name is required")
}

// UndefinedFactError mirrors the teacher's error for an Update against a
// fact id the working memory does not hold. Retracting an unknown id is a
// no-op and does not return it.
type UndefinedFactError struct {
	FactID FactID
}

func (e *UndefinedFactError) Error() string {
	return fmt.Sprintf("UNDEFINED_FACT: %s", e.FactID)
}

// UserCodeError wraps a recovered panic from a user-supplied predicate or
// action, or an error an action returned (spec.md §7 "User-code"). It is
// reported to the engine's out-of-band sink and never tears down network
// state.
type UserCodeError struct {
	Rule  string
	Stage string // "predicate" | "action"
	Cause interface{}
}

func (e *UserCodeError) Error() string {
	return fmt.Sprintf("rule %q: %s failed: %v", e.Rule, e.Stage, e.Cause)
}
