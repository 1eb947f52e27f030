package rete

import (
	"sync"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Status mirrors the teacher's engine lifecycle marker (rulesengine/engine.go
// READY/RUNNING/FINISHED), trimmed to the states this driver actually reaches.
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusFinished
)

// EngineOptions configures a network (spec.md §6.3, SPEC_FULL.md §10).
type EngineOptions struct {
	// AllowUndefinedFacts reserves the teacher's
	// RuleEngineOptions.AllowUndefinedFacts knob for an alternative
	// WorkingMemory backend (spec.md §6.2) whose lookups can fail; the
	// bundled in-memory implementation never needs it since every fact a
	// rule sees arrives pushed through a token, never looked up by name.
	AllowUndefinedFacts bool

	// BackfillOnAddRule controls whether AddRule replays already-asserted
	// facts through a newly compiled rule's fresh join/negation nodes
	// (spec.md §4.8, §9 Open Question: "should compiling a rule after
	// facts already exist seed it with matches against those facts?").
	// Default true: "add rules, then assert facts" and "assert facts,
	// then add rules" behave identically, which is what most production
	// systems embedding a rules engine expect.
	BackfillOnAddRule bool

	// UnlinkingEnabled names the left/right unlinking optimization
	// (spec.md §4.7). The engine does not read it: the bundled
	// join/negation nodes always keep their link state and skip
	// traversal while unlinked, so setting it to false changes nothing.
	UnlinkingEnabled bool

	Logger *zap.SugaredLogger
}

func DefaultEngineOptions() *EngineOptions {
	return &EngineOptions{
		AllowUndefinedFacts: false,
		BackfillOnAddRule:   true,
		UnlinkingEnabled:    true,
	}
}

// FiredActivation is one completed production firing (spec.md §4.6,
// SPEC_FULL.md §14): the facts bound by the rule's conditions, in condition
// order, and the variable bindings the action received.
type FiredActivation struct {
	Rule     string
	Facts    []Fact
	Bindings map[string]Value
}

// RunResult summarizes one Run() call: every activation that fired, in
// firing order, and every error raised along the way (structural errors
// never reach here — they're rejected at AddRule — only UserCodeError from
// an error-returning or panicking action, spec.md §7).
type RunResult struct {
	Fired  []FiredActivation
	Errors []error
}

// Engine is the compiled RETE II network: a WorkingMemory feeding an
// AlphaNetwork, a tree of join/negation nodes terminating in
// ProductionNodes, and the Agenda those productions post to (spec.md §3-§6).
// Adapted from the teacher's RuleEngine (rulesengine/engine.go), which held
// a flat slice of rules evaluated from scratch on every Run; this driver
// instead compiles each rule once into shared network state and reuses it
// incrementally across asserts/retracts.
type Engine struct {
	mu sync.Mutex

	wm       WorkingMemory
	alphaNet *AlphaNetwork
	dummyTop *BetaMemory

	rules map[string]*compiledRule
	order []*compiledRule // compile order, for introspection

	// betaMemories and productions are tracked centrally purely for Reset:
	// cascade-retracting every fact already clears them transitively, but
	// walking them directly makes the post-Reset invariant (every memory
	// and the agenda empty) independent of cascade-ordering subtleties.
	betaMemories []*BetaMemory
	productions  []*ProductionNode

	agenda *Agenda
	status Status
	opts   *EngineOptions
	log    *Logger

	errSink func(error)
}

// NewEngine builds a network backed by the bundled in-memory WorkingMemory.
// Pass nil for opts to get DefaultEngineOptions().
func NewEngine(opts *EngineOptions) *Engine {
	return NewEngineWithMemory(newMemory(), opts)
}

// NewEngineWithMemory builds a network over a caller-supplied WorkingMemory
// (spec.md §6.2 "alternative persistent backend"). wm must deliver "add" and
// "remove" events synchronously, in registration order, to satisfy the
// observer contract the alpha network relies on.
func NewEngineWithMemory(wm WorkingMemory, opts *EngineOptions) *Engine {
	if opts == nil {
		opts = DefaultEngineOptions()
	}
	log := newLogger(opts.Logger)

	e := &Engine{
		wm:     wm,
		rules:  make(map[string]*compiledRule),
		agenda: newAgenda(),
		status: StatusReady,
		opts:   opts,
		log:    log,
	}
	e.alphaNet = newAlphaNetwork(log, e.reportError)
	e.dummyTop = newBetaMemory(log)
	e.dummyTop.tokens = append(e.dummyTop.tokens, newDummyTop())
	e.dummyTop.linked = true
	e.betaMemories = append(e.betaMemories, e.dummyTop)

	wm.Subscribe("add", e.onAssert)
	wm.Subscribe("remove", e.onRetract)
	return e
}

func (e *Engine) onAssert(f Fact) {
	e.alphaNet.Dispatch(f)
}

func (e *Engine) onRetract(f Fact) {
	e.alphaNet.DispatchRetract(f)
}

// OnError installs a sink invoked for every UserCodeError: those raised by
// actions while draining the agenda and those raised by predicates during
// alpha dispatch (spec.md §7: "reported to an out-of-band error sink").
func (e *Engine) OnError(fn func(error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errSink = fn
}

// reportError forwards err to the installed error sink, if any. It is the
// single out-of-band reporting path shared by Run's action-panic handling
// and the alpha network's predicate-panic handling (spec.md §7), since a
// predicate panic surfaces during Assert/AssertJSON rather than Run.
func (e *Engine) reportError(err error) {
	e.mu.Lock()
	sink := e.errSink
	e.mu.Unlock()
	if sink != nil {
		sink(err)
	}
}

// Assert adds a fact to working memory, synchronously propagating it
// through the alpha network and any joins/negations it satisfies (spec.md
// §4.1, §6.3).
func (e *Engine) Assert(typeTag string, attrs map[string]Value) (Fact, error) {
	return e.wm.Assert(typeTag, attrs)
}

// AssertJSON parses raw as a flat JSON object and asserts it as a fact whose
// attributes are the object's top-level fields (SPEC_FULL.md §11 domain
// stack: gjson). Nested objects/arrays are carried as Opaque values.
func (e *Engine) AssertJSON(typeTag string, raw []byte) (Fact, error) {
	parsed := gjson.ParseBytes(raw)
	attrs := make(map[string]Value)
	parsed.ForEach(func(key, value gjson.Result) bool {
		attrs[key.String()] = valueFromGJSON(value)
		return true
	})
	return e.Assert(typeTag, attrs)
}

func valueFromGJSON(v gjson.Result) Value {
	switch v.Type {
	case gjson.Null:
		return Nil
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return Number(v.Num)
	case gjson.String:
		return String(v.Str)
	default:
		return Opaque(v.Value())
	}
}

// Retract removes a fact from working memory (spec.md §4.1, §6.3); retracting
// an unknown id is a silent no-op.
func (e *Engine) Retract(id FactID) error {
	return e.wm.Retract(id)
}

// Update is retract+assert under one stable FactID (spec.md §6.2).
func (e *Engine) Update(id FactID, attrs map[string]Value) (Fact, error) {
	return e.wm.Update(id, attrs)
}

// Facts returns every fact currently live in working memory (spec.md §6.3).
func (e *Engine) Facts() []Fact {
	var out []Fact
	e.wm.EachFact(func(f Fact) bool {
		out = append(out, f)
		return true
	})
	return out
}

// AddRule compiles r into the network (spec.md §4.8 compilation algorithm):
// one alpha memory lookup/creation and one join or negation node per
// condition, chained through freshly created beta memories, terminating in
// a ProductionNode. Structural errors (spec.md §7) are rejected before any
// network mutation.
func (e *Engine) AddRule(r *Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r == nil || r.Name == "" {
		return errEmptyRuleName()
	}
	if _, exists := e.rules[r.Name]; exists {
		return errDuplicateRule(r.Name)
	}
	if len(r.Conditions) == 0 {
		return errEmptyConditions(r.Name)
	}
	if r.Conditions[0].Negated {
		return errNegatedFirstCondition(r.Name)
	}

	cr := &compiledRule{Rule: r, Priority: r.Priority}

	type occurrence struct {
		condIdx int
		attr    string
	}
	// nonNegPos[i] is condition i's index into Token.Facts() (valid only
	// when condition i is not negated; Facts() skips negated conditions'
	// nil-fact tokens, spec.md §3 invariant 1).
	nonNegPos := make([]int, len(r.Conditions))
	pos := 0
	firstNonNegOccurrence := make(map[string]occurrence)
	seenAny := make(map[string]bool)

	currentBeta := e.dummyTop
	var newBetas []*BetaMemory
	var newProds []*ProductionNode

	for i, cond := range r.Conditions {
		if cond.Negated {
			nonNegPos[i] = -1
		} else {
			nonNegPos[i] = pos
			pos++
		}

		patternConstraints := make(map[string]Constraint, len(cond.Constraint))
		var tests []JoinTest

		for attr, c := range cond.Constraint {
			if c.Kind != ConstraintVariable {
				patternConstraints[attr] = c
				continue
			}
			patternConstraints[attr] = c
			v := c.VarName

			if !seenAny[v] {
				seenAny[v] = true
				if !cond.Negated {
					firstNonNegOccurrence[v] = occurrence{condIdx: i, attr: attr}
				}
				continue
			}
			src, ok := firstNonNegOccurrence[v]
			if !ok || src.condIdx >= i {
				return errUndefinedVariable(r.Name, v)
			}
			tests = append(tests, JoinTest{
				TokenSlotIndex:     nonNegPos[src.condIdx],
				TokenSlotAttribute: src.attr,
				FactAttribute:      attr,
			})
			if !cond.Negated {
				if _, ok := firstNonNegOccurrence[v]; !ok {
					firstNonNegOccurrence[v] = occurrence{condIdx: i, attr: attr}
				}
			}
		}

		pattern := Pattern{TypeTag: cond.TypeTag, Constraints: patternConstraints}
		alpha, err := e.alphaNet.GetOrCreate(pattern)
		if err != nil {
			return err
		}
		// A memory with no successors was just created and has never seen
		// the facts asserted before this rule; seed it so the backfill
		// below can join against them. A panicking predicate counts as no
		// match here.
		if e.opts.BackfillOnAddRule && len(alpha.successors) == 0 {
			e.wm.EachFact(func(f Fact) bool {
				if ok, _ := pattern.Matches(f); ok {
					alpha.items = append(alpha.items, f)
					alpha.linked = true
				}
				return true
			})
		}

		out := newBetaMemory(e.log)
		newBetas = append(newBetas, out)

		if cond.Negated {
			neg := newNegationNode(alpha, currentBeta, tests, out, e.log)
			alpha.addSuccessor(neg)
			currentBeta.addSuccessor(neg)
			if e.opts.BackfillOnAddRule {
				for _, t := range currentBeta.Tokens() {
					neg.leftActivate(t)
				}
			}
		} else {
			join := newJoinNode(alpha, currentBeta, tests, out, e.log)
			alpha.addSuccessor(join)
			currentBeta.addSuccessor(join)
			if e.opts.BackfillOnAddRule {
				for _, t := range currentBeta.Tokens() {
					join.leftActivate(t)
				}
			}
		}
		currentBeta = out
	}

	prod := newProductionNode(cr, e.agenda, e.log)
	currentBeta.addSuccessor(prod)
	newProds = append(newProds, prod)
	if e.opts.BackfillOnAddRule {
		for _, t := range currentBeta.Tokens() {
			prod.leftActivate(t)
		}
	}

	for name, occ := range firstNonNegOccurrence {
		cr.bindings = append(cr.bindings, varBinding{
			Name:     name,
			Position: nonNegPos[occ.condIdx],
			Attr:     occ.attr,
		})
	}
	cr.production = prod

	e.rules[r.Name] = cr
	e.order = append(e.order, cr)
	e.betaMemories = append(e.betaMemories, newBetas...)
	e.productions = append(e.productions, newProds...)
	return nil
}

// fire invokes one activation's action, recovering a panicking action into a
// UserCodeError rather than letting it unwind through Run (spec.md §7
// "User-code errors are isolated to the current evaluation").
func (e *Engine) fire(act *Activation) (result FiredActivation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &UserCodeError{Rule: act.Rule.Rule.Name, Stage: "action", Cause: r}
		}
	}()

	facts := act.Token.Facts()
	bindings := act.Rule.ExtractBindings(facts)
	if actionErr := act.Rule.Rule.Action(facts, bindings); actionErr != nil {
		return FiredActivation{}, &UserCodeError{Rule: act.Rule.Rule.Name, Stage: "action", Cause: actionErr}
	}
	return FiredActivation{Rule: act.Rule.Rule.Name, Facts: facts, Bindings: bindings}, nil
}

// Run drains the agenda, firing the highest-priority pending activation
// first and FIFO within ties, until empty (spec.md §4.6, §5, §6.3). Actions
// that assert or retract facts may push new activations onto the agenda
// mid-drain; Run keeps looping until none remain.
func (e *Engine) Run() RunResult {
	e.mu.Lock()
	e.status = StatusRunning
	e.mu.Unlock()

	var result RunResult
	for {
		act, ok := e.agenda.popNext()
		if !ok {
			break
		}
		fired, err := e.fire(act)
		if err != nil {
			result.Errors = append(result.Errors, err)
			e.reportError(err)
			continue
		}
		result.Fired = append(result.Fired, fired)
	}

	e.mu.Lock()
	e.status = StatusFinished
	e.mu.Unlock()
	return result
}

// Status reports the engine's lifecycle state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Reset empties working memory, every alpha/beta memory, every production
// node's stored tokens, and the agenda, without discarding the compiled
// network (spec.md §4.8 reset(), §6.3). Retracting every live fact already
// cascades this via destroyToken; the explicit walk below is a defensive
// second pass guaranteeing the empty-network invariant regardless of
// cascade ordering.
func (e *Engine) Reset() {
	for _, f := range e.Facts() {
		e.wm.Retract(f.ID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.alphaNet.reset()
	for _, bm := range e.betaMemories {
		if bm == e.dummyTop {
			continue
		}
		bm.reset()
	}
	for _, p := range e.productions {
		p.reset()
	}
	e.agenda.reset()
	e.status = StatusReady
}
