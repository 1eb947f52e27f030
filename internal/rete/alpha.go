package rete

import "sync"

// alphaConsumer is a join/negation node fed by an AlphaMemory's right side
// (spec.md §4.2).
type alphaConsumer interface {
	rightActivate(f Fact)
	rightDeactivate(f Fact)
	relinkRight()
	unlinkRight()
}

// AlphaMemory holds the facts currently satisfying one intra-fact pattern
// and fans them out to its successor join/negation nodes (spec.md §3, §4.2).
type AlphaMemory struct {
	pattern    Pattern
	items      []Fact
	successors []alphaConsumer
	linked     bool
	log        *Logger
}

func newAlphaMemory(p Pattern, log *Logger) *AlphaMemory {
	return &AlphaMemory{pattern: p, log: log}
}

// addSuccessor wires a new join/negation node as this memory's consumer.
// It does not replay existing items into c: whether a freshly compiled
// rule sees already-live facts is the engine's documented backfill policy
// (spec.md §4.8, §9 "Open question"), not an implicit alpha-memory effect.
func (am *AlphaMemory) addSuccessor(c alphaConsumer) {
	am.successors = append(am.successors, c)
}

// Items returns the live facts in insertion order (spec.md §4.4 ordering
// guarantee: "for a left-activation, [successors see facts] in alpha
// insertion order").
func (am *AlphaMemory) Items() []Fact {
	return am.items
}

// Activate right-activates the memory with a newly asserted fact (spec.md
// §4.2): append, relink+replay if this is the transition from empty, then
// forward to every successor.
func (am *AlphaMemory) Activate(f Fact) {
	wasEmpty := len(am.items) == 0
	am.items = append(am.items, f)
	am.log.debugw("alpha activate", "pattern_type", am.pattern.TypeTag, "fact_id", f.ID)

	if wasEmpty {
		am.linked = true
		for _, s := range am.successors {
			s.relinkRight()
		}
	}
	for _, s := range am.successors {
		s.rightActivate(f)
	}
}

// Deactivate right-deactivates the memory on retraction of f (spec.md
// §4.2): remove, deactivate every successor, then unlink right if empty.
func (am *AlphaMemory) Deactivate(id FactID) {
	idx := -1
	for i, f := range am.items {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	f := am.items[idx]
	am.items = append(am.items[:idx], am.items[idx+1:]...)
	am.log.debugw("alpha deactivate", "pattern_type", am.pattern.TypeTag, "fact_id", f.ID)

	for _, s := range am.successors {
		s.rightDeactivate(f)
	}
	if len(am.items) == 0 {
		am.linked = false
		for _, s := range am.successors {
			s.unlinkRight()
		}
	}
}

// AlphaNetwork is the alpha-memory index keyed by canonicalized pattern
// (spec.md §4.2 and §3 "AlphaNetwork index"): distinct rules sharing an
// identical pattern share one alpha memory.
type AlphaNetwork struct {
	mu       sync.Mutex
	memories map[patternKey]*AlphaMemory
	byType   map[string][]*AlphaMemory
	log      *Logger
	report   func(error) // forwards a panicking predicate's UserCodeError to Engine's sink (spec.md §7)
}

func newAlphaNetwork(log *Logger, report func(error)) *AlphaNetwork {
	return &AlphaNetwork{
		memories: make(map[patternKey]*AlphaMemory),
		byType:   make(map[string][]*AlphaMemory),
		log:      log,
		report:   report,
	}
}

// GetOrCreate returns the shared alpha memory for p, creating it if this
// is the first rule to declare this exact pattern.
func (an *AlphaNetwork) GetOrCreate(p Pattern) (*AlphaMemory, error) {
	key, err := p.key()
	if err != nil {
		return nil, err
	}
	an.mu.Lock()
	defer an.mu.Unlock()

	if am, ok := an.memories[key]; ok {
		return am, nil
	}
	am := newAlphaMemory(p, an.log)
	an.memories[key] = am
	an.byType[p.TypeTag] = append(an.byType[p.TypeTag], am)
	return am, nil
}

// Dispatch tests f against every alpha memory sharing its type tag and
// activates the ones that pass (spec.md §4.2).
func (an *AlphaNetwork) Dispatch(f Fact) {
	an.mu.Lock()
	memories := append([]*AlphaMemory(nil), an.byType[f.Type]...)
	an.mu.Unlock()

	for _, am := range memories {
		matched, err := am.pattern.Matches(f)
		if err != nil && an.report != nil {
			an.report(err)
		}
		if matched {
			am.Activate(f)
		}
	}
}

// DispatchRetract deactivates f from every alpha memory that currently
// holds it.
func (an *AlphaNetwork) DispatchRetract(f Fact) {
	an.mu.Lock()
	memories := append([]*AlphaMemory(nil), an.byType[f.Type]...)
	an.mu.Unlock()

	for _, am := range memories {
		am.Deactivate(f.ID)
	}
}

// reset clears every alpha memory's items without discarding the network
// (spec.md §4.8 reset()).
func (an *AlphaNetwork) reset() {
	an.mu.Lock()
	defer an.mu.Unlock()
	for _, am := range an.memories {
		am.items = nil
		am.linked = false
	}
}
