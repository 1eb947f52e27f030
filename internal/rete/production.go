package rete

import "sync"

// Activation pairs a compiled rule with the token that fully matched it,
// the unit of work the agenda drains (spec.md §4.6, GLOSSARY "Agenda").
type Activation struct {
	Rule  *compiledRule
	Token *Token
}

// Agenda is the ordered queue of pending production activations (spec.md
// §4.6, §5, GLOSSARY). Entries drain in descending rule priority, FIFO
// within equal priority: Agenda keeps arrival order in entries and the
// scan in popNext picks the first (i.e. earliest-arrived) maximum-priority
// entry.
type Agenda struct {
	mu      sync.Mutex
	entries []*Activation
}

func newAgenda() *Agenda {
	return &Agenda{}
}

func (a *Agenda) push(act *Activation) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, act)
}

// remove drops the pending activation for t, if any (spec.md §4.6:
// "if the agenda has not yet fired it, it is removed from the agenda too").
func (a *Agenda) remove(t *Token) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, act := range a.entries {
		if act.Token == t {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			return
		}
	}
}

func (a *Agenda) popNext() (*Activation, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return nil, false
	}
	bestIdx := 0
	for i := 1; i < len(a.entries); i++ {
		if a.entries[i].Rule.Priority > a.entries[bestIdx].Rule.Priority {
			bestIdx = i
		}
	}
	act := a.entries[bestIdx]
	a.entries = append(a.entries[:bestIdx], a.entries[bestIdx+1:]...)
	return act, true
}

func (a *Agenda) isEmpty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries) == 0
}

func (a *Agenda) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = nil
}

// ProductionNode is the terminal node of a compiled rule: it stores fully
// matched tokens and hands each one to the engine's agenda exactly once
// (spec.md §4.6).
type ProductionNode struct {
	rule   *compiledRule
	agenda *Agenda
	tokens []*Token
	log    *Logger
}

func newProductionNode(rule *compiledRule, agenda *Agenda, log *Logger) *ProductionNode {
	return &ProductionNode{rule: rule, agenda: agenda, log: log}
}

func (p *ProductionNode) leftActivate(t *Token) {
	p.tokens = append(p.tokens, t)
	p.agenda.push(&Activation{Rule: p.rule, Token: t})
	p.log.debugw("production activate", "rule", p.rule.Rule.Name)
}

// leftDeactivate removes the stored token and, if it has not yet fired,
// its pending agenda entry (spec.md §4.6).
func (p *ProductionNode) leftDeactivate(t *Token) {
	for i, tok := range p.tokens {
		if tok == t {
			p.tokens = append(p.tokens[:i], p.tokens[i+1:]...)
			break
		}
	}
	p.agenda.remove(t)
}

// ProductionNode is always linked: it is the terminal stage and has no
// right side, so these exist only to satisfy betaConsumer.
func (p *ProductionNode) relinkLeft() {}
func (p *ProductionNode) unlinkLeft() {}

func (p *ProductionNode) reset() {
	p.tokens = nil
}
