package rete

// betaConsumer is a join/negation node fed by a BetaMemory's left side
// (spec.md §4.3). Named relinkLeft/unlinkLeft to match the authoritative
// statement in spec.md §4.7 ("A beta memory is left-linked to its
// successor join iff it is non-empty"); §4.3's own prose calls the same
// transition a "right-relink cascade", which this implementation treats as
// a restatement of the §4.7 rule rather than a second, opposite one.
type betaConsumer interface {
	leftActivate(t *Token)
	leftDeactivate(t *Token)
	relinkLeft()
	unlinkLeft()
}

// BetaMemory holds partial-match tokens between join stages (spec.md §3,
// §4.3).
type BetaMemory struct {
	tokens     []*Token
	successors []betaConsumer
	linked     bool
	log        *Logger
}

func newBetaMemory(log *Logger) *BetaMemory {
	return &BetaMemory{log: log}
}

func (bm *BetaMemory) addSuccessor(c betaConsumer) {
	bm.successors = append(bm.successors, c)
}

// Tokens returns the live tokens in insertion order (spec.md §4.4 ordering
// guarantee: "for a right-activation, successors see tokens in left-beta
// insertion order").
func (bm *BetaMemory) Tokens() []*Token {
	return bm.tokens
}

func (bm *BetaMemory) addToken(t *Token) {
	bm.tokens = append(bm.tokens, t)
}

// removeToken implements tokenOwner: it is called during cascade-delete.
// It notifies every successor so a terminal ProductionNode can drop its
// own record of t (spec.md §4.6 "left-deactivation removes the stored
// token"), then unlinks the left side if this was the last token
// (spec.md §4.7).
func (bm *BetaMemory) removeToken(t *Token) {
	for i, tok := range bm.tokens {
		if tok == t {
			bm.tokens = append(bm.tokens[:i], bm.tokens[i+1:]...)
			break
		}
	}
	for _, s := range bm.successors {
		s.leftDeactivate(t)
	}
	if len(bm.tokens) == 0 && bm.linked {
		bm.linked = false
		for _, s := range bm.successors {
			s.unlinkLeft()
		}
	}
}

// Activate appends t then forwards it to every successor's leftActivate,
// handling the empty<->non-empty left-link transitions (spec.md §4.3,
// §4.7).
func (bm *BetaMemory) Activate(t *Token) {
	wasEmpty := len(bm.tokens) == 0
	bm.addToken(t)

	if wasEmpty {
		bm.linked = true
		for _, s := range bm.successors {
			s.relinkLeft()
		}
	}
	for _, s := range bm.successors {
		s.leftActivate(t)
	}
}

func (bm *BetaMemory) reset() {
	bm.tokens = nil
	bm.linked = false
}
