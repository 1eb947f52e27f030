package rete

// negationState tracks, for one left (partial-match) token, the set of
// alpha-memory facts currently inhibiting it and the token this node has
// propagated downstream for it, if any (spec.md §4.5).
type negationState struct {
	inhibitors map[FactID]Fact
	output     *Token // nil while inhibited
}

// NegationNode propagates a token iff the alpha memory holds zero facts
// matching the join tests against it — the closed-world "not" condition
// (spec.md §4.5). Unlike JoinNode, it never right-unlinks: an empty alpha
// is NegationNode's active case (spec.md §4.7).
type NegationNode struct {
	alpha *AlphaMemory
	beta  *BetaMemory
	tests []JoinTest
	out   *BetaMemory

	states     map[*Token]*negationState
	leftLinked bool
	log        *Logger
}

func newNegationNode(alpha *AlphaMemory, beta *BetaMemory, tests []JoinTest, out *BetaMemory, log *Logger) *NegationNode {
	return &NegationNode{
		alpha:      alpha,
		beta:       beta,
		tests:      tests,
		out:        out,
		states:     make(map[*Token]*negationState),
		leftLinked: len(beta.Tokens()) > 0,
		log:        log,
	}
}

// leftActivate scans the alpha memory for every fact that satisfies the
// join tests against t ("inhibitors"), registers t against them, and
// propagates a fact-less token downstream iff there are none (spec.md
// §4.5).
func (n *NegationNode) leftActivate(t *Token) {
	if !n.leftLinked {
		return
	}
	inhibitors := make(map[FactID]Fact)
	for _, f := range n.alpha.Items() {
		if allTestsPass(n.tests, t.Facts(), f) {
			inhibitors[f.ID] = f
		}
	}
	st := &negationState{inhibitors: inhibitors}
	n.states[t] = st
	if len(inhibitors) == 0 {
		st.output = newToken(t, nil, n.out)
		n.out.Activate(st.output)
	}
	n.log.debugw("negation left-activate", "inhibitors", len(inhibitors))
}

// leftDeactivate drops the bookkeeping for t; its propagated output token,
// if any, is already cascade-destroyed as a child of t by the time this
// fires (destroyToken destroys children before notifying the owner).
func (n *NegationNode) leftDeactivate(t *Token) {
	delete(n.states, t)
}

// rightActivate adds a newly asserted fact to every registered token's
// inhibitor set it satisfies, retracting that token's propagated output if
// the set was previously empty (spec.md §4.5).
func (n *NegationNode) rightActivate(f Fact) {
	for t, st := range n.states {
		if !allTestsPass(n.tests, t.Facts(), f) {
			continue
		}
		wasEmpty := len(st.inhibitors) == 0
		st.inhibitors[f.ID] = f
		if wasEmpty && st.output != nil {
			destroyToken(st.output)
			st.output = nil
			n.log.debugw("negation inhibited", "fact_id", f.ID, "inhibitors", len(st.inhibitors))
		}
	}
}

// rightDeactivate removes a retracted fact from every inhibitor set that
// held it, newly propagating the token if the set becomes empty (spec.md
// §4.5).
func (n *NegationNode) rightDeactivate(f Fact) {
	for t, st := range n.states {
		if _, ok := st.inhibitors[f.ID]; !ok {
			continue
		}
		delete(st.inhibitors, f.ID)
		if len(st.inhibitors) == 0 && st.output == nil {
			st.output = newToken(t, nil, n.out)
			n.out.Activate(st.output)
			n.log.debugw("negation uninhibited", "fact_id", f.ID)
		}
	}
}

// relinkRight/unlinkRight are no-ops: negation nodes are always right-
// active regardless of the alpha memory's emptiness (spec.md §4.7).
func (n *NegationNode) relinkRight() {}
func (n *NegationNode) unlinkRight() {}

func (n *NegationNode) relinkLeft() { n.leftLinked = true }
func (n *NegationNode) unlinkLeft() { n.leftLinked = false }
