package rete

// JoinNode cartesian-joins an alpha memory (right) against a beta memory
// (left), filtering with JoinTests (spec.md §4.4). Its output is always a
// freshly compiled BetaMemory (spec.md §4.8 compilation step 2d).
type JoinNode struct {
	alpha *AlphaMemory
	beta  *BetaMemory
	tests []JoinTest
	out   *BetaMemory

	rightLinked bool
	leftLinked  bool
	log         *Logger
}

func newJoinNode(alpha *AlphaMemory, beta *BetaMemory, tests []JoinTest, out *BetaMemory, log *Logger) *JoinNode {
	return &JoinNode{
		alpha:       alpha,
		beta:        beta,
		tests:       tests,
		out:         out,
		rightLinked: len(alpha.Items()) > 0,
		leftLinked:  len(beta.Tokens()) > 0,
		log:         log,
	}
}

// rightActivate handles a newly asserted fact arriving from the alpha
// memory: for each token currently in the left beta memory, in insertion
// order, run every join test and build a child token on success (spec.md
// §4.4).
func (j *JoinNode) rightActivate(f Fact) {
	if !j.rightLinked {
		return
	}
	for _, t := range j.beta.Tokens() {
		if allTestsPass(j.tests, t.Facts(), f) {
			fCopy := f
			child := newToken(t, &fCopy, j.out)
			j.out.Activate(child)
		}
	}
}

// rightDeactivate cascade-deletes every token this join produced from f at
// this stage (spec.md §4.4): scan each left token's children for ones
// whose Fact is f and whose Owner is this join's output memory.
func (j *JoinNode) rightDeactivate(f Fact) {
	for _, t := range j.beta.Tokens() {
		for _, c := range append([]*Token(nil), t.Children...) {
			if c.Fact != nil && c.Fact.ID == f.ID && c.Owner == tokenOwner(j.out) {
				destroyToken(c)
			}
		}
	}
}

// leftActivate handles a newly arrived partial-match token from the left
// beta memory: for each fact currently in the alpha memory, in insertion
// order, run every join test and build a child token on success.
func (j *JoinNode) leftActivate(t *Token) {
	if !j.leftLinked {
		return
	}
	for _, f := range j.alpha.Items() {
		fCopy := f
		if allTestsPass(j.tests, t.Facts(), fCopy) {
			child := newToken(t, &fCopy, j.out)
			j.out.Activate(child)
		}
	}
}

// leftDeactivate is a no-op: a left token's descendants are cascade-deleted
// directly via destroyToken when the ancestor itself is destroyed, so the
// join does not need a separate notification path.
func (j *JoinNode) leftDeactivate(t *Token) {}

func (j *JoinNode) relinkRight() {
	j.rightLinked = true
	j.log.debugw("join relink right", "pattern_type", j.alpha.pattern.TypeTag)
}

func (j *JoinNode) unlinkRight() {
	j.rightLinked = false
	j.log.debugw("join unlink right", "pattern_type", j.alpha.pattern.TypeTag)
}

func (j *JoinNode) relinkLeft() {
	j.leftLinked = true
	j.log.debugw("join relink left", "pattern_type", j.alpha.pattern.TypeTag)
}

func (j *JoinNode) unlinkLeft() {
	j.leftLinked = false
	j.log.debugw("join unlink left", "pattern_type", j.alpha.pattern.TypeTag)
}
