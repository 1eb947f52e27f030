package rete

// tokenOwner is the beta/negation memory a Token currently resides in. It
// is notified so a cascade-delete can remove the token from its owner's
// list without the owner needing to scan for it by value (spec.md §3
// invariant 2).
type tokenOwner interface {
	removeToken(t *Token)
}

// Token is a node in the persistent match tree (spec.md §3). Rather than
// index-addressed arena slots, tokens are plain pointers with explicit
// parent/children back-pointers: Go's garbage collector already handles
// the resulting reference cycles (parent <-> children), so an arena of
// stable indices would only add bookkeeping without a memory-safety
// benefit (DESIGN.md).
type Token struct {
	Parent   *Token
	Fact     *Fact // nil for the dummy-top root token and for negation-produced tokens
	Owner    tokenOwner
	Children []*Token

	factsCache []Fact // lazily populated by Facts (component table: "lazy ancestor-chain of matched facts")
}

// dummyTop is the root of every rule's token tree: the distinguished
// empty-match token fed as the left input to each rule's first join
// (spec.md §4.8, GLOSSARY "Dummy top").
func newDummyTop() *Token {
	return &Token{}
}

func newToken(parent *Token, fact *Fact, owner tokenOwner) *Token {
	t := &Token{Parent: parent, Fact: fact, Owner: owner}
	if parent != nil {
		parent.Children = append(parent.Children, t)
	}
	return t
}

// Facts reconstructs token.facts: the concatenation of facts along the
// parent chain, skipping nils, in condition order (spec.md §3 invariant 1).
// The result is cached on t since facts are immutable post-assertion and
// the chain above t never mutates once built.
func (t *Token) Facts() []Fact {
	if t.factsCache != nil {
		return t.factsCache
	}
	var rev []Fact
	for cur := t; cur != nil; cur = cur.Parent {
		if cur.Fact != nil {
			rev = append(rev, *cur.Fact)
		}
	}
	facts := make([]Fact, len(rev))
	for i, f := range rev {
		facts[len(rev)-1-i] = f
	}
	t.factsCache = facts
	return facts
}

func (t *Token) removeChild(child *Token) {
	for i, c := range t.Children {
		if c == child {
			t.Children = append(t.Children[:i], t.Children[i+1:]...)
			return
		}
	}
}

// destroy cascade-deletes t: children are destroyed first (deepest first),
// then t is removed from its owner memory and from its parent's Children
// (spec.md §4.4: "unlinked from their owner memories recursively, their
// own children first").
func destroyToken(t *Token) {
	children := t.Children
	t.Children = nil
	for _, c := range children {
		destroyToken(c)
	}
	if t.Owner != nil {
		t.Owner.removeToken(t)
	}
	if t.Parent != nil {
		t.Parent.removeChild(t)
	}
}
