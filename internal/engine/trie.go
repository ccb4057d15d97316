package engine

// node is one vertex of the rule trie. The path of runes from the root to a
// node spells a prefix of at least one registered input sequence; the node
// carries the rule's output iff that path is itself a complete rule.
type node struct {
	output    string
	hasOutput bool
	children  map[rune]*node
}

// trie indexes registered rules by their input sequences.
//
// The root never carries output: an empty input sequence is not
// substitutable. Nodes are only ever created by add, so a node with no
// children is always the terminal of some rule and therefore carries output.
type trie struct {
	root *node
}

func newTrie() *trie {
	return &trie{root: &node{}}
}

// add registers input -> output, creating one child per rune of input.
// Re-adding an input overwrites its output (last write wins); the previous
// output is returned so the caller can surface the overwrite.
func (t *trie) add(input, output string) (prev string, overwrote bool) {
	cur := t.root
	for _, r := range input {
		child, ok := cur.children[r]
		if !ok {
			child = &node{}
			if cur.children == nil {
				cur.children = make(map[rune]*node)
			}
			cur.children[r] = child
		}
		cur = child
	}
	if cur == t.root {
		// Empty input: the root can never carry output.
		return "", false
	}
	prev, overwrote = cur.output, cur.hasOutput
	cur.output = output
	cur.hasOutput = true
	return prev, overwrote
}

// empty reports whether no rules have been registered.
func (t *trie) empty() bool {
	return len(t.root.children) == 0
}
