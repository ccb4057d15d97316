package engine

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Machine applies longest-match substitution rules to a stream of text.
//
// Rules are registered up front with AddRule; text is then fed in chunks of
// arbitrary size to Process, and Flush is called once at end of input to
// drain any candidate still buffered across a chunk boundary.
//
// State between calls is exactly one string: pending, the suffix of the
// most recent input that is still a viable prefix of some rule but has not
// yet reached a decision point. It is always a live path in the trie.
//
// Machine is not safe for concurrent use; Process and Flush mutate pending
// in place.
type Machine struct {
	rules   *trie
	pending string
}

// New returns a Machine with no rules. With an empty rule set, Process
// returns its input unchanged and Flush always returns "".
func New() *Machine {
	return &Machine{rules: newTrie()}
}

// AddRule registers input -> output. Infallible: the last registration for
// a given input wins, and an overwrite is logged rather than rejected.
// Rules must not be added once processing has begun.
func (m *Machine) AddRule(input, output string) {
	prev, overwrote := m.rules.add(input, output)
	if overwrote {
		slog.Warn("overwriting substitution rule",
			"input", input,
			"old", prev,
			"new", output,
		)
	}
}

// Process scans one chunk and returns the substituted text produced so far.
// The result may be shorter than the full translation of chunk: a trailing
// candidate that could still grow into a longer rule is buffered and
// resolved by the next Process call or by Flush.
//
// When no rule could possibly start anywhere in the chunk and nothing is
// buffered, the chunk is returned as-is without allocating.
func (m *Machine) Process(chunk string) string {
	if m.pending == "" && !m.couldMatch(chunk) {
		return chunk
	}

	input := chunk
	if m.pending != "" {
		input = m.pending + chunk
		m.pending = ""
	}

	var out strings.Builder
	out.Grow(len(input))
	m.scan(input, &out)
	return out.String()
}

// Flush resolves and clears any buffered candidate. Returns "" when nothing
// is buffered, so calling it repeatedly is harmless.
func (m *Machine) Flush() string {
	if m.pending == "" {
		return ""
	}
	resolved := m.resolve(m.pending)
	m.pending = ""
	return resolved
}

// Reset drops any buffered candidate without emitting it. Registered rules
// are kept.
func (m *Machine) Reset() {
	m.pending = ""
}

// couldMatch reports whether any rune of chunk can start a candidate.
func (m *Machine) couldMatch(chunk string) bool {
	if m.rules.empty() {
		return false
	}
	for _, r := range chunk {
		if _, ok := m.rules.root.children[r]; ok {
			return true
		}
	}
	return false
}

// scan runs the matching state machine over input, appending emitted text
// to out and leaving any still-viable trailing candidate in m.pending.
//
// Decoding is done by hand so that a byte sequence that is not valid UTF-8
// is copied through one byte at a time instead of being rewritten to the
// replacement character.
func (m *Machine) scan(input string, out *strings.Builder) {
	cur := m.rules.root
	inCandidate := false
	start := 0

	for i := 0; i < len(input); {
		r, size := utf8.DecodeRuneInString(input[i:])
		// A stray byte decodes as (RuneError, 1). It must never join a
		// candidate - a rule could legitimately contain U+FFFD - so it is
		// only ever copied through literally.
		valid := r != utf8.RuneError || size > 1

		if inCandidate {
			if valid {
				if child, ok := cur.children[r]; ok {
					cur = child
					i += size
					continue
				}
			}
			// Dead end: resolve what was buffered, then re-attempt the
			// current rune from the root.
			out.WriteString(m.resolve(input[start:i]))
			inCandidate = false
			cur = m.rules.root
		}

		if child, ok := m.rules.root.children[r]; valid && ok {
			inCandidate = true
			start = i
			cur = child
		} else {
			out.WriteString(input[i : i+size])
		}
		i += size
	}

	if !inCandidate {
		return
	}
	if len(cur.children) == 0 {
		// No rule can extend this candidate, so it is decided now. A
		// childless non-root node always completes a rule.
		out.WriteString(cur.output)
		return
	}
	m.pending = input[start:]
}

// resolve determines the emission for a candidate that dead-ended. The
// candidate is known to be a path in the trie.
//
// If the whole candidate completes a rule, its output is emitted. Failing
// that, the longest prefix that completes a rule is resolved the same way
// and the leftover suffix is emitted literally. With no completing prefix
// at all, the candidate itself is emitted literally.
func (m *Machine) resolve(candidate string) string {
	cur := m.rules.root
	lastEnd := -1
	for i, r := range candidate {
		child, ok := cur.children[r]
		if !ok {
			// Unreachable while the pending invariant holds; emitting
			// literally is the only lossless answer.
			return candidate
		}
		cur = child
		if cur.hasOutput {
			lastEnd = i + utf8.RuneLen(r)
		}
	}
	if cur.hasOutput {
		return cur.output
	}
	if lastEnd < 0 {
		return candidate
	}
	// The recursion strictly shortens the candidate: lastEnd ends on a
	// complete rule, so the recursive call bottoms out immediately.
	return m.resolve(candidate[:lastEnd]) + candidate[lastEnd:]
}
