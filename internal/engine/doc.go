// Package engine implements streaming longest-match character substitution.
//
// The engine holds a set of (input sequence, output string) rules in a
// rune-keyed prefix tree and scans text incrementally: callers feed chunks
// of any size to Machine.Process and drain the final buffered candidate
// with Machine.Flush. A candidate match may span chunk boundaries; the
// machine buffers the unresolved suffix rather than looking ahead.
//
// ARCHITECTURE:
//
// Two pieces, built bottom-up:
//
//   - trie: the rule index. One node per rune of each registered input
//     sequence; a node carries an output string iff the path to it spells a
//     complete rule. Built once at configuration time, read-only afterwards.
//
//   - Machine: the matching state machine. While scanning, it is either
//     copying literal text or inside a candidate (a span that is so far a
//     real path in the trie). A candidate ends in one of three ways: it
//     reaches a node with no children (forced emission - no rule can extend
//     it), the next rune has no matching child (dead end - resolved by
//     backtracking to the longest complete prefix), or the chunk ends while
//     the candidate is still extensible (buffered into pending).
//
// INVARIANTS:
//   - The trie root never carries output.
//   - pending, when non-empty, is a live path in the trie.
//   - Scanning never splits a multi-byte UTF-8 sequence; bytes that do not
//     decode are copied through untouched.
//
// The machine is single-threaded and non-reentrant: one instance must not
// be shared by concurrent callers. Process and Flush never fail; every
// input has a defined handling path.
package engine
