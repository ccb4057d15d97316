package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrieAdd_BuildsPath(t *testing.T) {
	tr := newTrie()
	tr.add("abc", "def")

	cur := tr.root
	for _, r := range "abc" {
		next, ok := cur.children[r]
		require.True(t, ok, "missing child %q", r)
		cur = next
	}
	assert.True(t, cur.hasOutput)
	assert.Equal(t, "def", cur.output)
}

func TestTrieAdd_SharedPrefix(t *testing.T) {
	tr := newTrie()
	tr.add("abc", "long")
	tr.add("ab", "short")

	a := tr.root.children['a']
	require.NotNil(t, a)
	ab := a.children['b']
	require.NotNil(t, ab)

	assert.False(t, a.hasOutput, "intermediate node must not complete a rule")
	assert.True(t, ab.hasOutput)
	assert.Equal(t, "short", ab.output)
	assert.True(t, ab.children['c'].hasOutput)
	assert.Equal(t, "long", ab.children['c'].output)
}

func TestTrieAdd_OverwriteReportsPrevious(t *testing.T) {
	tr := newTrie()

	prev, overwrote := tr.add("abc", "def")
	assert.False(t, overwrote)
	assert.Empty(t, prev)

	prev, overwrote = tr.add("abc", "xyz")
	assert.True(t, overwrote)
	assert.Equal(t, "def", prev)

	cur := tr.root.children['a'].children['b'].children['c']
	assert.Equal(t, "xyz", cur.output)
}

func TestTrieAdd_EmptyInputNeverMarksRoot(t *testing.T) {
	tr := newTrie()
	prev, overwrote := tr.add("", "nothing")

	assert.False(t, overwrote)
	assert.Empty(t, prev)
	assert.False(t, tr.root.hasOutput)
	assert.True(t, tr.empty())
}

func TestTrieAdd_MultiByteRunes(t *testing.T) {
	tr := newTrie()
	tr.add("héllo", "x")

	cur := tr.root
	for _, r := range "héllo" {
		next, ok := cur.children[r]
		require.True(t, ok, "missing child %q", r)
		cur = next
	}
	assert.True(t, cur.hasOutput)
}
