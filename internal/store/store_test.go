package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charsub/internal/rules"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func texSet() *rules.Set {
	set := &rules.Set{Name: "tex"}
	set.Add("'", "’")
	set.Add("''", "”")
	set.Add("---", "—")
	return set
}

func TestOpen_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, s2.Close())
}

func TestSaveAndGetSet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rev, err := s.SaveSet(ctx, texSet())
	require.NoError(t, err)
	assert.NotEmpty(t, rev)

	got, err := s.GetSet(ctx, "tex")
	require.NoError(t, err)
	assert.Equal(t, texSet().Rules, got.Rules, "rules come back in declaration order")
}

func TestSaveSet_ReplaceSemantics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rev1, err := s.SaveSet(ctx, texSet())
	require.NoError(t, err)

	smaller := &rules.Set{Name: "tex"}
	smaller.Add("--", "–")
	rev2, err := s.SaveSet(ctx, smaller)
	require.NoError(t, err)
	assert.NotEqual(t, rev1, rev2, "every save gets a fresh revision")

	got, err := s.GetSet(ctx, "tex")
	require.NoError(t, err)
	require.Len(t, got.Rules, 1, "old rules must not linger after replace")
	assert.Equal(t, rules.Rule{Input: "--", Output: "–"}, got.Rules[0])
}

func TestSaveSet_RequiresName(t *testing.T) {
	s := openTestStore(t)
	_, err := s.SaveSet(context.Background(), &rules.Set{})
	assert.Error(t, err)
}

func TestGetSet_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetSet(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSets(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SaveSet(ctx, texSet())
	require.NoError(t, err)

	empty := &rules.Set{Name: "empty"}
	_, err = s.SaveSet(ctx, empty)
	require.NoError(t, err)

	infos, err := s.ListSets(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	// Ordered by name.
	assert.Equal(t, "empty", infos[0].Name)
	assert.Equal(t, 0, infos[0].RuleCount)
	assert.Equal(t, "tex", infos[1].Name)
	assert.Equal(t, 3, infos[1].RuleCount)
	assert.NotEmpty(t, infos[1].Revision)
	assert.NotEmpty(t, infos[1].UpdatedAt)
}

func TestDeleteSet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SaveSet(ctx, texSet())
	require.NoError(t, err)

	require.NoError(t, s.DeleteSet(ctx, "tex"))

	_, err = s.GetSet(ctx, "tex")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteSet(ctx, "tex"), ErrNotFound)
}

func TestRoundTripThroughMachine(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SaveSet(ctx, texSet())
	require.NoError(t, err)

	set, err := s.GetSet(ctx, "tex")
	require.NoError(t, err)

	m := set.Machine()
	assert.Equal(t, "it’s — done”", m.Process("it's --- done''")+m.Flush())
}
