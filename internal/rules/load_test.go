package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const texRules = `' \u{2019}
'' \u{201D}
--- \u{2014} em dash
-- \u{2013} en dash

  anything indented is commentary
... \u{2026}
`

func TestLoadReader_LineFormat(t *testing.T) {
	set, errs := LoadReader(strings.NewReader(texRules), "tex")
	require.Empty(t, errs)
	require.NotNil(t, set)

	assert.Equal(t, "tex", set.Name)
	require.Len(t, set.Rules, 5)
	assert.Equal(t, Rule{Input: "'", Output: "’"}, set.Rules[0])
	assert.Equal(t, Rule{Input: "''", Output: "”"}, set.Rules[1])
	assert.Equal(t, Rule{Input: "---", Output: "—"}, set.Rules[2])
	assert.Equal(t, Rule{Input: "--", Output: "–"}, set.Rules[3])
	assert.Equal(t, Rule{Input: "...", Output: "…"}, set.Rules[4])
}

func TestLoadReader_DeclarationOrderIntoMachine(t *testing.T) {
	set, errs := LoadReader(strings.NewReader(texRules), "tex")
	require.Empty(t, errs)

	m := set.Machine()
	got := m.Process("dots... and --- dashes") + m.Flush()
	assert.Equal(t, "dots… and — dashes", got)
}

func TestLoadReader_RawTokens(t *testing.T) {
	set, errs := LoadReader(strings.NewReader(`a \u{2019}`+"\n"), "raw", WithRawTokens())
	require.Empty(t, errs)
	require.Len(t, set.Rules, 1)
	assert.Equal(t, `\u{2019}`, set.Rules[0].Output, "raw mode must not decode")
}

func TestLoadReader_FailFastStopsAtFirstError(t *testing.T) {
	src := "good \u2019\nbad-line\nalso good x\n"
	set, errs := LoadReader(strings.NewReader(src), "broken")

	assert.Nil(t, set)
	require.Len(t, errs, 1)

	var le *LineError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, 2, le.Line)
	assert.Equal(t, "broken", le.Path)

	var mv *MissingValueError
	require.ErrorAs(t, le, &mv)
	assert.Equal(t, "bad-line", mv.Line)
}

func TestLoadReader_CollectAllKeepsGoodRules(t *testing.T) {
	src := "good x\nbad-line\nworse \\u{d800}\nfine y\n"
	set, errs := LoadReader(strings.NewReader(src), "mixed", WithMode(LoadModeCollectAll))

	require.NotNil(t, set)
	assert.Len(t, set.Rules, 2, "good and fine survive")
	require.Len(t, errs, 2)

	var le *LineError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, 2, le.Line)
	require.ErrorAs(t, errs[1], &le)
	assert.Equal(t, 3, le.Line)

	var ue *UnescapeError
	require.ErrorAs(t, errs[1], &ue)
	assert.Equal(t, ErrKindInvalidCodePoint, ue.Kind)
}

func TestLoadFile_NameFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.charsub")
	require.NoError(t, os.WriteFile(path, []byte(texRules), 0o644))

	set, errs := LoadFile(path)
	require.Empty(t, errs)
	assert.Equal(t, "tex", set.Name)
	assert.Len(t, set.Rules, 5)
}

func TestLoadFile_Missing(t *testing.T) {
	set, errs := LoadFile(filepath.Join(t.TempDir(), "nope.charsub"))
	assert.Nil(t, set)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], os.ErrNotExist)
}

func TestLoadPath_SelectsCodecByExtension(t *testing.T) {
	dir := t.TempDir()

	line := filepath.Join(dir, "quotes.charsub")
	require.NoError(t, os.WriteFile(line, []byte("' \\u{2019}\n"), 0o644))

	doc := filepath.Join(dir, "quotes.yaml")
	require.NoError(t, os.WriteFile(doc, []byte("name: quotes\nrules:\n  - from: \"'\"\n    to: \"’\"\n"), 0o644))

	for _, path := range []string{line, doc} {
		set, errs := LoadPath(path)
		require.Empty(t, errs, "loading %s", path)
		require.Len(t, set.Rules, 1)
		assert.Equal(t, Rule{Input: "'", Output: "’"}, set.Rules[0])
	}
}

func TestSetMerge_LaterRulesWin(t *testing.T) {
	a := &Set{Name: "a"}
	a.Add("x", "1")
	b := &Set{Name: "b"}
	b.Add("x", "2")

	a.Merge(b)
	m := a.Machine()
	assert.Equal(t, "2", m.Process("x")+m.Flush())
}
