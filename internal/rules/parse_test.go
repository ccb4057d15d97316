package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine_BlankAndCommentLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"single space", " "},
		{"tab", "\t"},
		{"indented comment", "  this line is commentary"},
		{"nbsp comment", "\u00a0also commentary"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := ParseLine(tc.line)
			require.NoError(t, err)
			assert.Nil(t, rule)
		})
	}
}

func TestParseLine_BasicMappings(t *testing.T) {
	tests := []struct {
		line string
		want Rule
	}{
		{"``   ”", Rule{Input: "``", Output: "”"}},
		{"---\t—", Rule{Input: "---", Output: "—"}},
		{"a b trailing words are ignored", Rule{Input: "a", Output: "b"}},
		{"'   \\u{2019}", Rule{Input: "'", Output: `\u{2019}`}},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			rule, err := ParseLine(tc.line)
			require.NoError(t, err)
			require.NotNil(t, rule)
			assert.Equal(t, tc.want, *rule)
		})
	}
}

func TestParseLine_MissingValue(t *testing.T) {
	for _, line := range []string{"wrong  ", "alsoWrong"} {
		rule, err := ParseLine(line)
		assert.Nil(t, rule)

		var mv *MissingValueError
		require.ErrorAs(t, err, &mv)
		assert.Equal(t, line, mv.Line)
	}
}
