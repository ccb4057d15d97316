package rules

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MissingValueError reports a rule line that has an input token but no
// output token. It carries the offending line verbatim.
type MissingValueError struct {
	Line string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("missing map-to value in line: %s", e.Line)
}

// ParseLine parses one line of the rule-file grammar.
//
// Returns (nil, nil) for a blank line or a comment (any line whose first
// rune is whitespace). A line with an input token but no output token
// returns a *MissingValueError. Anything after the output token is
// commentary and is discarded.
//
// Tokens are returned verbatim; escape decoding is a separate, configurable
// step (see Unescape and WithRawTokens).
func ParseLine(line string) (*Rule, error) {
	if line == "" {
		return nil, nil
	}
	first, _ := utf8.DecodeRuneInString(line)
	if unicode.IsSpace(first) {
		return nil, nil
	}

	fields := strings.Fields(line)
	// fields has at least one entry: the first rune is not whitespace.
	if len(fields) < 2 {
		return nil, &MissingValueError{Line: line}
	}
	return &Rule{Input: fields[0], Output: fields[1]}, nil
}
