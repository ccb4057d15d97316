package rules

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UnescapeErrorKind categorizes escape decoding failures.
type UnescapeErrorKind string

const (
	// ErrKindBadEscape: unrecognized character after a backslash.
	ErrKindBadEscape UnescapeErrorKind = "BAD_ESCAPE"

	// ErrKindMissingOpenBrace: \u not followed by {.
	ErrKindMissingOpenBrace UnescapeErrorKind = "MISSING_OPEN_BRACE"

	// ErrKindNonHexDigit: non-hex digit inside \u{...}.
	ErrKindNonHexDigit UnescapeErrorKind = "NON_HEX_DIGIT"

	// ErrKindHexValueTooLarge: \u{...} value exceeds 0x10FFFF.
	ErrKindHexValueTooLarge UnescapeErrorKind = "HEX_VALUE_TOO_LARGE"

	// ErrKindInvalidCodePoint: \u{...} value is numerically in range but not
	// a valid code point (a surrogate).
	ErrKindInvalidCodePoint UnescapeErrorKind = "INVALID_CODE_POINT"
)

// message returns the human-readable description for the kind.
func (k UnescapeErrorKind) message() string {
	switch k {
	case ErrKindBadEscape:
		return "bad escape"
	case ErrKindMissingOpenBrace:
		return `missing open brace after \u`
	case ErrKindNonHexDigit:
		return `non-hex digit in \u`
	case ErrKindHexValueTooLarge:
		return `hex value too large in \u`
	case ErrKindInvalidCodePoint:
		return `invalid value in \u`
	default:
		return "escape decoding failed"
	}
}

// UnescapeError reports a failure to decode escape notation. Prefix is the
// portion of the input before the failure and Offending is the rune at
// which decoding stopped, so diagnostics can show exactly where the input
// went wrong.
type UnescapeError struct {
	Kind      UnescapeErrorKind
	Prefix    string
	Offending rune
}

func (e *UnescapeError) Error() string {
	return fmt.Sprintf("%s. failed at: %s%c", e.Kind.message(), e.Prefix, e.Offending)
}

// decoder states for Unescape.
type unescapeState int

const (
	stateNormal unescapeState = iota
	stateEscape
	stateStartUnicode
	stateInUnicode
)

// Unescape replaces escape notation in s with the characters it denotes:
// \t \n \r \' \" \\ and \u{HEX} (one to six hex digits, value at most
// 0x10FFFF, surrogates rejected).
//
// A string with no backslash is returned unchanged without allocating.
func Unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var out strings.Builder
	out.Grow(len(s)) // decoding never grows the string

	state := stateNormal
	var value rune

	for i, r := range s {
		switch state {
		case stateNormal:
			if r == '\\' {
				state = stateEscape
			} else {
				out.WriteRune(r)
			}

		case stateEscape:
			switch r {
			case 't':
				out.WriteByte('\t')
			case 'n':
				out.WriteByte('\n')
			case 'r':
				out.WriteByte('\r')
			case '\\':
				out.WriteByte('\\')
			case '\'':
				out.WriteByte('\'')
			case '"':
				out.WriteByte('"')
			case 'u':
				state = stateStartUnicode
				continue
			default:
				return "", &UnescapeError{Kind: ErrKindBadEscape, Prefix: s[:i], Offending: r}
			}
			state = stateNormal

		case stateStartUnicode:
			if r != '{' {
				return "", &UnescapeError{Kind: ErrKindMissingOpenBrace, Prefix: s[:i], Offending: r}
			}
			value = 0
			state = stateInUnicode

		case stateInUnicode:
			if r == '}' {
				if !utf8.ValidRune(value) {
					return "", &UnescapeError{Kind: ErrKindInvalidCodePoint, Prefix: s[:i], Offending: '}'}
				}
				out.WriteRune(value)
				state = stateNormal
				continue
			}
			d, ok := hexDigit(r)
			if !ok {
				return "", &UnescapeError{Kind: ErrKindNonHexDigit, Prefix: s[:i], Offending: r}
			}
			value = value<<4 + d
			if value > unicode.MaxRune {
				return "", &UnescapeError{Kind: ErrKindHexValueTooLarge, Prefix: s[:i], Offending: r}
			}
		}
	}

	if state != stateNormal {
		// Input ended mid-escape.
		return "", &UnescapeError{Kind: ErrKindBadEscape, Prefix: s, Offending: '\\'}
	}
	return out.String(), nil
}

// Escape is the inverse of Unescape, used when rules are written back out
// in the line format. Backslash, quotes, and whitespace become two-character
// escapes; other non-graphic runes become \u{HEX}. The result survives a
// round trip through Unescape and never contains token-splitting whitespace.
func Escape(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\t':
			out.WriteString(`\t`)
		case '\n':
			out.WriteString(`\n`)
		case '\r':
			out.WriteString(`\r`)
		case '\\':
			out.WriteString(`\\`)
		case '\'':
			out.WriteString(`\'`)
		case '"':
			out.WriteString(`\"`)
		default:
			if unicode.IsSpace(r) || !unicode.IsGraphic(r) {
				fmt.Fprintf(&out, `\u{%x}`, r)
			} else {
				out.WriteRune(r)
			}
		}
	}
	return out.String()
}

func hexDigit(r rune) (rune, bool) {
	switch {
	case r >= '0' && r <= '9':
		return r - '0', true
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10, true
	case r >= 'A' && r <= 'F':
		return r - 'A' + 10, true
	}
	return 0, false
}
