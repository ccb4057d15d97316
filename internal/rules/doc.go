// Package rules loads substitution rule sets and hands them to the engine
// as already-decoded (input, output) pairs.
//
// Two on-disk formats are supported:
//
//   - The line format: one mapping per line, input token, whitespace, output
//     token, optional trailing commentary. A blank line, or a line whose
//     first character is whitespace (including NBSP), is a comment. Tokens
//     may use escape notation (\t \n \r \' \" \\ \u{HEX}), decoded by
//     Unescape before the rule reaches the engine.
//
//   - A YAML document with a name and a list of {from, to} rules, for
//     callers that generate rule sets programmatically.
//
// All fallibility of the system lives here: the engine itself never fails,
// so parse, decode, and load errors abort loading of the rule set and never
// surface during per-chunk processing.
package rules
