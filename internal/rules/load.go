package rules

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LoadMode controls how errors are handled while loading a rule file.
type LoadMode int

const (
	// LoadModeFailFast stops at the first bad line.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll keeps going and reports every bad line, for
	// check-style tooling.
	LoadModeCollectAll
)

// LineError is a load diagnostic tied to a position in the source.
type LineError struct {
	Path string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Option configures loading.
type Option func(*loadConfig)

type loadConfig struct {
	raw  bool
	mode LoadMode
}

// WithRawTokens disables escape decoding: tokens reach the engine exactly as
// written. By default both tokens pass through Unescape.
func WithRawTokens() Option {
	return func(c *loadConfig) { c.raw = true }
}

// WithMode sets the error handling mode. The default is LoadModeFailFast.
func WithMode(mode LoadMode) Option {
	return func(c *loadConfig) { c.mode = mode }
}

// LoadReader parses the line format from r. name becomes the set name and is
// used in diagnostics.
//
// In fail-fast mode the returned slice has at most one error and the set is
// nil on failure. In collect-all mode the set holds every rule that did
// parse, alongside all errors found, so a checker can report everything in
// one pass.
func LoadReader(r io.Reader, name string, opts ...Option) (*Set, []error) {
	cfg := loadConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	set := &Set{Name: name}
	var errs []error

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		rule, err := ParseLine(scanner.Text())
		if err == nil && rule != nil && !cfg.raw {
			rule, err = decodeTokens(rule)
		}
		if err != nil {
			errs = append(errs, &LineError{Path: name, Line: lineNo, Err: err})
			if cfg.mode == LoadModeFailFast {
				return nil, errs
			}
			continue
		}
		if rule == nil {
			continue // blank line or comment
		}
		set.Rules = append(set.Rules, *rule)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("reading %s: %w", name, err))
		if cfg.mode == LoadModeFailFast {
			return nil, errs
		}
	}

	slog.Debug("rule set loaded",
		"name", name,
		"rules", len(set.Rules),
		"errors", len(errs),
	)
	return set, errs
}

// LoadFile loads one rule file in the line format. The set name is the file
// base name without extension.
func LoadFile(path string, opts ...Option) (*Set, []error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, []error{fmt.Errorf("opening rule file: %w", err)}
	}
	defer f.Close()

	set, errs := LoadReader(f, path, opts...)
	if set != nil {
		set.Name = setName(path)
	}
	return set, errs
}

// LoadPath loads a rule file, choosing the codec by extension: .yaml and
// .yml parse as a YAML rule set document, anything else as the line format.
func LoadPath(path string, opts ...Option) (*Set, []error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		set, err := LoadYAMLFile(path, opts...)
		if err != nil {
			return nil, []error{err}
		}
		return set, nil
	default:
		return LoadFile(path, opts...)
	}
}

// decodeTokens runs both tokens of a parsed rule through Unescape.
func decodeTokens(rule *Rule) (*Rule, error) {
	input, err := Unescape(rule.Input)
	if err != nil {
		return nil, fmt.Errorf("decoding input token: %w", err)
	}
	output, err := Unescape(rule.Output)
	if err != nil {
		return nil, fmt.Errorf("decoding output token: %w", err)
	}
	return &Rule{Input: input, Output: output}, nil
}

func setName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
