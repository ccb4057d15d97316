package rules

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML parses a structured rule set document:
//
//	name: tex
//	rules:
//	  - from: "---"
//	    to: "—"
//
// YAML performs its own quoting, so tokens are taken literally by default;
// rule-file escape notation inside the tokens is only decoded when the
// loader is not in raw mode, matching the line format.
func LoadYAML(r io.Reader, opts ...Option) (*Set, error) {
	cfg := loadConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var set Set
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing rule set document: %w", err)
	}

	if !cfg.raw {
		for i := range set.Rules {
			decoded, err := decodeTokens(&set.Rules[i])
			if err != nil {
				return nil, fmt.Errorf("rule %d (%q): %w", i+1, set.Rules[i].Input, err)
			}
			set.Rules[i] = *decoded
		}
	}
	return &set, nil
}

// LoadYAMLFile loads a YAML rule set from disk. A document without a name
// falls back to the file's base name.
func LoadYAMLFile(path string, opts ...Option) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rule set document: %w", err)
	}
	defer f.Close()

	set, err := LoadYAML(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if set.Name == "" {
		set.Name = setName(path)
	}
	return set, nil
}

// MarshalYAML renders the set as a rule set document, with tokens in escape
// notation so the output is also valid input for the line format's decoder.
func (s *Set) MarshalYAML() (any, error) {
	type doc struct {
		Name  string `yaml:"name"`
		Rules []Rule `yaml:"rules"`
	}
	out := doc{Name: s.Name, Rules: make([]Rule, len(s.Rules))}
	for i, r := range s.Rules {
		out.Rules[i] = Rule{Input: Escape(r.Input), Output: Escape(r.Output)}
	}
	return out, nil
}
