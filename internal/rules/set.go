package rules

import "charsub/internal/engine"

// Rule is one registered (input sequence, output string) mapping.
type Rule struct {
	Input  string `yaml:"from"`
	Output string `yaml:"to"`
}

// Set is an ordered collection of rules. Order is declaration order from the
// source file and is preserved all the way into the engine, so that a later
// duplicate input observably overwrites an earlier one.
type Set struct {
	Name  string `yaml:"name"`
	Rules []Rule `yaml:"rules"`
}

// Machine compiles the set into a fresh substitution engine. The engine is
// independent of the set; mutating one does not affect the other.
func (s *Set) Machine() *engine.Machine {
	m := engine.New()
	for _, r := range s.Rules {
		m.AddRule(r.Input, r.Output)
	}
	return m
}

// Add appends a rule, keeping declaration order.
func (s *Set) Add(input, output string) {
	s.Rules = append(s.Rules, Rule{Input: input, Output: output})
}

// Merge appends all rules of other after the rules of s. With overlapping
// inputs the later set wins, matching engine overwrite semantics.
func (s *Set) Merge(other *Set) {
	s.Rules = append(s.Rules, other.Rules...)
}
