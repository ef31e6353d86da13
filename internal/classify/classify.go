// Package classify maps event categories to rendering rules.
//
// The rule table is plain data supplied at startup: a set of category
// entries plus exactly one fallback. Adding a category is a configuration
// change, never a code change. Classification is total: every category
// resolves to some rule because the fallback always exists.
package classify

import (
	"fmt"
	"strings"
)

// Emphasis selects the visual weight a rule's records are rendered with.
// The names line up with the style palette in internal/render.
type Emphasis int

const (
	EmphasisPlain Emphasis = iota
	EmphasisMuted
	EmphasisAccent
	EmphasisSuccess
	EmphasisWarning
	EmphasisDanger
	EmphasisInfo
)

var emphasisNames = map[string]Emphasis{
	"plain":   EmphasisPlain,
	"muted":   EmphasisMuted,
	"accent":  EmphasisAccent,
	"success": EmphasisSuccess,
	"warning": EmphasisWarning,
	"danger":  EmphasisDanger,
	"info":    EmphasisInfo,
}

// ParseEmphasis resolves a configured emphasis name. An empty value means
// plain; anything unrecognized is a configuration error.
func ParseEmphasis(name string) (Emphasis, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return EmphasisPlain, nil
	}
	if e, ok := emphasisNames[trimmed]; ok {
		return e, nil
	}
	return EmphasisPlain, fmt.Errorf("unknown emphasis %q", name)
}

// String returns the configuration name of the emphasis.
func (e Emphasis) String() string {
	switch e {
	case EmphasisMuted:
		return "muted"
	case EmphasisAccent:
		return "accent"
	case EmphasisSuccess:
		return "success"
	case EmphasisWarning:
		return "warning"
	case EmphasisDanger:
		return "danger"
	case EmphasisInfo:
		return "info"
	default:
		return "plain"
	}
}

// Rule is the rendering decision for one category: the label stamped on the
// block and the emphasis it is drawn with.
type Rule struct {
	Category int
	Label    string
	Emphasis Emphasis
}

// RuleSet is the category→rule table plus its mandatory fallback.
type RuleSet struct {
	rules    map[int]Rule
	fallback Rule
}

// NewRuleSet builds a RuleSet from category entries and the fallback rule.
// Duplicate categories and empty labels are rejected.
func NewRuleSet(rules []Rule, fallback Rule) (*RuleSet, error) {
	if strings.TrimSpace(fallback.Label) == "" {
		return nil, fmt.Errorf("default rule label is empty")
	}
	table := make(map[int]Rule, len(rules))
	for _, r := range rules {
		if strings.TrimSpace(r.Label) == "" {
			return nil, fmt.Errorf("rule for category %d: label is empty", r.Category)
		}
		if _, exists := table[r.Category]; exists {
			return nil, fmt.Errorf("duplicate rule for category %d", r.Category)
		}
		table[r.Category] = r
	}
	return &RuleSet{rules: table, fallback: fallback}, nil
}

// Default returns the built-in table: no category entries, everything
// falls back to an unstyled OTHER rule. Keeps the monitor usable with no
// rule configuration at all.
func Default() *RuleSet {
	return &RuleSet{
		rules:    map[int]Rule{},
		fallback: Rule{Label: "OTHER", Emphasis: EmphasisPlain},
	}
}

// Classify resolves the rule for a record category. It never fails: a
// category without an entry gets the fallback.
func (rs *RuleSet) Classify(category int) Rule {
	if r, ok := rs.rules[category]; ok {
		return r
	}
	return rs.fallback
}

// Fallback returns the default rule.
func (rs *RuleSet) Fallback() Rule {
	return rs.fallback
}

// Len reports how many explicit category entries the table holds.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Labels returns every distinct label in the table, fallback included,
// in no particular order. Used for counter pre-sizing and the watch header.
func (rs *RuleSet) Labels() []string {
	seen := map[string]struct{}{rs.fallback.Label: {}}
	labels := []string{rs.fallback.Label}
	for _, r := range rs.rules {
		if _, dup := seen[r.Label]; dup {
			continue
		}
		seen[r.Label] = struct{}{}
		labels = append(labels, r.Label)
	}
	return labels
}
