package service

import "github.com/Alpha-Sight/propellantBE/internal/model"

// RulesProvider supplies the formatting/content rules every prompt carries.
type RulesProvider interface {
	Rules() model.Rules
}

type staticRules struct {
	rules model.Rules
}

// NewStaticRulesProvider serves a fixed rule set. A nil map falls back to DefaultRules.
func NewStaticRulesProvider(rules model.Rules) RulesProvider {
	if rules == nil {
		rules = DefaultRules()
	}
	return &staticRules{rules: rules}
}

func (p *staticRules) Rules() model.Rules {
	return p.rules.Merge(nil)
}

func DefaultRules() model.Rules {
	return model.Rules{
		"rule1": "Use active language.",
		"rule2": "Tailor skills to job description.",
		"rule3": "Highlight quantifiable achievements.",
	}
}
