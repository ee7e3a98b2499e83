// Package categorizer assigns categories to transaction descriptions using
// an ordered keyword rule table. It is fully deterministic: the same rule
// table and description always produce the same category.
package categorizer

import (
	"strings"

	"finlens/statement-pipeline/internal/models"
)

// RuleCategorizer matches descriptions against keyword rules in order.
type RuleCategorizer struct {
	rules []models.CategoryRule
}

// NewRuleCategorizer builds a categorizer over the given rule table. Rule
// order is significant: the first rule with a matching keyword wins.
func NewRuleCategorizer(rules []models.CategoryRule) *RuleCategorizer {
	return &RuleCategorizer{rules: rules}
}

// Categorize returns the category of the first rule whose keyword occurs in
// the description, compared case-insensitively. Descriptions matching no
// rule fall back to the default category.
func (c *RuleCategorizer) Categorize(description string) string {
	lowered := strings.ToLower(description)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				return rule.Category
			}
		}
	}
	return models.CategoryOther
}
