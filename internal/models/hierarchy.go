package models

import (
	"encoding/json"
	"sort"
)

// CategoryHierarchy is a read-only, two-level projection of the category
// store: each root category maps to its (possibly empty) list of leaf
// sub-categories. The pipeline fetches one snapshot per run and never mutates
// it; any consistency guarantee across concurrent runs belongs to the store.
type CategoryHierarchy map[string][]string

// Roots returns the root category names in sorted order.
func (h CategoryHierarchy) Roots() []string {
	roots := make([]string, 0, len(h))
	for name := range h {
		roots = append(roots, name)
	}
	sort.Strings(roots)
	return roots
}

// HasRoot reports whether name is a root category.
func (h CategoryHierarchy) HasRoot(name string) bool {
	_, ok := h[name]
	return ok
}

// IsChildOf reports whether sub is a registered child of root.
func (h CategoryHierarchy) IsChildOf(root, sub string) bool {
	for _, c := range h[root] {
		if c == sub {
			return true
		}
	}
	return false
}

// JSONString renders the hierarchy as indented JSON for prompt embedding.
// Keys are emitted in sorted order, so the output is stable across runs.
func (h CategoryHierarchy) JSONString() (string, error) {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CategoryConfig is one category record as stored on disk: a name, an
// optional parent (empty means root) and optional fallback keywords.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Parent   string   `yaml:"parent,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// CategoryRule is one entry of the ordered keyword table used by the
// rule-based fallback categorizer.
type CategoryRule struct {
	Category string
	Keywords []string
}
