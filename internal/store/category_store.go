// Package store holds the persistence layers: the YAML-backed category store
// and the SQLite transaction store.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"
)

// DefaultCategoriesFile is the file name searched for when no explicit path
// is configured.
const DefaultCategoriesFile = "categories.yaml"

// CategoryStore reads and writes the category configuration from a YAML file
// and exposes the two projections the pipeline consumes: the hierarchy for
// LLM prompts and the ordered keyword table for the rule-based fallback.
type CategoryStore struct {
	path   string
	logger logging.Logger
}

// categoriesFile is the on-disk document shape.
type categoriesFile struct {
	Categories []models.CategoryConfig `yaml:"categories"`
}

// NewCategoryStore creates a store backed by the given file path. The file
// does not need to exist yet; Load falls back to the seeded defaults.
func NewCategoryStore(path string, logger logging.Logger) *CategoryStore {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &CategoryStore{path: path, logger: logger}
}

// FindConfigFile searches the conventional locations for a categories file
// and returns the first match, or empty when none exists.
func FindConfigFile(name string) string {
	if name == "" {
		name = DefaultCategoriesFile
	}
	candidates := []string{
		name,
		filepath.Join("config", name),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "statement-pipeline", name))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// Load reads the category configuration. A missing file yields the seeded
// default set rather than an error; a malformed file is an error.
func (s *CategoryStore) Load() ([]models.CategoryConfig, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.WithField("path", s.path).Debug("Categories file not found, using seeded defaults")
		return DefaultCategories(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading categories file %s: %w", s.path, err)
	}

	var doc categoriesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing categories file %s: %w", s.path, err)
	}
	if len(doc.Categories) == 0 {
		s.logger.WithField("path", s.path).Warn("Categories file is empty, using seeded defaults")
		return DefaultCategories(), nil
	}
	return doc.Categories, nil
}

// Save writes the category configuration, creating parent directories as
// needed.
func (s *CategoryStore) Save(categories []models.CategoryConfig) error {
	data, err := yaml.Marshal(categoriesFile{Categories: categories})
	if err != nil {
		return fmt.Errorf("serializing categories: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating categories directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing categories file %s: %w", s.path, err)
	}
	return nil
}

// Hierarchy projects the configuration into the two-level root to children
// map. Children whose parent is not itself a root are dropped with a warning
// so the projection is always internally consistent.
func (s *CategoryStore) Hierarchy() (models.CategoryHierarchy, error) {
	categories, err := s.Load()
	if err != nil {
		return nil, err
	}

	hierarchy := models.CategoryHierarchy{}
	for _, c := range categories {
		if c.Parent == "" {
			if !hierarchy.HasRoot(c.Name) {
				hierarchy[c.Name] = []string{}
			}
		}
	}
	for _, c := range categories {
		if c.Parent == "" {
			continue
		}
		if !hierarchy.HasRoot(c.Parent) {
			s.logger.WithFields(
				logging.Field{Key: "category", Value: c.Name},
				logging.Field{Key: "parent", Value: c.Parent},
			).Warn("Dropping category with unknown parent")
			continue
		}
		hierarchy[c.Parent] = append(hierarchy[c.Parent], c.Name)
	}
	return hierarchy, nil
}

// KeywordRules projects the configuration into the ordered rule table used
// by the fallback categorizer. Rules keep file order; entries without
// keywords contribute no rule. A child category's keywords map to its parent
// so the fallback only ever emits root categories.
func (s *CategoryStore) KeywordRules() ([]models.CategoryRule, error) {
	categories, err := s.Load()
	if err != nil {
		return nil, err
	}

	rules := make([]models.CategoryRule, 0, len(categories))
	for _, c := range categories {
		if len(c.Keywords) == 0 {
			continue
		}
		category := c.Name
		if c.Parent != "" {
			category = c.Parent
		}
		rules = append(rules, models.CategoryRule{Category: category, Keywords: c.Keywords})
	}
	return rules, nil
}

// DefaultCategories is the seeded category set used when no file exists.
func DefaultCategories() []models.CategoryConfig {
	return []models.CategoryConfig{
		{Name: "Food & Dining", Keywords: []string{"restaurant", "cafe", "food", "swiggy", "zomato", "dining"}},
		{Name: "Groceries", Parent: "Food & Dining", Keywords: []string{"grocery", "supermarket", "bigbasket"}},
		{Name: "Transportation", Keywords: []string{"uber", "ola", "taxi", "fuel", "petrol", "parking", "metro"}},
		{Name: "Shopping", Keywords: []string{"amazon", "flipkart", "myntra", "mall", "store"}},
		{Name: "Online Shopping", Parent: "Shopping"},
		{Name: "Bills & Utilities", Keywords: []string{"electricity", "water", "gas", "internet", "mobile", "recharge", "bill"}},
		{Name: "Healthcare", Keywords: []string{"hospital", "pharmacy", "doctor", "medical", "clinic"}},
		{Name: "Entertainment", Keywords: []string{"netflix", "spotify", "movie", "cinema", "game"}},
		{Name: "Transfer", Keywords: []string{"transfer", "neft", "imps", "rtgs", "upi"}},
		{Name: "ATM", Keywords: []string{"atm", "cash withdrawal"}},
		{Name: "Salary", Keywords: []string{"salary", "payroll"}},
		{Name: "Other"},
	}
}
