package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"
)

func TestCategoryStoreMissingFileUsesDefaults(t *testing.T) {
	s := NewCategoryStore(filepath.Join(t.TempDir(), "nope.yaml"), logging.NewMockLogger())

	categories, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultCategories(), categories)

	hierarchy, err := s.Hierarchy()
	require.NoError(t, err)
	assert.True(t, hierarchy.HasRoot("Food & Dining"))
	assert.True(t, hierarchy.HasRoot(models.CategoryOther))
	assert.True(t, hierarchy.IsChildOf("Food & Dining", "Groceries"))
}

func TestCategoryStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "categories.yaml")
	s := NewCategoryStore(path, logging.NewMockLogger())

	in := []models.CategoryConfig{
		{Name: "Travel", Keywords: []string{"flight", "hotel"}},
		{Name: "Flights", Parent: "Travel"},
	}
	require.NoError(t, s.Save(in))

	out, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCategoryStoreMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: {not: [a, list"), 0o644))

	s := NewCategoryStore(path, logging.NewMockLogger())
	_, err := s.Load()
	assert.Error(t, err)
}

func TestCategoryStoreHierarchyDropsOrphans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	s := NewCategoryStore(path, logging.NewMockLogger())
	require.NoError(t, s.Save([]models.CategoryConfig{
		{Name: "Travel"},
		{Name: "Flights", Parent: "Travel"},
		{Name: "Orphan", Parent: "Nowhere"},
	}))

	logger := logging.NewMockLogger()
	s = NewCategoryStore(path, logger)
	hierarchy, err := s.Hierarchy()
	require.NoError(t, err)

	assert.Equal(t, []string{"Travel"}, hierarchy.Roots())
	assert.True(t, hierarchy.IsChildOf("Travel", "Flights"))
	assert.NotEmpty(t, logger.Messages("WARN"))
}

func TestCategoryStoreKeywordRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	s := NewCategoryStore(path, logging.NewMockLogger())
	require.NoError(t, s.Save([]models.CategoryConfig{
		{Name: "Travel", Keywords: []string{"flight"}},
		{Name: "Groceries", Parent: "Food & Dining", Keywords: []string{"supermarket"}},
		{Name: "Silent"},
	}))

	rules, err := s.KeywordRules()
	require.NoError(t, err)
	require.Len(t, rules, 2)

	// File order is preserved and child keywords map to the parent category.
	assert.Equal(t, "Travel", rules[0].Category)
	assert.Equal(t, "Food & Dining", rules[1].Category)
	assert.Equal(t, []string{"supermarket"}, rules[1].Keywords)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	assert.Equal(t, "", FindConfigFile("categories.yaml"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "categories.yaml"), []byte("categories: []"), 0o644))
	assert.Equal(t, "categories.yaml", FindConfigFile("categories.yaml"))
}
