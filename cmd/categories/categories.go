// Package categories handles category configuration commands
package categories

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"finlens/statement-pipeline/cmd/root"
	"finlens/statement-pipeline/internal/store"
)

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage the category hierarchy",
	Long:  `Inspect and seed the category hierarchy used for transaction categorization.`,
	RunE:  listFunc,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the default category set to the categories file",
	RunE:  seedFunc,
}

func init() {
	Cmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVarP(&root.CategoriesFile, "file", "f", "", "Categories file to write (defaults to the configured path)")
}

func listFunc(cmd *cobra.Command, args []string) error {
	hierarchy, err := root.App.Categories.Hierarchy()
	if err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}

	for _, name := range hierarchy.Roots() {
		fmt.Fprintln(os.Stdout, name)
		for _, sub := range hierarchy[name] {
			fmt.Fprintf(os.Stdout, "  %s\n", sub)
		}
	}
	return nil
}

func seedFunc(cmd *cobra.Command, args []string) error {
	path := root.CategoriesFile
	if path == "" {
		path = root.App.Config.Storage.CategoriesFile
	}

	s := store.NewCategoryStore(path, root.App.Logger)
	if err := s.Save(store.DefaultCategories()); err != nil {
		return err
	}
	root.Log.WithField("path", path).Info("Wrote default categories")
	return nil
}
