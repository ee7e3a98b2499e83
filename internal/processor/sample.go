package processor

import (
	"math/rand"
	"sort"

	"finlens/statement-pipeline/internal/models"
)

// sampleSeed fixes the middle-slice selection so structural analysis sees the
// same sample for the same input on every run.
const sampleSeed = 42

// buildSample assembles a representative slice of the table for structural
// analysis: the head, a random middle selection, and the tail. Statements
// often change texture over their length (opening balances, footers), so
// sampling all three regions exposes more format variety than the head alone
// while keeping the prompt bounded. Tables small enough are returned whole.
func buildSample(table *models.RawTable, headSize, randomSize, tailSize int) *models.RawTable {
	n := table.Len()
	if n <= headSize+randomSize+tailSize {
		return table
	}

	sample := &models.RawTable{Columns: table.Columns}
	sample.Rows = append(sample.Rows, table.Rows[:headSize]...)

	middleStart := headSize
	middleEnd := n - tailSize
	middleSize := randomSize
	if span := middleEnd - middleStart; span < middleSize {
		middleSize = span
	}
	if middleSize > 0 {
		rng := rand.New(rand.NewSource(sampleSeed))
		picked := rng.Perm(middleEnd - middleStart)[:middleSize]
		sort.Ints(picked)
		for _, offset := range picked {
			sample.Rows = append(sample.Rows, table.Rows[middleStart+offset])
		}
	}

	sample.Rows = append(sample.Rows, table.Rows[middleEnd:]...)
	return sample
}
