package scraper

import (
	"igcounts/pkg/checkpoint"
	"igcounts/pkg/models"
)

// Selector picks which checkpoint rows a harvest pass visits
type Selector interface {
	Name() string
	Pick(rows []models.CountsRow) []int
}

// Resume visits everything after the last fully filled row. A trailing row
// with one side missing is visited again so a partial never strands the
// cursor past itself.
type Resume struct{}

func (Resume) Name() string { return "resume" }

func (Resume) Pick(rows []models.CountsRow) []int {
	start := checkpoint.ResumeIndex(rows)
	if start >= len(rows) {
		return nil
	}
	indices := make([]int, 0, len(rows)-start)
	for i := start; i < len(rows); i++ {
		indices = append(indices, i)
	}
	return indices
}

// Gaps visits only rows with a missing field, preserving filled cells.
type Gaps struct{}

func (Gaps) Name() string { return "gaps" }

func (Gaps) Pick(rows []models.CountsRow) []int {
	return checkpoint.GapIndices(rows)
}
