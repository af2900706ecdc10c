package store

import (
	"fmt"

	"github.com/edupath/readiness/internal/model"
)

// ExportAll builds export-ready records for every archived assessment.
func (s *Store) ExportAll() ([]model.ArchivedAssessment, error) {
	summaries, err := s.ListAssessments()
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}

	var out []model.ArchivedAssessment
	for _, sum := range summaries {
		a, err := s.GetAssessment(sum.ID)
		if err != nil {
			return nil, fmt.Errorf("get assessment %d: %w", sum.ID, err)
		}
		out = append(out, *a)
	}
	return out, nil
}
