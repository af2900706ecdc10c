package store

import (
	"database/sql"
	"testing"

	"github.com/edupath/readiness/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testReport(name string, score float64) *model.AssessmentReport {
	scores := make(map[string]int)
	for _, cat := range model.Categories {
		scores[string(cat)] = int(score)
	}
	return &model.AssessmentReport{
		Name:            name,
		Email:           "test@example.com",
		CategoryScores:  scores,
		OverallScore:    score,
		ReadinessLevel:  string(model.TierVeryGood),
		Strengths:       []any{"strength"},
		Gaps:            []any{"gap"},
		Recommendations: []any{"recommendation"},
		SuggestedCountries: []model.CountryFit{
			{Country: "Germany", MatchPercent: 88, Reasoning: "r", Challenges: "c"},
		},
	}
}

func TestSaveAndGetAssessment(t *testing.T) {
	s := newTestStore(t)

	count, err := s.AssessmentCount()
	if err != nil {
		t.Fatalf("AssessmentCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 assessments, got %d", count)
	}

	id, err := s.SaveAssessment(testReport("Alice Chen", 80))
	if err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}

	got, err := s.GetAssessment(id)
	if err != nil {
		t.Fatalf("GetAssessment: %v", err)
	}
	if got.Name != "Alice Chen" {
		t.Errorf("name = %q, want 'Alice Chen'", got.Name)
	}
	if got.OverallScore != 80 {
		t.Errorf("overall score = %f, want 80", got.OverallScore)
	}
	if got.Report == nil {
		t.Fatal("expected stored report")
	}
	if got.Report.ReadinessLevel != string(model.TierVeryGood) {
		t.Errorf("readiness level = %q", got.Report.ReadinessLevel)
	}
	if len(got.Report.SuggestedCountries) != 1 || got.Report.SuggestedCountries[0].Country != "Germany" {
		t.Errorf("unexpected countries: %+v", got.Report.SuggestedCountries)
	}

	// Not found.
	if _, err := s.GetAssessment(9999); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestListAssessments(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"First", "Second", "Third"} {
		if _, err := s.SaveAssessment(testReport(name, 70)); err != nil {
			t.Fatalf("SaveAssessment(%s): %v", name, err)
		}
	}

	list, err := s.ListAssessments()
	if err != nil {
		t.Fatalf("ListAssessments: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 assessments, got %d", len(list))
	}
	// Newest first.
	if list[0].Name != "Third" || list[2].Name != "First" {
		t.Errorf("unexpected order: %v, %v, %v", list[0].Name, list[1].Name, list[2].Name)
	}

	count, err := s.AssessmentCount()
	if err != nil {
		t.Fatalf("AssessmentCount: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
}

func TestExportAll(t *testing.T) {
	s := newTestStore(t)

	// Empty store exports an empty slice.
	out, err := s.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty export, got %d", len(out))
	}

	if _, err := s.SaveAssessment(testReport("Alice", 80)); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}
	if _, err := s.SaveAssessment(testReport("Bob", 60)); err != nil {
		t.Fatalf("SaveAssessment: %v", err)
	}

	out, err = s.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 exported assessments, got %d", len(out))
	}
	for _, a := range out {
		if a.Report == nil {
			t.Errorf("assessment %d missing report", a.ID)
		}
	}
}
