package report

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/edupath/readiness/internal/i18n"
	"github.com/edupath/readiness/internal/model"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	return i18n.WithLocalizer(context.Background(), i18n.NewLocalizer("en"))
}

func completeReport() *model.AssessmentReport {
	scores := make(map[string]int)
	for _, cat := range model.Categories {
		scores[string(cat)] = 80
	}
	return &model.AssessmentReport{
		Name:            "Alice Chen",
		Email:           "alice@example.com",
		CategoryScores:  scores,
		OverallScore:    80,
		ReadinessLevel:  string(model.TierVeryGood),
		Strengths:       []string{"Clear goals", "Strong support"},
		Gaps:            "Needs a bigger budget buffer.",
		Recommendations: []string{"Open a savings account"},
		SuggestedCountries: []model.CountryFit{
			{Country: "Germany", Reasoning: "Low tuition"},
			{Country: "Netherlands", Reasoning: "English programs"},
			{Country: "Canada", Reasoning: "Immigration pathways"},
		},
	}
}

func TestNormalizeBullets(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{"nil", nil, nil},
		{"list passes through", []string{"First entry", "Second entry"}, []string{"First entry", "Second entry"}},
		{"any list", []any{"One", "Two"}, []string{"One", "Two"}},
		{"sentences split", "Budget is solid. Grades are strong. Language needs work.",
			[]string{"Budget is solid", "Grades are strong", "Language needs work"}},
		{"comma fallback", "budgeting, planning, documentation",
			[]string{"budgeting", "planning", "documentation"}},
		{"single fragment stays whole", "A well-rounded profile",
			[]string{"A well-rounded profile"}},
		{"strips enumeration markers", []string{"1. Save more", "- Learn German", "• Apply early"},
			[]string{"Save more", "Learn German", "Apply early"}},
		{"drops empty entries", []string{"  ", "Real entry", ""}, []string{"Real entry"}},
		{"empty string", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeBullets(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeBullets(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeBulletsIdempotent(t *testing.T) {
	// Entries that contain commas must not be re-split once they are
	// already a sequence.
	entries := []string{"Strong, well-documented finances", "Good grades"}
	once := NormalizeBullets(entries)
	twice := NormalizeBullets(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalization not idempotent: %v vs %v", once, twice)
	}
	if !reflect.DeepEqual(once, entries) {
		t.Errorf("already-split entries changed: %v", once)
	}
}

func TestAssembleComplete(t *testing.T) {
	ctx := testCtx(t)

	doc, err := Assemble(ctx, completeReport())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if doc.OverallScore != 80 {
		t.Errorf("OverallScore = %d, want 80", doc.OverallScore)
	}
	if doc.TierLabel != "Very Good" {
		t.Errorf("TierLabel = %q, want 'Very Good'", doc.TierLabel)
	}
	if len(doc.Categories) != len(model.Categories) {
		t.Fatalf("expected %d category blocks, got %d", len(model.Categories), len(doc.Categories))
	}
	if doc.Categories[0].Name != string(model.CategoryFinancial) || doc.Categories[0].Weight != 0.25 {
		t.Errorf("first category block = %+v", doc.Categories[0])
	}
	if len(doc.Strengths) != 2 {
		t.Errorf("expected 2 strengths, got %v", doc.Strengths)
	}
	// Single-string narrative with one sentence stays one bullet.
	if len(doc.Gaps) != 1 || doc.Gaps[0] != "Needs a bigger budget buffer" {
		t.Errorf("Gaps = %v", doc.Gaps)
	}
}

func TestAssembleCountryFallback(t *testing.T) {
	ctx := testCtx(t)

	doc, err := Assemble(ctx, completeReport())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(doc.Countries) != 3 {
		t.Fatalf("expected 3 country cards, got %d", len(doc.Countries))
	}
	want := []int{100, 85, 70}
	for i, card := range doc.Countries {
		if card.Rank != i+1 {
			t.Errorf("card %d rank = %d", i, card.Rank)
		}
		if card.MatchPercent != want[i] {
			t.Errorf("card %d match = %d, want %d", i, card.MatchPercent, want[i])
		}
	}
	for i := 1; i < len(doc.Countries); i++ {
		if doc.Countries[i].MatchPercent >= doc.Countries[i-1].MatchPercent {
			t.Error("fallback match percentages must be strictly decreasing")
		}
	}
}

func TestAssembleExplicitMatchKept(t *testing.T) {
	ctx := testCtx(t)

	rep := completeReport()
	rep.SuggestedCountries[1].MatchPercent = 42
	doc, err := Assemble(ctx, rep)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if doc.Countries[1].MatchPercent != 42 {
		t.Errorf("explicit match percent overwritten: %d", doc.Countries[1].MatchPercent)
	}
}

func TestAssembleEmptyNarrativePlaceholder(t *testing.T) {
	ctx := testCtx(t)

	rep := completeReport()
	rep.Gaps = ""
	doc, err := Assemble(ctx, rep)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(doc.Gaps) != 1 || doc.Gaps[0] != "No information available." {
		t.Errorf("empty narrative should yield the placeholder, got %v", doc.Gaps)
	}
}

func TestAssembleMissingRequiredField(t *testing.T) {
	ctx := testCtx(t)

	tests := []struct {
		name   string
		mutate func(*model.AssessmentReport)
		field  string
	}{
		{"no name", func(r *model.AssessmentReport) { r.Name = "" }, "Name"},
		{"no scores", func(r *model.AssessmentReport) { r.CategoryScores = nil }, "CategoryScores"},
		{"no index", func(r *model.AssessmentReport) { r.OverallScore = -1 }, "OverallScore"},
		{"no tier", func(r *model.AssessmentReport) { r.ReadinessLevel = "" }, "ReadinessLevel"},
		{"no strengths", func(r *model.AssessmentReport) { r.Strengths = nil }, "Strengths"},
		{"no gaps", func(r *model.AssessmentReport) { r.Gaps = nil }, "Gaps"},
		{"no recommendations", func(r *model.AssessmentReport) { r.Recommendations = nil }, "Recommendations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := completeReport()
			tt.mutate(rep)
			_, err := Assemble(ctx, rep)
			if err == nil {
				t.Fatal("expected error")
			}
			var me *model.Error
			if !errors.As(err, &me) {
				t.Fatalf("expected *model.Error, got %v", err)
			}
			if me.Kind != model.KindMissingRequiredField {
				t.Errorf("kind = %q, want %q", me.Kind, model.KindMissingRequiredField)
			}
			if me.Field != tt.field {
				t.Errorf("field = %q, want %q", me.Field, tt.field)
			}
		})
	}
}

func TestRenderHTML(t *testing.T) {
	ctx := testCtx(t)

	doc, err := Assemble(ctx, completeReport())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	html, err := RenderHTML(doc)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, want := range []string{"Alice Chen", "80/100", "Very Good", "Financial Planning", "Germany"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
}

func TestAttachmentFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Alice Chen", "Alice_Chen_readiness_report.pdf"},
		{"John O'Malley-Smith", "John_O_Malley_Smith_readiness_report.pdf"},
		{"  --  ", "assessment_readiness_report.pdf"},
		{"", "assessment_readiness_report.pdf"},
		{"Ana!!!Maria", "Ana_Maria_readiness_report.pdf"},
	}
	for _, tt := range tests {
		if got := AttachmentFilename(tt.name); got != tt.want {
			t.Errorf("AttachmentFilename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
