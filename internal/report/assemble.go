// Package report turns a validated assessment into a fixed-layout
// document: it validates collaborator replies, normalizes narrative
// fields into bullet entries, fills in country-fit ranking fallbacks,
// and renders the final HTML.
package report

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/edupath/readiness/internal/i18n"
	"github.com/edupath/readiness/internal/model"
)

var (
	sentenceRe = regexp.MustCompile(`[.!?]+`)
	clauseRe   = regexp.MustCompile(`[,;]`)
	markerRe   = regexp.MustCompile(`^\s*(?:[-–•*]+|\d+[.)])\s*`)
)

// CategoryBlock is one category score row in the document.
type CategoryBlock struct {
	Name    string
	Weight  float64
	Percent int
}

// CountryCard is one ranked country suggestion in the document.
type CountryCard struct {
	Rank         int
	Country      string
	MatchPercent int
	Reasoning    string
	Challenges   string
}

// Headings carries the localized section headings.
type Headings struct {
	Overall         string
	Categories      string
	Strengths       string
	Gaps            string
	Recommendations string
	Countries       string
}

// Document is the fixed-structure report model handed to the renderer.
type Document struct {
	Title           string
	Name            string
	Email           string
	Phone           string
	GeneratedAt     time.Time
	OverallScore    int
	TierLabel       string
	Categories      []CategoryBlock
	Strengths       []string
	Gaps            []string
	Recommendations []string
	Countries       []CountryCard
	Headings        Headings
}

var tierMsgIDs = map[string]string{
	string(model.TierExcellent):        "TierExcellent",
	string(model.TierVeryGood):         "TierVeryGood",
	string(model.TierGood):             "TierGood",
	string(model.TierSatisfactory):     "TierSatisfactory",
	string(model.TierNeedsImprovement): "TierNeedsImprovement",
	string(model.TierLow):              "TierLow",
}

// Assemble builds the document model from a report. This is the last
// line of defense before rendering: an incomplete report fails with
// MissingRequiredField rather than producing a half-populated document.
func Assemble(ctx context.Context, rep *model.AssessmentReport) (*Document, error) {
	if rep.Name == "" {
		return nil, model.FieldErr(model.KindMissingRequiredField, "Name", "subject name missing at render time")
	}
	if len(rep.CategoryScores) == 0 {
		return nil, model.FieldErr(model.KindMissingRequiredField, "CategoryScores", "score mapping missing at render time")
	}
	if rep.OverallScore < 0 {
		return nil, model.FieldErr(model.KindMissingRequiredField, "OverallScore", "overall index missing at render time")
	}
	if rep.ReadinessLevel == "" {
		return nil, model.FieldErr(model.KindMissingRequiredField, "ReadinessLevel", "tier missing at render time")
	}
	narratives := []struct {
		name  string
		value any
	}{
		{"Strengths", rep.Strengths},
		{"Gaps", rep.Gaps},
		{"Recommendations", rep.Recommendations},
	}
	for _, n := range narratives {
		if n.value == nil {
			return nil, model.FieldErr(model.KindMissingRequiredField, n.name, "narrative field missing at render time")
		}
	}

	doc := &Document{
		Title:        i18n.T(ctx, "ReportTitle"),
		Name:         rep.Name,
		Email:        rep.Email,
		Phone:        rep.Phone,
		GeneratedAt:  time.Now(),
		OverallScore: int(math.Floor(rep.OverallScore + 0.5)),
		TierLabel:    tierLabel(ctx, rep.ReadinessLevel),
		Headings: Headings{
			Overall:         i18n.T(ctx, "OverallHeading"),
			Categories:      i18n.T(ctx, "CategoriesHeading"),
			Strengths:       i18n.T(ctx, "StrengthsHeading"),
			Gaps:            i18n.T(ctx, "GapsHeading"),
			Recommendations: i18n.T(ctx, "RecommendationsHeading"),
			Countries:       i18n.T(ctx, "CountriesHeading"),
		},
	}

	for _, cat := range model.Categories {
		doc.Categories = append(doc.Categories, CategoryBlock{
			Name:    string(cat),
			Weight:  model.Weights[cat],
			Percent: rep.CategoryScores[string(cat)],
		})
	}

	placeholder := i18n.T(ctx, "NoInformation")
	doc.Strengths = bulletsOrPlaceholder(rep.Strengths, placeholder)
	doc.Gaps = bulletsOrPlaceholder(rep.Gaps, placeholder)
	doc.Recommendations = bulletsOrPlaceholder(rep.Recommendations, placeholder)

	for i, fit := range rep.SuggestedCountries {
		card := CountryCard{
			Rank:         i + 1,
			Country:      fit.Country,
			MatchPercent: fit.MatchPercent,
			Reasoning:    fit.Reasoning,
			Challenges:   fit.Challenges,
		}
		if card.MatchPercent == 0 {
			// Deterministic, visually decreasing fallback when the
			// collaborator omitted a match value. Unclamped.
			card.MatchPercent = 100 - 15*i
		}
		doc.Countries = append(doc.Countries, card)
	}

	return doc, nil
}

func bulletsOrPlaceholder(v any, placeholder string) []string {
	entries := NormalizeBullets(v)
	if len(entries) == 0 {
		return []string{placeholder}
	}
	return entries
}

// NormalizeBullets turns a narrative field into discrete bullet
// entries. A sequence is taken one element per entry; a single string
// is split on sentence-ending punctuation, falling back to commas and
// semicolons when that yields at most one fragment. Entries have
// leading enumeration markers and surrounding whitespace stripped.
// Normalizing an already-split sequence is idempotent: individual
// entries are never re-split.
func NormalizeBullets(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return splitNarrative(val)
	case []string:
		return cleanEntries(val)
	case []any:
		entries := make([]string, 0, len(val))
		for _, e := range val {
			if s, ok := e.(string); ok {
				entries = append(entries, s)
			}
		}
		return cleanEntries(entries)
	default:
		return nil
	}
}

func splitNarrative(s string) []string {
	entries := cleanEntries(sentenceRe.Split(s, -1))
	if len(entries) > 1 {
		return entries
	}
	if clauses := cleanEntries(clauseRe.Split(s, -1)); len(clauses) > 1 {
		return clauses
	}
	return entries
}

func cleanEntries(raw []string) []string {
	var entries []string
	for _, e := range raw {
		e = markerRe.ReplaceAllString(e, "")
		e = strings.TrimSpace(e)
		if e != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func tierLabel(ctx context.Context, level string) string {
	if id, ok := tierMsgIDs[level]; ok {
		return i18n.T(ctx, id)
	}
	return level
}
