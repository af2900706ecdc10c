// Package score implements the deterministic readiness scoring core:
// per-category normalization, the weighted index, and tier
// classification. Everything here is a pure function of its inputs.
package score

import (
	"math"

	"github.com/edupath/readiness/internal/model"
)

// Normalize converts a raw category result into a 0-100 percentage,
// rounded half-up to the nearest integer.
func Normalize(r model.CategoryResult) (int, error) {
	if r.Total <= 0 {
		return 0, model.FieldErr(model.KindInvalidInput, r.Name, "total must be positive")
	}
	if r.Correct < 0 {
		return 0, model.FieldErr(model.KindInvalidInput, r.Name, "correct must not be negative")
	}
	if r.Correct > r.Total {
		return 0, model.FieldErr(model.KindInvalidInput, r.Name, "correct exceeds total")
	}
	pct := 100 * float64(r.Correct) / float64(r.Total)
	return int(math.Floor(pct + 0.5)), nil
}

// NormalizeAll normalizes every raw result, keyed by category name.
func NormalizeAll(results []model.CategoryResult) (map[string]int, error) {
	scores := make(map[string]int, len(results))
	for _, r := range results {
		pct, err := Normalize(r)
		if err != nil {
			return nil, err
		}
		scores[r.Name] = pct
	}
	return scores, nil
}

// ComputeIndex combines normalized category percentages into the single
// weighted readiness index. The input must cover exactly the six
// canonical categories: a missing one fails with MissingCategory and an
// extra one with UnknownCategory, rather than silently skewing the
// weighting.
func ComputeIndex(scores map[string]int) (float64, error) {
	for name := range scores {
		if _, ok := model.Weights[model.Category(name)]; !ok {
			return 0, model.FieldErr(model.KindUnknownCategory, name, "category has no canonical weight")
		}
	}
	var index float64
	for _, cat := range model.Categories {
		pct, ok := scores[string(cat)]
		if !ok {
			return 0, model.FieldErr(model.KindMissingCategory, string(cat), "category result missing")
		}
		index += float64(pct) * model.Weights[cat]
	}
	return index, nil
}

// ClassifyTier maps a readiness index to its discrete tier. Boundaries
// are inclusive on the lower bound and exclusive on the upper, except
// the top tier which is closed on both ends.
func ClassifyTier(index float64) (model.Tier, error) {
	if index < 0 || index > 100 {
		return "", model.Errf(model.KindOutOfRange, "index %.2f outside [0,100]", index)
	}
	switch {
	case index >= 90:
		return model.TierExcellent, nil
	case index >= 80:
		return model.TierVeryGood, nil
	case index >= 70:
		return model.TierGood, nil
	case index >= 60:
		return model.TierSatisfactory, nil
	case index >= 50:
		return model.TierNeedsImprovement, nil
	default:
		return model.TierLow, nil
	}
}

// Evaluate runs the full local pipeline and returns a report skeleton
// (identity, scores, index, tier) with no narrative content.
func Evaluate(req model.AssessRequest) (*model.AssessmentReport, error) {
	scores, err := NormalizeAll(req.Results)
	if err != nil {
		return nil, err
	}
	index, err := ComputeIndex(scores)
	if err != nil {
		return nil, err
	}
	tier, err := ClassifyTier(index)
	if err != nil {
		return nil, err
	}
	return &model.AssessmentReport{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		CategoryScores: scores,
		OverallScore:   math.Floor(index + 0.5),
		ReadinessLevel: string(tier),
	}, nil
}
