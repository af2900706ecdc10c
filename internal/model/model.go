package model

import "time"

// Category is one of the six fixed assessment dimensions.
type Category string

const (
	CategoryFinancial Category = "Financial Planning"
	CategoryAcademic  Category = "Academic Readiness"
	CategoryCareer    Category = "Career & Goal Alignment"
	CategoryCultural  Category = "Personal & Cultural Readiness"
	CategoryPractical Category = "Practical Readiness"
	CategorySupport   Category = "Support System"
)

// Categories lists the canonical categories in display order.
var Categories = []Category{
	CategoryFinancial,
	CategoryAcademic,
	CategoryCareer,
	CategoryCultural,
	CategoryPractical,
	CategorySupport,
}

// Weights maps each canonical category to its fixed contribution weight.
// The weights sum to 1.0.
var Weights = map[Category]float64{
	CategoryFinancial: 0.25,
	CategoryAcademic:  0.20,
	CategoryCareer:    0.20,
	CategoryCultural:  0.15,
	CategoryPractical: 0.10,
	CategorySupport:   0.10,
}

// Tier is the discrete readiness classification derived from the index.
type Tier string

const (
	TierExcellent        Tier = "Excellent"
	TierVeryGood         Tier = "Very Good"
	TierGood             Tier = "Good"
	TierSatisfactory     Tier = "Satisfactory"
	TierNeedsImprovement Tier = "Needs Improvement"
	TierLow              Tier = "Low"
)

// CategoryResult is one raw per-category quiz result.
type CategoryResult struct {
	Name    string `json:"name"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
}

// AssessRequest is the inbound body for the scoring path.
type AssessRequest struct {
	Name    string           `json:"name"`
	Email   string           `json:"email,omitempty"`
	Phone   string           `json:"phone,omitempty"`
	Results []CategoryResult `json:"results"`
}

// CountryFit is one ranked country suggestion.
type CountryFit struct {
	Country      string `json:"Country"`
	MatchPercent int    `json:"MatchPercent"`
	Reasoning    string `json:"Reasoning"`
	Challenges   string `json:"Challenges"`
}

// AssessmentReport is the full assessment record. The narrative fields
// hold either a single string or an ordered list of strings, exactly as
// the collaborator returned them; the assembler normalizes them into
// bullet entries at render time.
type AssessmentReport struct {
	Name               string         `json:"Name"`
	Email              string         `json:"Email,omitempty"`
	Phone              string         `json:"Phone,omitempty"`
	CategoryScores     map[string]int `json:"CategoryScores"`
	OverallScore       float64        `json:"OverallScore"`
	ReadinessLevel     string         `json:"ReadinessLevel"`
	Strengths          any            `json:"Strengths"`
	Gaps               any            `json:"Gaps"`
	Recommendations    any            `json:"Recommendations"`
	SuggestedCountries []CountryFit   `json:"SuggestedCountries,omitempty"`
}

// AssessmentSummary is one row in the archive listing.
type AssessmentSummary struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	OverallScore   float64   `json:"overall_score"`
	ReadinessLevel string    `json:"readiness_level"`
	CreatedAt      time.Time `json:"created_at"`
}

// ArchivedAssessment is a fully stored assessment with its report.
type ArchivedAssessment struct {
	AssessmentSummary
	Email  string            `json:"email,omitempty"`
	Phone  string            `json:"phone,omitempty"`
	Report *AssessmentReport `json:"report"`
}

// AssessmentExport is the top-level JSON structure for archive export.
type AssessmentExport struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Count       int                  `json:"count"`
	Assessments []ArchivedAssessment `json:"assessments"`
}

// ServerConfig holds runtime server parameters set via CLI flags.
type ServerConfig struct {
	Addr          string
	Lang          string
	AdminPassword string // empty disables the archive endpoints
}
