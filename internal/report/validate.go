package report

import (
	"encoding/json"
	"math"
	"strings"
	"unicode"

	"github.com/edupath/readiness/internal/model"
)

// requiredFields must all be present in a collaborator reply before it
// is accepted as an AssessmentReport. Order matters for error messages:
// validation short-circuits on the first missing field.
var requiredFields = []string{
	"Name",
	"CategoryScores",
	"OverallScore",
	"ReadinessLevel",
	"Strengths",
	"Gaps",
	"Recommendations",
}

// ExtractJSON locates the first top-level JSON object embedded in free
// text. It first tries the balanced span starting at the first '{';
// if that does not parse it falls back to first-'{'..last-'}'.
func ExtractJSON(text string) (map[string]any, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, model.Errf(model.KindNoJSONFound, "no JSON object in collaborator reply")
	}

	if span, ok := balancedSpan(text[start:]); ok {
		var obj map[string]any
		if err := json.Unmarshal([]byte(span), &obj); err == nil {
			return obj, nil
		}
	}

	if end := strings.LastIndexByte(text, '}'); end > start {
		var obj map[string]any
		if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err == nil {
			return obj, nil
		}
	}

	return nil, model.Errf(model.KindNoJSONFound, "no parseable JSON object in collaborator reply")
}

// balancedSpan returns the prefix of s up to the brace matching s[0].
func balancedSpan(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// ValidateReply checks a parsed collaborator object against the
// required-field contract and, on success, converts it into a typed
// report. Missing any required field fails immediately; no partial
// report is returned.
func ValidateReply(obj map[string]any) (*model.AssessmentReport, error) {
	for _, field := range requiredFields {
		if _, ok := lookup(obj, field); !ok {
			return nil, model.FieldErr(model.KindMissingField, field, "required field missing in collaborator reply")
		}
	}
	return FromObject(obj), nil
}

// FromObject maps a raw JSON object onto an AssessmentReport, accepting
// both the canonical capitalized key spelling and the lowerCamelCase
// fallback. Missing fields are left at zero values (OverallScore at -1
// so the assembler can tell absent from an honest zero); completeness
// is enforced by ValidateReply or by the assembler, not here.
func FromObject(obj map[string]any) *model.AssessmentReport {
	rep := &model.AssessmentReport{
		Name:           asString(field(obj, "Name")),
		Email:          asString(field(obj, "Email")),
		Phone:          asString(field(obj, "Phone")),
		ReadinessLevel: asString(field(obj, "ReadinessLevel")),
		OverallScore:   -1,
	}

	if v, ok := lookup(obj, "OverallScore"); ok {
		rep.OverallScore = asFloat(v)
	}
	if v, ok := lookup(obj, "CategoryScores"); ok {
		if m, ok := v.(map[string]any); ok {
			scores := make(map[string]int, len(m))
			for name, raw := range m {
				scores[name] = int(math.Floor(asFloat(raw) + 0.5))
			}
			rep.CategoryScores = scores
		}
	}
	if v, ok := lookup(obj, "Strengths"); ok {
		rep.Strengths = v
	}
	if v, ok := lookup(obj, "Gaps"); ok {
		rep.Gaps = v
	}
	if v, ok := lookup(obj, "Recommendations"); ok {
		rep.Recommendations = v
	}
	if v, ok := lookup(obj, "SuggestedCountries"); ok {
		if list, ok := v.([]any); ok {
			for _, raw := range list {
				entry, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				fit := model.CountryFit{
					Country:    asString(field(entry, "Country")),
					Reasoning:  asString(field(entry, "Reasoning")),
					Challenges: asString(field(entry, "Challenges")),
				}
				if mp, ok := lookup(entry, "MatchPercent"); ok {
					fit.MatchPercent = int(math.Floor(asFloat(mp) + 0.5))
				}
				rep.SuggestedCountries = append(rep.SuggestedCountries, fit)
			}
		}
	}
	return rep
}

// lookup resolves a canonical key or its lowerCamelCase fallback.
func lookup(obj map[string]any, key string) (any, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	if v, ok := obj[lowerCamel(key)]; ok {
		return v, true
	}
	return nil, false
}

func field(obj map[string]any, key string) any {
	v, _ := lookup(obj, key)
	return v
}

func lowerCamel(key string) string {
	if key == "" {
		return key
	}
	runes := []rune(key)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}
