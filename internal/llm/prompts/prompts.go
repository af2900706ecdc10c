// Package prompts builds the collaborator-facing prompt. The canonical
// weight table, the tier ladder, and the output field names in the
// template are a wire contract: downstream validation depends on the
// exact field spellings.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/edupath/readiness/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

// SystemPrompt frames every assessment request.
const SystemPrompt = "You are an experienced study-abroad advisor. You assess student readiness strictly from the data provided and answer only in JSON."

var tagRegex = regexp.MustCompile(`(?i)</?\s*[a-z][a-z0-9-]*\b[^>]*>`)

const maxNameRunes = 200

var (
	loadOnce   sync.Once
	loadErr    error
	assessTmpl *template.Template
)

// ScoreLine is one category row in the prompt's weight table.
type ScoreLine struct {
	Category string
	Weight   float64
	Percent  int
}

// AssessData holds template data for the assessment prompt.
type AssessData struct {
	Name   string
	Scores []ScoreLine
	Index  float64
	Tier   model.Tier
}

func load() error {
	loadOnce.Do(func() {
		content, err := templateFS.ReadFile("templates/assess.txt")
		if err != nil {
			loadErr = fmt.Errorf("read prompt template: %w", err)
			return
		}
		assessTmpl, loadErr = template.New("assess").Parse(string(content))
	})
	return loadErr
}

// BuildAssessPrompt renders the user prompt for one assessment. Scores
// must already be validated against the canonical category set.
func BuildAssessPrompt(name string, scores map[string]int, index float64, tier model.Tier) (string, error) {
	if err := load(); err != nil {
		return "", err
	}

	lines := make([]ScoreLine, 0, len(model.Categories))
	for _, cat := range model.Categories {
		lines = append(lines, ScoreLine{
			Category: string(cat),
			Weight:   model.Weights[cat],
			Percent:  scores[string(cat)],
		})
	}

	data := AssessData{
		Name:   sanitizeName(name),
		Scores: lines,
		Index:  index,
		Tier:   tier,
	}

	var buf bytes.Buffer
	if err := assessTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeName(name string) string {
	name = tagRegex.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return "Student"
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		runes := []rune(name)
		name = string(runes[:maxNameRunes])
	}
	return name
}
