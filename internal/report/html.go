package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlOnce sync.Once
	htmlErr  error
	htmlTmpl *template.Template
)

func loadHTML() error {
	htmlOnce.Do(func() {
		htmlTmpl, htmlErr = template.New("report.html.tmpl").
			Funcs(template.FuncMap{
				"mulpct": func(w float64) float64 { return w * 100 },
			}).
			ParseFS(templateFS, "templates/report.html.tmpl")
	})
	return htmlErr
}

// RenderHTML renders the document model into the fixed report layout.
func RenderHTML(doc *Document) ([]byte, error) {
	if err := loadHTML(); err != nil {
		return nil, fmt.Errorf("load report template: %w", err)
	}
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
