package report

import (
	"strings"
	"unicode"
)

// AttachmentFilename derives the PDF attachment name from the subject
// name: runs of non-alphanumeric characters collapse to a single
// underscore.
func AttachmentFilename(name string) string {
	var b strings.Builder
	lastSep := true
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSep = false
			continue
		}
		if !lastSep {
			b.WriteByte('_')
			lastSep = true
		}
	}
	base := strings.Trim(b.String(), "_")
	if base == "" {
		base = "assessment"
	}
	return base + "_readiness_report.pdf"
}
