package web

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// prose renders site copy written in standard Markdown. Raw HTML is not
// passed through.
var prose = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
)

func proseHTML(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := prose.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // goldmark escapes raw HTML without WithUnsafe
}
