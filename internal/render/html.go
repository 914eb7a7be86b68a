// Package render maps converted post blocks to HTML.
package render

import (
	"bufio"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/octavio/octavio/internal/markup"
)

// HTML writes blocks to w as HTML. Text is escaped; styling comes only from
// the block and span kinds.
func HTML(w io.Writer, blocks []markup.Block) error {
	bw := bufio.NewWriter(w)
	for _, b := range blocks {
		if err := writeBlock(bw, b); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// String renders blocks into a template-safe HTML value.
func String(blocks []markup.Block) (template.HTML, error) {
	var sb strings.Builder
	if err := HTML(&sb, blocks); err != nil {
		return "", err
	}
	return template.HTML(sb.String()), nil //nolint:gosec // every text node is escaped in writeBlock
}

func writeBlock(w *bufio.Writer, b markup.Block) error {
	switch b := b.(type) {
	case markup.Heading:
		tag := "h3"
		if b.Level == 2 {
			tag = "h2"
		}
		fmt.Fprintf(w, "<%s>%s</%s>\n", tag, template.HTMLEscapeString(b.Text), tag)

	case markup.Paragraph:
		w.WriteString("<p>")
		writeInline(w, b.Text)
		w.WriteString("</p>\n")

	case markup.List:
		w.WriteString("<ul>\n")
		for _, item := range b.Items {
			w.WriteString("<li>")
			writeInline(w, item)
			w.WriteString("</li>\n")
		}
		w.WriteString("</ul>\n")

	case markup.CodeBlock:
		fmt.Fprintf(w, "<pre><code class=\"language-%s\">%s</code></pre>\n",
			template.HTMLEscapeString(b.Language), template.HTMLEscapeString(b.Code()))

	default:
		return fmt.Errorf("render: unknown block type %T", b)
	}
	return nil
}

func writeInline(w *bufio.Writer, in markup.Inline) {
	for _, sp := range in {
		text := template.HTMLEscapeString(sp.Text)
		switch sp.Kind {
		case markup.Bold:
			w.WriteString("<strong>" + text + "</strong>")
		case markup.Italic:
			w.WriteString("<em>" + text + "</em>")
		case markup.Code:
			w.WriteString("<code>" + text + "</code>")
		default:
			w.WriteString(text)
		}
	}
}
