// Package markup converts post bodies written in the site's small
// Markdown-like dialect into typed block nodes.
package markup

import (
	"encoding/json"
	"strings"
)

// Block is one structural unit of a post body. The set of implementations is
// closed: Paragraph, Heading, CodeBlock and List.
type Block interface {
	block()
}

// Paragraph is a single non-structural line with inline formatting resolved.
type Paragraph struct {
	Text Inline
}

// Heading is a level-2 or level-3 heading. Heading text is never
// inline-resolved.
type Heading struct {
	Level int
	Text  string
}

// CodeBlock holds the raw lines between a pair of fence markers.
type CodeBlock struct {
	Language string
	Lines    []string
}

// List aggregates a contiguous run of list-item lines.
type List struct {
	Items []Inline
}

func (Paragraph) block() {}
func (Heading) block()   {}
func (CodeBlock) block() {}
func (List) block()      {}

// Code returns the block's lines joined by newlines.
func (c CodeBlock) Code() string {
	return strings.Join(c.Lines, "\n")
}

// MarshalJSON implements json.Marshaler.
func (p Paragraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text Inline `json:"text"`
	}{"paragraph", nonNil(p.Text)})
}

// MarshalJSON implements json.Marshaler.
func (h Heading) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Level int    `json:"level"`
		Text  string `json:"text"`
	}{"heading", h.Level, h.Text})
}

// MarshalJSON implements json.Marshaler.
func (c CodeBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Language string `json:"language"`
		Code     string `json:"code"`
	}{"code", c.Language, c.Code()})
}

// MarshalJSON implements json.Marshaler.
func (l List) MarshalJSON() ([]byte, error) {
	items := make([]Inline, len(l.Items))
	for i, it := range l.Items {
		items[i] = nonNil(it)
	}
	return json.Marshal(struct {
		Type  string   `json:"type"`
		Items []Inline `json:"items"`
	}{"list", items})
}

// FirstParagraph returns the plain text of the first Paragraph in blocks, or
// "" when there is none.
func FirstParagraph(blocks []Block) string {
	for _, b := range blocks {
		if p, ok := b.(Paragraph); ok {
			return p.Text.PlainText()
		}
	}
	return ""
}

func nonNil(in Inline) Inline {
	if in == nil {
		return Inline{}
	}
	return in
}
