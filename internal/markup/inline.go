package markup

import (
	"encoding/json"
	"regexp"
	"strings"
)

// SpanKind identifies the styling of an inline span.
type SpanKind int

// Span kinds.
const (
	Plain SpanKind = iota
	Bold
	Italic
	Code
)

var spanKindNames = [...]string{
	Plain:  "text",
	Bold:   "bold",
	Italic: "italic",
	Code:   "code",
}

// String returns the kind name used in JSON output.
func (k SpanKind) String() string {
	if int(k) < len(spanKindNames) {
		return spanKindNames[k]
	}
	return "unknown"
}

// MarshalJSON implements json.Marshaler.
func (k SpanKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Span is a run of text with a single style.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
}

// Inline is resolved paragraph or list-item text.
type Inline []Span

// PlainText returns the text with all styling dropped.
func (in Inline) PlainText() string {
	var sb strings.Builder
	for _, s := range in {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Passes run in this order over whatever is still plain text. Nested or
// overlapping markers are not supported.
var inlinePasses = []struct {
	re   *regexp.Regexp
	kind SpanKind
}{
	{regexp.MustCompile(`\*\*(.*?)\*\*`), Bold},
	{regexp.MustCompile(`\*(.*?)\*`), Italic},
	{regexp.MustCompile("`(.*?)`"), Code},
}

// ResolveInline splits s into styled spans: **bold**, *italic* and `code`.
// Marker characters are removed; surrounding text is kept verbatim.
func ResolveInline(s string) Inline {
	if s == "" {
		return Inline{}
	}
	spans := Inline{{Kind: Plain, Text: s}}
	for _, p := range inlinePasses {
		spans = splitPlain(spans, p.re, p.kind)
	}
	return spans
}

// splitPlain replaces every match of re inside the plain spans of in with a
// span of the given kind. Styled spans pass through untouched.
func splitPlain(in Inline, re *regexp.Regexp, kind SpanKind) Inline {
	out := make(Inline, 0, len(in))
	for _, sp := range in {
		if sp.Kind != Plain {
			out = append(out, sp)
			continue
		}
		last := 0
		for _, m := range re.FindAllStringSubmatchIndex(sp.Text, -1) {
			if m[0] > last {
				out = append(out, Span{Kind: Plain, Text: sp.Text[last:m[0]]})
			}
			out = append(out, Span{Kind: kind, Text: sp.Text[m[2]:m[3]]})
			last = m[1]
		}
		if last < len(sp.Text) {
			out = append(out, Span{Kind: Plain, Text: sp.Text[last:]})
		}
	}
	return out
}
