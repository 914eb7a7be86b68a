package markup

import (
	"fmt"
	"regexp"
	"strings"
)

// Profile selects a dialect variant.
type Profile int

const (
	// ProfileFull supports fenced code blocks and aggregates contiguous list
	// lines into one List.
	ProfileFull Profile = iota
	// ProfileBasic is the reduced dialect: no fences, and every list line is
	// its own single-item List.
	ProfileBasic
)

// String returns the config name of the profile.
func (p Profile) String() string {
	if p == ProfileBasic {
		return "basic"
	}
	return "full"
}

// ParseProfile maps a config value to a Profile. Empty means full.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return ProfileFull, nil
	case "basic":
		return ProfileBasic, nil
	default:
		return ProfileFull, fmt.Errorf("markup: unknown profile %q", s)
	}
}

// Option configures a conversion.
type Option func(*scanner)

// WithProfile selects the dialect profile.
func WithProfile(p Profile) Option {
	return func(s *scanner) {
		s.profile = p
	}
}

const (
	fenceMarker   = "```"
	h2Marker      = "## "
	h3Marker      = "### "
	bulletMarker  = "- "
	defaultCodeLn = "text"
)

var (
	numberedRe    = regexp.MustCompile(`^\d+\.`)
	numberedStrip = regexp.MustCompile(`^\d+\.\s*`)
	bulletStrip   = regexp.MustCompile(`^-\s*`)
)

// scanner holds the open-node state of one conversion.
type scanner struct {
	profile Profile
	blocks  []Block

	inCode    bool
	codeLang  string
	codeLines []string

	listItems []Inline
}

// Convert turns a post body into block nodes. It never fails: malformed
// input degrades to paragraphs, and an unterminated fence still yields its
// CodeBlock.
func Convert(text string, opts ...Option) []Block {
	s := &scanner{}
	for _, opt := range opts {
		opt(s)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		s.line(line)
	}
	s.flushList()
	s.flushCode()

	if s.blocks == nil {
		return []Block{}
	}
	return s.blocks
}

func (s *scanner) line(line string) {
	trimmed := strings.TrimSpace(line)

	if s.profile == ProfileFull && strings.HasPrefix(trimmed, fenceMarker) {
		s.flushList()
		if s.inCode {
			s.flushCode()
			return
		}
		s.inCode = true
		s.codeLang = strings.TrimSpace(trimmed[len(fenceMarker):])
		if s.codeLang == "" {
			s.codeLang = defaultCodeLn
		}
		return
	}

	if s.inCode {
		s.codeLines = append(s.codeLines, line)
		return
	}

	switch {
	case strings.HasPrefix(trimmed, h2Marker):
		s.flushList()
		s.emit(Heading{Level: 2, Text: trimmed[len(h2Marker):]})

	case strings.HasPrefix(trimmed, h3Marker):
		s.flushList()
		s.emit(Heading{Level: 3, Text: trimmed[len(h3Marker):]})

	case strings.HasPrefix(trimmed, bulletMarker):
		s.listItem(bulletStrip.ReplaceAllString(trimmed, ""))

	case numberedRe.MatchString(trimmed):
		s.listItem(numberedStrip.ReplaceAllString(trimmed, ""))

	case trimmed == "":
		// Separator only; an open list stays open.

	default:
		s.flushList()
		s.emit(Paragraph{Text: ResolveInline(trimmed)})
	}
}

func (s *scanner) listItem(text string) {
	s.listItems = append(s.listItems, ResolveInline(text))
	if s.profile == ProfileBasic {
		s.flushList()
	}
}

func (s *scanner) emit(b Block) {
	s.blocks = append(s.blocks, b)
}

func (s *scanner) flushList() {
	if len(s.listItems) == 0 {
		return
	}
	s.emit(List{Items: s.listItems})
	s.listItems = nil
}

func (s *scanner) flushCode() {
	if !s.inCode {
		return
	}
	s.emit(CodeBlock{Language: s.codeLang, Lines: s.codeLines})
	s.inCode = false
	s.codeLang = ""
	s.codeLines = nil
}
