// Package sanitize reduces staff-entered rich text to the whitelisted inline
// tag set the PDF engine understands, and scrubs glyphs the engine cannot
// draw. The transform is lossy but idempotent.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// fallbackGlyphs appear when a missing glyph is requested from the PDF
// engine; tests reject their presence in extracted text.
const fallbackGlyphs = "•▪■□●◦"

var defaultTags = []string{"b", "strong", "i", "em", "u", "br", "p", "ul", "ol", "li"}

// Sanitizer holds a compiled tag whitelist policy.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New builds a sanitizer allowing only the given inline tags. An empty list
// uses the default whitelist.
func New(allowedTags []string) *Sanitizer {
	if len(allowedTags) == 0 {
		allowedTags = defaultTags
	}
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedTags...)
	// Dangerous containers go away with their content, not just the tags.
	p.SkipElementsContent("script", "style", "iframe", "object")
	return &Sanitizer{policy: p}
}

// Clean returns rich text safe for the renderer: whitelisted tags only,
// event handlers and URL schemes gone, newlines turned into <br/>, fallback
// glyphs replaced. Clean(Clean(s)) == Clean(s).
func (s *Sanitizer) Clean(input string) string {
	if input == "" {
		return ""
	}
	text := stripControl(input)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = s.policy.Sanitize(text)
	text = replaceFallbackGlyphs(text)
	text = strings.TrimSpace(text)
	return strings.ReplaceAll(text, "\n", "<br/>")
}

// CleanLines is Clean but keeps the line structure as a slice, one entry per
// non-empty line. Used for paragraph sections.
func (s *Sanitizer) CleanLines(input string) []string {
	cleaned := s.Clean(input)
	if cleaned == "" {
		return nil
	}
	parts := strings.Split(cleaned, "<br/>")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Scrub is the plain-text variant applied to every string the layout engine
// draws: fallback glyphs become hyphens, control characters other than \n
// are removed.
func Scrub(s string) string {
	return replaceFallbackGlyphs(stripControl(s))
}

func stripControl(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r >= 0x20 {
			if r == 0x7F || r == 0xFEFF || r == 0x200B {
				continue
			}
			out.WriteRune(r)
		}
	}
	return out.String()
}

func replaceFallbackGlyphs(s string) string {
	if !strings.ContainsAny(s, fallbackGlyphs) {
		return s
	}
	var out strings.Builder
	out.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(fallbackGlyphs, r) {
			out.WriteByte('-')
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
