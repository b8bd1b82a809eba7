package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanStripsScripts(t *testing.T) {
	s := New(nil)

	out := s.Clean(`<p>Hello</p><script>alert("x")</script>`)
	require.NotContains(t, out, "script")
	require.NotContains(t, out, "alert")
	require.Contains(t, out, "Hello")
}

func TestCleanStripsEventHandlersAndSchemes(t *testing.T) {
	s := New(nil)

	out := s.Clean(`<b onclick="evil()">bold</b><a href="javascript:evil()">link</a>`)
	require.NotContains(t, out, "onclick")
	require.NotContains(t, out, "javascript:")
	require.Contains(t, out, "<b>bold</b>")
}

func TestCleanIsIdempotent(t *testing.T) {
	s := New(nil)

	inputs := []string{
		"plain text",
		"<b>bold</b> and <i>italic</i>",
		"line one\nline two",
		"<ul><li>item • one</li></ul>",
		`<iframe src="http://example.com"></iframe>after`,
	}
	for _, in := range inputs {
		once := s.Clean(in)
		require.Equal(t, once, s.Clean(once), "input %q", in)
	}
}

func TestCleanReplacesFallbackGlyphs(t *testing.T) {
	s := New(nil)

	out := s.Clean("a • b ▪ c ■ d")
	require.NotContains(t, out, "•")
	require.NotContains(t, out, "▪")
	require.Equal(t, "a - b - c - d", out)
}

func TestCleanTurnsNewlinesIntoBreaks(t *testing.T) {
	s := New(nil)

	out := s.Clean("day 1\r\nday 2\rday 3")
	require.Equal(t, "day 1<br/>day 2<br/>day 3", out)
}

func TestCleanLines(t *testing.T) {
	s := New(nil)

	lines := s.CleanLines("first\n\n  \nsecond")
	require.Equal(t, []string{"first", "second"}, lines)

	require.Nil(t, s.CleanLines("   "))
}

func TestCleanKeepsThaiText(t *testing.T) {
	s := New(nil)

	in := "สวัสดีครับ <b>ยินดีต้อนรับ</b>"
	out := s.Clean(in)
	require.Contains(t, out, "สวัสดีครับ")
	require.Contains(t, out, "<b>ยินดีต้อนรับ</b>")
}

func TestScrubRemovesControlCharacters(t *testing.T) {
	out := Scrub("a\x00b\x07c​d\uFEFFe")
	require.Equal(t, "abcde", out)
}

func TestScrubDropsTabsKeepsNewlines(t *testing.T) {
	out := Scrub("a\tb\nc")
	require.Equal(t, "ab\nc", out)
}

func TestSkippedContainersLoseContent(t *testing.T) {
	s := New(nil)
	out := s.Clean(`before<style>body{color:red}</style>after`)
	require.False(t, strings.Contains(out, "color"), "style content leaked: %q", out)
	require.Contains(t, out, "before")
	require.Contains(t, out, "after")
}
