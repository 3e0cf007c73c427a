// Package render turns chat message text into display markup.
// The same three transforms (bold spans, line breaks, emoji highlighting)
// are applied for every target; only the markup differs.
package render

import (
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Highlighted lists the glyphs wrapped in a highlight span, in match order.
var Highlighted = []string{
	"📅", "✅", "🔗", "⚠️", "👋", "🤖", "🩺", "🦷", "👁️", "❤️",
	"👤", "📞", "📧", "🏥", "📍", "📫", "🗓️", "😊", "•",
}

var (
	boldPattern  = regexp.MustCompile(`\*\*(.*?)\*\*`)
	emojiPattern = regexp.MustCompile(alternation(Highlighted))
)

func alternation(glyphs []string) string {
	quoted := make([]string, len(glyphs))
	for i, g := range glyphs {
		quoted[i] = regexp.QuoteMeta(g)
	}
	return strings.Join(quoted, "|")
}

// Formatter describes the markup for one output target.
type Formatter struct {
	Escape    func(string) string // applied to the raw text first; nil means none
	Bold      func(string) string
	LineBreak string
	Highlight func(string) string
}

// Format applies bold, line-break and emoji transforms, in that order.
func (f Formatter) Format(text string) string {
	if f.Escape != nil {
		text = f.Escape(text)
	}

	text = boldPattern.ReplaceAllStringFunc(text, func(m string) string {
		inner := m[2 : len(m)-2]
		if f.Bold == nil {
			return inner
		}
		return f.Bold(inner)
	})

	text = strings.ReplaceAll(text, "\n", f.LineBreak)

	if f.Highlight != nil {
		text = emojiPattern.ReplaceAllStringFunc(text, f.Highlight)
	}
	return text
}

func wrap(open, close string) func(string) string {
	return func(s string) string {
		return open + s + close
	}
}

// Terminal styles.
var (
	BoldStyle  = lipgloss.NewStyle().Bold(true)
	EmojiStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

// HTML produces the widget markup: <strong>, <br> and <span class="emoji">.
var HTML = Formatter{
	Escape:    html.EscapeString,
	Bold:      wrap("<strong>", "</strong>"),
	LineBreak: "<br>",
	Highlight: wrap(`<span class="emoji">`, "</span>"),
}

// Terminal styles bold spans and emoji with lipgloss and keeps real newlines.
var Terminal = Formatter{
	Bold:      func(s string) string { return BoldStyle.Render(s) },
	LineBreak: "\n",
	Highlight: func(s string) string { return EmojiStyle.Render(s) },
}

// Plain strips the bold markers and leaves everything else untouched.
var Plain = Formatter{
	LineBreak: "\n",
}

// Rendered is a message ready to be appended to a view.
type Rendered struct {
	Text   string // source text
	IsUser bool
	Body   string // formatted markup
}

// Message formats text with f.
func Message(f Formatter, text string, isUser bool) Rendered {
	return Rendered{
		Text:   text,
		IsUser: isUser,
		Body:   f.Format(text),
	}
}
