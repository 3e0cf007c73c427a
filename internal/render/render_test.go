package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bold, break and emoji",
			input: "**hi** there\n**ok** 👋",
			want:  `<strong>hi</strong> there<br><strong>ok</strong> <span class="emoji">👋</span>`,
		},
		{
			name:  "non-greedy bold",
			input: "**a** and **b**",
			want:  "<strong>a</strong> and <strong>b</strong>",
		},
		{
			name:  "bold does not cross lines",
			input: "**a\nb**",
			want:  "**a<br>b**",
		},
		{
			name:  "variation selector glyphs",
			input: "⚠️ ❤️ 🗓️",
			want:  `<span class="emoji">⚠️</span> <span class="emoji">❤️</span> <span class="emoji">🗓️</span>`,
		},
		{
			name:  "bullet is highlighted",
			input: "• Agendar",
			want:  `<span class="emoji">•</span> Agendar`,
		},
		{
			name:  "glyph outside allow-list untouched",
			input: "🎉",
			want:  "🎉",
		},
		{
			name:  "markup in source is escaped",
			input: "<script>**x**</script>",
			want:  "&lt;script&gt;<strong>x</strong>&lt;/script&gt;",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTML.Format(tt.input))
		})
	}
}

func TestPlainFormat(t *testing.T) {
	assert.Equal(t, "hi there\nok 👋", Plain.Format("**hi** there\n**ok** 👋"))
}

func TestFormatterOrder(t *testing.T) {
	f := Formatter{
		Bold:      func(s string) string { return "[" + s + "]" },
		LineBreak: "|",
		Highlight: func(s string) string { return "(" + s + ")" },
	}
	assert.Equal(t, "[(📅) hoje]|(✅)", f.Format("**📅 hoje**\n✅"))
}

func TestTerminalKeepsText(t *testing.T) {
	out := Terminal.Format("**hi**\n👋")
	assert.Contains(t, out, "hi")
	assert.Contains(t, out, "\n")
	assert.Contains(t, out, "👋")
	assert.NotContains(t, out, "**")
}

func TestMessage(t *testing.T) {
	r := Message(HTML, "**x**", true)
	assert.Equal(t, "**x**", r.Text)
	assert.True(t, r.IsUser)
	assert.Equal(t, "<strong>x</strong>", r.Body)
}
