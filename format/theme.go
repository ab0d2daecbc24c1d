package format

import "github.com/charmbracelet/lipgloss"

var (
	directiveColor = lipgloss.Color("#4682B4")
	keywordColor   = lipgloss.Color("#CC7832")
	typeColor      = lipgloss.Color("#66BB66")
	memberColor    = lipgloss.Color("#CCCCCC")
	literalColor   = lipgloss.Color("#FFAA44")
	commentColor   = lipgloss.Color("#888888")
)

// Theme styles the tokens of a smali listing. The zero Theme writes plain
// text.
type Theme struct {
	Directive lipgloss.Style
	Keyword   lipgloss.Style
	Type      lipgloss.Style
	Member    lipgloss.Style
	Literal   lipgloss.Style
	Comment   lipgloss.Style

	enabled bool
}

// ColorTheme returns the coloured theme rendered by r. The renderer's colour
// profile decides which escape codes, if any, are written.
func ColorTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Directive: r.NewStyle().Foreground(directiveColor).Bold(true),
		Keyword:   r.NewStyle().Foreground(keywordColor),
		Type:      r.NewStyle().Foreground(typeColor),
		Member:    r.NewStyle().Foreground(memberColor).Bold(true),
		Literal:   r.NewStyle().Foreground(literalColor),
		Comment:   r.NewStyle().Foreground(commentColor).Italic(true),
		enabled:   true,
	}
}

func (t Theme) paint(style lipgloss.Style, s string) string {
	if !t.enabled || s == "" {
		return s
	}
	return style.Render(s)
}

func (t Theme) directive(s string) string { return t.paint(t.Directive, s) }
func (t Theme) keyword(s string) string   { return t.paint(t.Keyword, s) }
func (t Theme) typ(s string) string       { return t.paint(t.Type, s) }
func (t Theme) member(s string) string    { return t.paint(t.Member, s) }
func (t Theme) literal(s string) string   { return t.paint(t.Literal, s) }
func (t Theme) comment(s string) string   { return t.paint(t.Comment, s) }
