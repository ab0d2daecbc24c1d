package browse

import (
	"fmt"
	"strings"
)

func (m *Model) applyScrolling(content string, viewportHeight int) string {
	lines := strings.Split(content, "\n")
	totalLines := len(lines)

	if totalLines <= viewportHeight {
		return content
	}

	maxScroll := totalLines - viewportHeight
	m.scrollPos = min(max(m.scrollPos, 0), maxScroll)

	endPos := m.scrollPos + viewportHeight
	visibleLines := lines[m.scrollPos:endPos]

	// The last visible line becomes the position indicator.
	scrollInfo := fmt.Sprintf("%s (Line %d-%d of %d) %s",
		MutedStyle.Render("▲"),
		m.scrollPos+1,
		endPos,
		totalLines,
		MutedStyle.Render("▼"))
	visibleLines[len(visibleLines)-1] = scrollInfo

	return strings.Join(visibleLines, "\n")
}

func (m *Model) scrollUp(lines int) {
	m.scrollPos = max(m.scrollPos-lines, 0)
}

func (m *Model) scrollDown(lines int) {
	// Clamped against the listing length in applyScrolling.
	m.scrollPos += lines
}
