// Package list provides the source list for the chat TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/nordvik-labs/kilde/internal/adapters/driving/tui/styles"
	"github.com/nordvik-labs/kilde/internal/core/domain"
)

// SourceList shows the links behind the latest answer.
type SourceList struct {
	links    []domain.SourceLink
	selected int
	styles   *styles.Styles
	width    int
}

// NewSourceList creates an empty source list.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &SourceList{styles: s, width: 80}
}

// View renders one line per link.
func (l *SourceList) View() string {
	if len(l.links) == 0 {
		return l.styles.Muted.Render("Ingen kilder")
	}

	lines := make([]string, 0, len(l.links)+1)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Kilder (%d)", len(l.links))))
	for i, link := range l.links {
		lines = append(lines, l.renderLink(i, link))
	}
	return strings.Join(lines, "\n")
}

func (l *SourceList) renderLink(index int, link domain.SourceLink) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}
	title := truncate(link.Title, max(10, l.width/2))
	url := truncate(link.URL, max(10, l.width-len([]rune(title))-8))

	line := fmt.Sprintf("%s%d. %s ", indicator, index+1, title)
	if index == l.selected {
		return l.styles.Selected.Render(line) + l.styles.Link.Render(url)
	}
	return l.styles.Normal.Render(line) + l.styles.Link.Render(url)
}

// SetLinks replaces the links and resets the selection.
func (l *SourceList) SetLinks(links []domain.SourceLink) {
	l.links = links
	l.selected = 0
}

// Links returns the current links.
func (l *SourceList) Links() []domain.SourceLink {
	return l.links
}

// MoveUp selects the previous link.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown selects the next link.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.links)-1 {
		l.selected++
	}
}

// Selected returns the selected link.
func (l *SourceList) Selected() (domain.SourceLink, bool) {
	if l.selected < 0 || l.selected >= len(l.links) {
		return domain.SourceLink{}, false
	}
	return l.links[l.selected], true
}

// SetWidth sets the rendering width.
func (l *SourceList) SetWidth(width int) {
	l.width = width
}

// Height returns the number of lines View renders.
func (l *SourceList) Height() int {
	if len(l.links) == 0 {
		return 1
	}
	return len(l.links) + 1
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
