// Package status provides the status bar for the chat TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/nordvik-labs/kilde/internal/adapters/driving/tui/keymap"
	"github.com/nordvik-labs/kilde/internal/adapters/driving/tui/styles"
)

// State is the chat state shown on the left of the bar.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateAnswered State = "answered"
	StateError    State = "error"
)

// Bar displays chat status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	sources int
	site    string
	width   int
}

// NewBar creates a status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// View renders the bar across the full width.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := max(1, b.width-lipgloss.Width(left)-lipgloss.Width(right))
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	var text string
	switch b.state {
	case StateThinking:
		return b.styles.Muted.Render("Tenker...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render("Feil: " + b.message)
		}
		return b.styles.Error.Render("Feil")
	case StateAnswered:
		text = b.styles.Normal.Render(fmt.Sprintf("%d kilder", b.sources))
	default:
		text = b.styles.Muted.Render("Klar")
	}
	if b.site != "" {
		text += b.styles.Muted.Render(" · " + b.site)
	}
	return text
}

func (b *Bar) renderRight() string {
	bindings := b.bindings()
	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

func (b *Bar) bindings() []key.Binding {
	if b.state == StateAnswered && b.sources > 0 {
		return b.keymap.SourcesHelp()
	}
	return b.keymap.ShortHelp()
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets the error message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// SetSources sets the number of sources behind the last answer.
func (b *Bar) SetSources(n int) {
	b.sources = n
}

// SetSite shows the active site filter.
func (b *Bar) SetSite(site string) {
	b.site = site
}

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Clear resets the bar to ready.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.sources = 0
}
