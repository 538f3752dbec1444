package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Matches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name     string
		key      string
		binding  key.Binding
		expected bool
	}{
		{"enter asks", "enter", km.Ask, true},
		{"ctrl+c quits", "ctrl+c", km.Quit, true},
		{"esc quits", "esc", km.Quit, true},
		{"q is typed, not quit", "q", km.Quit, false},
		{"ctrl+n selects next source", "ctrl+n", km.NextSource, true},
		{"j is typed, not navigation", "j", km.NextSource, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Matches(tt.key, tt.binding))
		})
	}
}

func TestKeyMap_HelpSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 3)
	assert.Equal(t, "enter", km.SourcesHelp()[0].Help().Key)
	assert.Equal(t, "esc", km.Quit.Help().Key)
}
