package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuestionInput(t *testing.T) {
	in := NewQuestionInput(nil)

	require.NotNil(t, in.styles)
	assert.Empty(t, in.Value())
	assert.True(t, in.Focused())
	assert.NotNil(t, in.Init())
}

func TestQuestionInput_Typing(t *testing.T) {
	in := NewQuestionInput(nil)

	for _, r := range "hei" {
		in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "hei", in.Value())
	assert.Contains(t, in.View(), "Spørsmål")
}

func TestQuestionInput_DisabledIgnoresKeys(t *testing.T) {
	in := NewQuestionInput(nil)
	in.SetEnabled(false)

	in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.False(t, in.Focused())
	assert.Empty(t, in.Value())

	in.SetEnabled(true)
	assert.True(t, in.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Equal(t, 84, in.textinput.Width)

	in.SetWidth(10)
	assert.Equal(t, 20, in.textinput.Width)
}

func TestQuestionInput_Reset(t *testing.T) {
	in := NewQuestionInput(nil)
	in.SetValue("hvor lang er benken?")

	in.Reset()

	assert.Empty(t, in.Value())
}
