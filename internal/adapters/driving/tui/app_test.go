package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

type fakeAnswerer struct {
	calls int
}

func (f *fakeAnswerer) Answer(_ context.Context, question, _ string) (*domain.Answer, error) {
	f.calls++
	return &domain.Answer{Text: "svar på " + question}, nil
}

func TestNewApp_RequiresAnswerService(t *testing.T) {
	_, err := NewApp(&Ports{})
	assert.ErrorIs(t, err, ErrMissingAnswerService)
}

func TestApp_WaitsForWindowSize(t *testing.T) {
	app, err := NewApp(&Ports{Answer: &fakeAnswerer{}})
	require.NoError(t, err)

	assert.Contains(t, app.View(), "Starter")

	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, model.View(), "kilde")
	assert.Equal(t, 100, app.width)
}

func TestApp_DelegatesToChat(t *testing.T) {
	fake := &fakeAnswerer{}
	app, err := NewApp(&Ports{Answer: fake, Site: "ikea"})
	require.NoError(t, err)
	app.WithContext(context.Background())
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hei")})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, 1, fake.calls)
	assert.Contains(t, app.View(), "svar på hei")
	assert.Contains(t, app.View(), "ikea")
}
