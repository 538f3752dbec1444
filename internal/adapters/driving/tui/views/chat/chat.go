// Package chat provides the question and answer view of the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nordvik-labs/kilde/internal/adapters/driving/tui/components/input"
	"github.com/nordvik-labs/kilde/internal/adapters/driving/tui/components/list"
	"github.com/nordvik-labs/kilde/internal/adapters/driving/tui/components/status"
	"github.com/nordvik-labs/kilde/internal/adapters/driving/tui/keymap"
	"github.com/nordvik-labs/kilde/internal/adapters/driving/tui/messages"
	"github.com/nordvik-labs/kilde/internal/adapters/driving/tui/styles"
	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
)

// turn is one question and its reply.
type turn struct {
	question string
	answer   string
	failed   bool
}

// View is the chat screen: transcript, sources, question box and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	sources    *list.SourceList
	statusbar  *status.Bar
	transcript viewport.Model

	answers driving.AnswerService
	site    string
	ctx     context.Context

	turns   []turn
	pending bool
	width   int
	height  int
}

// NewView creates a chat view. site may be empty.
func NewView(s *styles.Styles, km *keymap.KeyMap, answers driving.AnswerService, site string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	bar := status.NewBar(s, km)
	bar.SetSite(site)

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		sources:    list.NewSourceList(s),
		statusbar:  bar,
		transcript: viewport.New(80, 10),
		answers:    answers,
		site:       site,
		ctx:        context.Background(),
	}
	v.SetSize(80, 24)
	return v
}

// WithContext sets the context passed to the answer service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor blink.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles keys, resizes and answers.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetSize(msg.Width, msg.Height)
		return v, nil

	case messages.AnswerReady:
		return v, v.handleAnswer(msg)

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Quit):
		return v, tea.Quit
	case keymap.Matches(key, v.keymap.Ask):
		return v, v.ask()
	case keymap.Matches(key, v.keymap.Clear):
		v.turns = nil
		v.sources.SetLinks(nil)
		v.statusbar.Clear()
		v.refresh()
		return v, nil
	case keymap.Matches(key, v.keymap.PrevSource):
		v.sources.MoveUp()
		return v, nil
	case keymap.Matches(key, v.keymap.NextSource):
		v.sources.MoveDown()
		return v, nil
	case keymap.Matches(key, v.keymap.ScrollUp), keymap.Matches(key, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask submits the typed question. Nothing happens while an answer is pending.
func (v *View) ask() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending || v.answers == nil {
		return nil
	}

	v.pending = true
	v.input.Reset()
	v.input.SetEnabled(false)
	v.statusbar.SetState(status.StateThinking)
	v.turns = append(v.turns, turn{question: question})
	v.refresh()

	ctx, answers, site := v.ctx, v.answers, v.site
	return func() tea.Msg {
		ans, err := answers.Answer(ctx, question, site)
		return messages.AnswerReady{Question: question, Answer: ans, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReady) tea.Cmd {
	v.pending = false
	last := len(v.turns) - 1
	switch {
	case msg.Err != nil:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		if last >= 0 {
			v.turns[last].answer = msg.Err.Error()
			v.turns[last].failed = true
		}
		v.sources.SetLinks(nil)
	case msg.Answer != nil:
		v.statusbar.SetState(status.StateAnswered)
		v.statusbar.SetSources(len(msg.Answer.Links))
		if last >= 0 {
			v.turns[last].answer = msg.Answer.Text
		}
		v.sources.SetLinks(msg.Answer.Links)
	}
	v.layout()
	v.refresh()
	return v.input.SetEnabled(true)
}

// SetSize lays the view out for a terminal of the given size.
func (v *View) SetSize(width, height int) {
	v.width, v.height = width, height
	v.input.SetWidth(width)
	v.sources.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.layout()
	v.refresh()
}

// layout gives the transcript whatever height the fixed parts leave.
func (v *View) layout() {
	const titleLines, inputLines, statusLines, gaps = 1, 3, 1, 2
	v.transcript.Width = max(20, v.width)
	v.transcript.Height = max(3, v.height-titleLines-inputLines-statusLines-gaps-v.sources.Height())
}

func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Spør om noe i dokumentene dine.")
	}
	wrap := lipgloss.NewStyle().Width(max(20, v.width-2))

	var b strings.Builder
	for i, t := range v.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.styles.Question.Render("› " + t.question))
		b.WriteString("\n")
		switch {
		case t.failed:
			b.WriteString(v.styles.Error.Render(wrap.Render(t.answer)))
		case t.answer == "":
			b.WriteString(v.styles.Muted.Render("..."))
		default:
			b.WriteString(v.styles.Answer.Render(wrap.Render(t.answer)))
		}
	}
	return b.String()
}

// View renders the screen.
func (v *View) View() string {
	title := v.styles.Title.Render("kilde")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		v.transcript.View(),
		v.sources.View(),
		v.input.View(),
		v.statusbar.View(),
	)
}

// Pending reports whether an answer is outstanding.
func (v *View) Pending() bool {
	return v.pending
}

// Turns returns the number of questions asked.
func (v *View) Turns() int {
	return len(v.turns)
}
