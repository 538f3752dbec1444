// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/nordvik-labs/kilde/internal/core/domain"
)

// AskRequested is a command to answer a question.
type AskRequested struct {
	Question string
}

// AnswerReady carries an answer, or the error that prevented one.
type AnswerReady struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// TranscriptCleared is sent when the transcript is emptied.
type TranscriptCleared struct{}
