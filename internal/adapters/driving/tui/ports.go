// Package tui provides the interactive chat interface for kilde.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
)

// Ports aggregates the driving ports the chat TUI needs.
type Ports struct {
	// Answer answers questions from the store.
	Answer driving.AnswerService

	// Site optionally restricts answers to one site tag.
	Site string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
