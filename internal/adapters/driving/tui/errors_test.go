package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorts_Validate(t *testing.T) {
	var nilPorts *Ports
	assert.ErrorIs(t, nilPorts.Validate(), ErrMissingAnswerService)
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingAnswerService)
	assert.NoError(t, (&Ports{Answer: &fakeAnswerer{}}).Validate())
}
