package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrievalResult_AddKeepsContextsAligned(t *testing.T) {
	page := 3
	var res RetrievalResult

	res.Add("Skru fast braketten.", Source{ID: "a", Title: "Hylle", SourcePath: "/docs/hylle.pdf", Page: &page, Score: 0.03})
	res.Add("Vi selger hyller.", Source{ID: "b", Title: "Butikk", SourcePath: "https://x.com/", Snippet: "gammel", Score: 0.02})

	require.Equal(t, 2, res.Len())
	require.Len(t, res.Sources, len(res.Contexts))
	for i := range res.Contexts {
		assert.Equal(t, res.Contexts[i], res.Sources[i].Snippet)
	}
	assert.Equal(t, "a", res.Sources[0].ID)
	assert.Equal(t, 3, *res.Sources[0].Page)
	assert.Equal(t, "Vi selger hyller.", res.Sources[1].Snippet)
	assert.Nil(t, res.Sources[1].Page)
}

func TestRetrievalResult_Len(t *testing.T) {
	tests := []struct {
		name string
		res  *RetrievalResult
		want int
	}{
		{name: "nil result", res: nil, want: 0},
		{name: "empty result", res: &RetrievalResult{}, want: 0},
		{name: "one result", res: &RetrievalResult{Contexts: []string{"x"}, Sources: []Source{{ID: "x"}}}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Len())
		})
	}
}

func TestAnswer_Zero(t *testing.T) {
	var a Answer
	assert.Empty(t, a.Text)
	assert.Empty(t, a.Links)
}
