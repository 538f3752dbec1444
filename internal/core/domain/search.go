package domain

// RetrieveOptions configures a retrieval query.
type RetrieveOptions struct {
	// Site restricts results to documents with this scope tag. Empty means no filter.
	Site string

	// Take is the number of fused results to return.
	Take int
}

// Source describes the document behind one retrieved context.
type Source struct {
	ID         string
	Title      string
	SourcePath string
	Page       *int
	Snippet    string
	Score      float64
}

// RetrievalResult holds fused results in rank order.
// Contexts[i] always corresponds to Sources[i].
type RetrievalResult struct {
	Contexts []string
	Sources  []Source
}

// Len returns the number of results.
func (r *RetrievalResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Contexts)
}

// Add appends a context and its source, keeping both slices aligned.
func (r *RetrievalResult) Add(snippet string, src Source) {
	src.Snippet = snippet
	r.Contexts = append(r.Contexts, snippet)
	r.Sources = append(r.Sources, src)
}

// SourceLink is a clickable reference returned with an answer.
type SourceLink struct {
	Title string
	URL   string
}

// Answer is a generated reply with its source links.
type Answer struct {
	Text  string
	Links []SourceLink
}
