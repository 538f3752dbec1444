package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the built-in default
	// or an error when no default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptCaptionSystem is the system instruction for image descriptions.
	// It has no format placeholders; site and task hints are appended.
	PromptCaptionSystem = "caption_system"

	// PromptAnswer grounds an answer in store excerpts.
	// The template expects %s (joined excerpts) and %s (question).
	PromptAnswer = "answer"

	// PromptSiteAnswer grounds an answer in crawled pages.
	// The template expects %s (joined context blocks) and %s (question).
	PromptSiteAnswer = "site_answer"
)
