package driven

// PromptStore provides access to editable prompt texts.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt text for the given name.
	// Unknown names return an error; known names fall back to a default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptSystemPolicy is the persona and language policy sent as the
	// first part of every system text. It has no format placeholders.
	PromptSystemPolicy = "system_policy"
)
