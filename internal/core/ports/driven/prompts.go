package driven

// PromptStore resolves oracle prompt templates by name. Implementations
// return the built-in default when no usable override exists, and an
// error only for names they know nothing about.
type PromptStore interface {
	Load(name string) (string, error)
}

// Prompt names. Both templates use indexed verbs (%[1]s) so a user can
// reorder them.
const (
	// PromptGenerate: %[1]s field list, %[2]s record delimiter,
	// %[3]s requirements of the batch.
	PromptGenerate = "generate_records"

	// PromptCoverage: %[1]s requirement text, %[2]s requirement id,
	// %[3]s summary of the existing records.
	PromptCoverage = "coverage"
)
