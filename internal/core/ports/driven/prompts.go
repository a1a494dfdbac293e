package driven

// PromptStore supplies prompt templates by name, falling back to built-in
// defaults for names with no override.
type PromptStore interface {
	Load(name string) (string, error)

	// Reload drops cached templates so edits on disk take effect.
	Reload()
}

// Template names. Placeholders are written {{name}} and may appear in any
// order or not at all; other text is literal.
const (
	// PromptAnalysisSystem frames a whole-document analysis. {{example}}: example payload.
	PromptAnalysisSystem = "analysis_system"

	// PromptChunkSystem frames the analysis of one part. {{example}}: example payload.
	PromptChunkSystem = "chunk_system"

	// PromptAnalysisUser carries the text. {{part}}: part header, {{text}}: text.
	PromptAnalysisUser = "analysis_user"

	// PromptRepair asks for valid JSON after a parse failure. {{error}}: parse error, {{text}}: text.
	PromptRepair = "repair"
)

// PromptStoreAware is implemented by components whose templates can be
// overridden after construction. A nil store restores the defaults.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
