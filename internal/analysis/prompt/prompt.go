// Package prompt renders the system and user prompts for concept extraction.
//
// Rendering is deterministic. Templates default to the built-in text below
// and may be overridden through a driven.PromptStore; the example payload
// embedded in system prompts always comes from the response package so
// prompt and decoder share one schema.
//
// Templates use named placeholders ({{example}}, {{part}}, {{text}} and
// {{error}}). Everything else in a template, including '%', is literal.
package prompt

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/insight/internal/analysis/response"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure Builder implements the interface.
var _ driven.PromptStoreAware = (*Builder)(nil)

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultTemplates = map[string]string{
	driven.PromptAnalysisSystem: `You extract the key concepts of a document and organise them into a hierarchy.

Return between 3 and 12 concepts. Top-level concepts have "parent_id": null.
Sub-concepts set "parent_id" to the "id" of a concept in the same response.
"order" is the position among siblings, starting at 0.
Excerpts must be verbatim quotations from the document.
Set "mental_model" to a short framing of how the concepts fit together, or null.

OUTPUT ONLY valid JSON with exactly this structure:
{{example}}

Do not wrap the JSON in markdown. Do not add commentary.`,

	driven.PromptChunkSystem: `You extract the key concepts of one part of a larger document and organise them into a hierarchy.

Return between 2 and 8 concepts for this part only. Top-level concepts have "parent_id": null.
Sub-concepts set "parent_id" to the "id" of a concept in the same response.
"order" is the position among siblings, starting at 0.
Use specific, descriptive titles: concepts from all parts are merged by exact title.
Excerpts must be verbatim quotations from this part.
Set "mental_model" to null.

OUTPUT ONLY valid JSON with exactly this structure:
{{example}}

Do not wrap the JSON in markdown. Do not add commentary.`,

	driven.PromptAnalysisUser: `Analyse this document{{part}}:

{{text}}

Output ONLY JSON, no other text.`,

	driven.PromptRepair: `Your previous reply could not be parsed: {{error}}

Re-emit the analysis of the document below as a single valid JSON object that matches the required structure exactly.
Every concept needs every field shown in the structure; only "parent_id", "context" and "mental_model" may be null.

{{text}}

Output ONLY JSON, no other text.`,
}

// DefaultTemplates returns a copy of the built-in prompt templates.
func DefaultTemplates() map[string]string {
	out := make(map[string]string, len(defaultTemplates))
	for k, v := range defaultTemplates {
		out[k] = v
	}
	return out
}

// Part locates a chunk within the document. The zero value means the whole document.
type Part struct {
	// Index is the 0-based chunk index.
	Index int

	// Total is the number of chunks.
	Total int
}

// IsChunk reports whether p refers to a chunk. A document that was chunked
// into a single part is still a chunk.
func (p Part) IsChunk() bool {
	return p.Total > 0
}

// Label renders the part as "Part i of n", or "document" for a single pass.
func (p Part) Label() string {
	if !p.IsChunk() {
		return "document"
	}
	return fmt.Sprintf("Part %d of %d", p.Index+1, p.Total)
}

// Builder renders prompts, optionally from a prompt store.
type Builder struct {
	store driven.PromptStore
}

// NewBuilder creates a builder. A nil store uses the built-in templates.
func NewBuilder(store driven.PromptStore) *Builder {
	return &Builder{store: store}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (b *Builder) SetPromptStore(store driven.PromptStore) {
	b.store = store
}

// Reload drops any templates cached by the store so the next render reads
// the current overrides.
func (b *Builder) Reload() {
	if b.store != nil {
		b.store.Reload()
	}
}

// SystemPrompt returns the system instruction for a whole document or a chunk.
func (b *Builder) SystemPrompt(part Part) string {
	name := driven.PromptAnalysisSystem
	if part.IsChunk() {
		name = driven.PromptChunkSystem
	}
	return render(b.template(name), "{{example}}", response.ExamplePayload())
}

// UserPrompt wraps text with the part header and a JSON-only instruction.
func (b *Builder) UserPrompt(text string, part Part) string {
	header := ""
	if part.IsChunk() {
		header = " (" + part.Label() + ")"
	}
	return render(b.template(driven.PromptAnalysisUser), "{{part}}", header, "{{text}}", text)
}

// RepairPrompt asks for valid JSON again after parseErr.
func (b *Builder) RepairPrompt(text string, parseErr error) string {
	reason := "invalid JSON"
	if parseErr != nil {
		reason = firstLine(parseErr.Error())
	}
	return render(b.template(driven.PromptRepair), "{{error}}", reason, "{{text}}", text)
}

// template loads a prompt from the store, falling back to the default if unavailable.
func (b *Builder) template(name string) string {
	if b.store != nil {
		if t, err := b.store.Load(name); err == nil && t != "" {
			return t
		}
	}
	return defaultTemplates[name]
}

// render substitutes placeholder/value pairs in one pass, so values are
// never rescanned for placeholders.
func render(tmpl string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
