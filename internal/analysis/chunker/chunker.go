// Package chunker splits document text into word-bounded chunks along
// paragraph boundaries.
package chunker

import "strings"

// DefaultTargetWords is the default number of words per chunk.
const DefaultTargetWords = 800

// ParagraphSeparator separates paragraphs in normalised text.
const ParagraphSeparator = "\n\n"

// Chunker splits text into chunks of approximately targetWords words.
type Chunker struct {
	targetWords int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithTargetWords sets the soft word limit per chunk.
func WithTargetWords(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.targetWords = n
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{targetWords: DefaultTargetWords}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TargetWords returns the configured soft word limit.
func (c *Chunker) TargetWords() int {
	return c.targetWords
}

// Split splits text using the configured target.
func (c *Chunker) Split(text string) []string {
	return Split(text, c.targetWords)
}

// Split greedily packs paragraphs into chunks of at most targetWords words.
// A paragraph is never split, so a single oversized paragraph yields an
// oversized chunk. Joining the result with ParagraphSeparator reproduces
// text exactly. Empty text yields no chunks.
func Split(text string, targetWords int) []string {
	if text == "" {
		return nil
	}
	if targetWords <= 0 {
		targetWords = DefaultTargetWords
	}

	paragraphs := strings.Split(text, ParagraphSeparator)
	var chunks []string
	var current []string
	currentWords := 0

	for _, paragraph := range paragraphs {
		words := len(strings.Fields(paragraph))

		// Blank paragraphs never open a chunk; they stay with the
		// preceding paragraph so every chunk carries at least one word.
		if currentWords > 0 && words > 0 && currentWords+words > targetWords {
			chunks = append(chunks, strings.Join(current, ParagraphSeparator))
			current = current[:0]
			currentWords = 0
		}

		current = append(current, paragraph)
		currentWords += words
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, ParagraphSeparator))
	}

	return chunks
}

// WordCount returns the number of whitespace-delimited tokens in chunk.
func WordCount(chunk string) int {
	return len(strings.Fields(chunk))
}
