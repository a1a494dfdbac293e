package chunker

import (
	"math/rand"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.TargetWords() != DefaultTargetWords {
			t.Errorf("expected target %d, got %d", DefaultTargetWords, c.TargetWords())
		}
	})

	t.Run("custom target", func(t *testing.T) {
		c := New(WithTargetWords(50))
		if c.TargetWords() != 50 {
			t.Errorf("expected target 50, got %d", c.TargetWords())
		}
	})

	t.Run("non-positive target ignored", func(t *testing.T) {
		c := New(WithTargetWords(0), WithTargetWords(-3))
		if c.TargetWords() != DefaultTargetWords {
			t.Errorf("expected default target, got %d", c.TargetWords())
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	if chunks := Split("", 10); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestSplit_SmallText(t *testing.T) {
	text := "one two three\n\nfour five"
	chunks := Split(text, 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("expected chunk to equal text")
	}
}

func TestSplit_ClosesChunkAtTarget(t *testing.T) {
	text := "a b c\n\nd e\n\nf g h i"
	chunks := Split(text, 5)

	want := []string{"a b c\n\nd e", "f g h i"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestSplit_OversizedParagraphKeptWhole(t *testing.T) {
	big := strings.TrimSpace(strings.Repeat("word ", 30))
	text := "intro words\n\n" + big + "\n\noutro"
	chunks := Split(text, 10)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[1] != big {
		t.Errorf("expected oversized paragraph to form its own chunk")
	}
	if WordCount(chunks[1]) != 30 {
		t.Errorf("expected 30 words, got %d", WordCount(chunks[1]))
	}
}

func TestSplit_BlankParagraphsNeverFormEmptyChunk(t *testing.T) {
	text := "\n\n\n\nalpha beta\n\n\n\ngamma"
	chunks := Split(text, 2)

	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank: %q", i, c)
		}
	}
	if strings.Join(chunks, ParagraphSeparator) != text {
		t.Errorf("reassembly mismatch")
	}
}

func TestSplit_WhitespaceOnlyText(t *testing.T) {
	chunks := Split("   ", 10)
	if len(chunks) != 1 || chunks[0] != "   " {
		t.Errorf("expected single whitespace chunk, got %q", chunks)
	}
}

// randomDocument builds text with a mix of short, long and blank paragraphs.
func randomDocument(r *rand.Rand) string {
	n := r.Intn(40) + 1
	paragraphs := make([]string, n)
	for i := range paragraphs {
		switch r.Intn(6) {
		case 0:
			paragraphs[i] = ""
		case 1:
			paragraphs[i] = strings.TrimSpace(strings.Repeat("long ", r.Intn(120)+1))
		default:
			words := make([]string, r.Intn(25)+1)
			for j := range words {
				words[j] = "w"
			}
			paragraphs[i] = strings.Join(words, " ")
		}
	}
	return strings.Join(paragraphs, ParagraphSeparator)
}

func TestSplit_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	targets := []int{1, 5, 20, 50, 800}

	for iter := 0; iter < 200; iter++ {
		text := randomDocument(r)
		target := targets[iter%len(targets)]
		chunks := Split(text, target)

		// Coverage: reassembly is lossless.
		if got := strings.Join(chunks, ParagraphSeparator); got != text {
			t.Fatalf("iter %d: reassembly mismatch", iter)
		}

		for i, c := range chunks {
			if c == "" {
				t.Fatalf("iter %d: chunk %d is empty", iter, i)
			}
			// Soft bound: only single-paragraph-oversized chunks may exceed.
			if WordCount(c) > target {
				nonBlank := 0
				for _, p := range strings.Split(c, ParagraphSeparator) {
					if WordCount(p) > 0 {
						nonBlank++
					}
				}
				if nonBlank != 1 {
					t.Fatalf("iter %d: chunk %d has %d words over target %d across %d paragraphs",
						iter, i, WordCount(c), target, nonBlank)
				}
			}
		}
	}
}

func TestChunker_Split(t *testing.T) {
	c := New(WithTargetWords(2))
	chunks := c.Split("a b\n\nc d")
	if len(chunks) != 2 {
		t.Errorf("expected 2 chunks, got %d", len(chunks))
	}
}
