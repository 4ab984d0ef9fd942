package relevance

import (
	"strings"
	"testing"
)

func TestExtractCompleteSentencesEmptyContext(t *testing.T) {
	t.Parallel()
	if got := ExtractCompleteSentences("", "hello world"); got != "hello world" {
		t.Fatalf("empty context should pass through, got %q", got)
	}
}

func TestExtractCompleteSentencesIdenticalContext(t *testing.T) {
	t.Parallel()
	if got := ExtractCompleteSentences("same text", "same text"); got != "same text" {
		t.Fatalf("identical context should pass through, got %q", got)
	}
}

func TestExtractCompleteSentencesMandatoryNextSentence(t *testing.T) {
	t.Parallel()
	ctx := "The cat sat down. The dog stood up. The bird flew off."
	got := ExtractCompleteSentences(ctx, "cat sat down")
	want := "The cat sat down. The dog stood up. The bird flew off."
	// Under 150 chars total, so every following sentence is kept; at
	// minimum the sentence after the match must be present.
	if got != want {
		t.Fatalf("ExtractCompleteSentences() = %q, want %q", got, want)
	}
}

func TestExtractCompleteSentencesStopsNearTarget(t *testing.T) {
	t.Parallel()
	first := "This opening sentence talks about the matched subject at length and keeps going for a while to add detail."
	second := "The second sentence also runs long enough to push the running total well past the limit."
	third := "A third sentence that must not appear."
	ctx := first + " " + second + " " + third
	got := ExtractCompleteSentences(ctx, "matched subject at length")
	want := first + " " + second
	if got != want {
		t.Fatalf("ExtractCompleteSentences() = %q, want %q", got, want)
	}
}

func TestExtractCompleteSentencesPrefixFallback(t *testing.T) {
	t.Parallel()
	// The tail of the segment is not in the context; the leading words are.
	ctx := "Intro sentence sets things up. We talk about solar panels today. Closing remark ends it."
	got := ExtractCompleteSentences(ctx, "we talk about solar panels tomorrow maybe")
	if !strings.Contains(got, "We talk about solar panels today.") {
		t.Fatalf("expected containing sentence in %q", got)
	}
	if !strings.Contains(got, "Closing remark ends it.") {
		t.Fatalf("expected mandatory next sentence in %q", got)
	}
}

func TestExtractCompleteSentencesNotFound(t *testing.T) {
	t.Parallel()
	ctx := "Completely unrelated material about weather. More of the same here."
	seg := "quantum chromodynamics lattice computation"
	if got := ExtractCompleteSentences(ctx, seg); got != seg {
		t.Fatalf("unlocatable segment should pass through, got %q", got)
	}
}

func TestExtractCompleteSentencesCaseAndWhitespace(t *testing.T) {
	t.Parallel()
	ctx := "The  Quick   Brown fox jumps. Over the lazy dog it goes."
	got := ExtractCompleteSentences(ctx, "quick brown fox")
	if !strings.Contains(got, "fox jumps.") || !strings.Contains(got, "lazy dog") {
		t.Fatalf("normalization failed, got %q", got)
	}
}
