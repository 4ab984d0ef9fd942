package relevance

import (
	"reflect"
	"strings"
	"testing"
)

func TestSegmentSentencesBasic(t *testing.T) {
	t.Parallel()
	got := SegmentSentences("First sentence here. Second one follows! Third asks? Yes.")
	want := []string{"First sentence here.", "Second one follows!", "Third asks?", "Yes."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SegmentSentences() = %#v, want %#v", got, want)
	}
}

func TestSegmentSentencesProtectsAbbreviations(t *testing.T) {
	t.Parallel()
	got := SegmentSentences("Dr. Smith went home. He was tired.")
	want := []string{"Dr. Smith went home.", "He was tired."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SegmentSentences() = %#v, want %#v", got, want)
	}
}

func TestSegmentSentencesProtectsInitials(t *testing.T) {
	t.Parallel()
	got := SegmentSentences("We study U. S. history. It is long.")
	want := []string{"We study U. S. history.", "It is long."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SegmentSentences() = %#v, want %#v", got, want)
	}
}

func TestSegmentSentencesNoTerminator(t *testing.T) {
	t.Parallel()
	got := SegmentSentences("  just a fragment with no punctuation  ")
	want := []string{"just a fragment with no punctuation"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SegmentSentences() = %#v, want %#v", got, want)
	}
}

func TestSegmentSentencesEmpty(t *testing.T) {
	t.Parallel()
	if got := SegmentSentences("   "); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}

func TestSegmentSentencesIdempotent(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"One thing happened. Then another! Was it over? It was.",
		"Short answer. Long answer follows here.",
	}
	for _, in := range inputs {
		first := SegmentSentences(in)
		again := SegmentSentences(strings.Join(first, " "))
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("resegmenting %q: %#v != %#v", in, again, first)
		}
	}
}
