package relevance

import (
	"strings"
)

// Snippets stop growing once they reach this many characters, after the
// mandatory follow-on sentence has been added.
const snippetTargetChars = 150

// ExtractCompleteSentences recovers full sentences around a matched caption
// segment. Retrieval returns a stitched window of adjacent segments
// (searchContext) plus the single matched segment's raw text; segment
// boundaries rarely line up with sentence boundaries, so displaying the
// segment alone usually shows a fragment. Every failure path falls back to
// returning originalSegment unchanged.
func ExtractCompleteSentences(searchContext, originalSegment string) string {
	if searchContext == "" || searchContext == originalSegment {
		return originalSegment
	}

	pos, ok := locateSegment(searchContext, originalSegment)
	if !ok {
		return originalSegment
	}

	sentences := SegmentSentences(searchContext)
	idx, ok := sentenceAt(sentences, pos)
	if !ok {
		return originalSegment
	}

	// Start with the containing sentence, always take the sentence after
	// it, then keep going only while still under the target length.
	out := sentences[idx]
	added := false
	for i := idx + 1; i < len(sentences); i++ {
		if added && len(out) >= snippetTargetChars {
			break
		}
		out += " " + sentences[i]
		added = true
	}
	return out
}

// locateSegment finds the character offset of segment within context, both
// normalized. Falls back to progressively shorter word prefixes, never
// fewer than three words.
func locateSegment(context, segment string) (int, bool) {
	normCtx := normalize(context)
	normSeg := normalize(segment)
	if normCtx == "" || normSeg == "" {
		return 0, false
	}
	if i := strings.Index(normCtx, normSeg); i >= 0 {
		return i, true
	}
	words := strings.Fields(normSeg)
	start := len(words)
	if start < 3 {
		start = 3
	}
	for n := start; n >= 3; n-- {
		if n > len(words) {
			continue
		}
		prefix := strings.Join(words[:n], " ")
		if i := strings.Index(normCtx, prefix); i >= 0 {
			return i, true
		}
	}
	return 0, false
}

// sentenceAt maps a character offset in the normalized context to the index
// of the sentence containing it. Each sentence accounts for its own length
// plus one for the separator that followed it.
func sentenceAt(sentences []string, pos int) (int, bool) {
	offset := 0
	for i, s := range sentences {
		end := offset + len(normalize(s))
		if pos >= offset && pos <= end {
			return i, true
		}
		offset = end + 1
	}
	return 0, false
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
