package relevance

import (
	"regexp"
	"strings"
)

// Sentinel substituted for the period of a protected abbreviation while
// splitting. Not a character sequence that occurs in caption text.
const abbrevSentinel = "\x01"

// Titles and abbreviations whose trailing period must not end a sentence.
var protectedAbbrevs = []string{
	"Mr.", "Mrs.", "Ms.", "Dr.", "Sr.", "Jr.", "St.", "Ave.",
}

var (
	// A single capital letter followed by a period, e.g. the "U." in
	// "U. S. history".
	initialRe = regexp.MustCompile(`\b([A-Z])\.`)

	// One or more terminators followed by whitespace and a capital, or end
	// of string.
	boundaryRe = regexp.MustCompile(`[.!?]+(\s+[A-Z]|$)`)
)

// SegmentSentences splits text into sentences. A fixed allowlist of titles
// and single-initial tokens is protected from being treated as sentence
// boundaries; anything outside the list splits as-is.
func SegmentSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	protected := text
	for _, abbr := range protectedAbbrevs {
		repl := strings.Replace(abbr, ".", abbrevSentinel, 1)
		protected = strings.ReplaceAll(protected, abbr, repl)
	}
	protected = initialRe.ReplaceAllString(protected, "$1"+abbrevSentinel)

	var sentences []string
	start := 0
	for _, loc := range boundaryRe.FindAllStringSubmatchIndex(protected, -1) {
		// The boundary ends where the terminator run ends; the capital that
		// follows belongs to the next sentence.
		end := loc[1]
		if loc[2] >= 0 {
			end = loc[2]
		}
		piece := protected[start:end]
		if s := restore(piece); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}
	if start < len(protected) {
		if s := restore(protected[start:]); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func restore(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, abbrevSentinel, "."))
}
