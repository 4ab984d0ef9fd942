package relevance

import (
	"strings"

	"github.com/clipsearch/clipsearch/models"
)

// Filler vocabulary: non-speech caption markers and short interjections.
// Matching is by substring with brackets stripped, so "[music]",
// "(music)" and "music]" all count.
var fillerWords = []string{
	"music", "applause", "laughter", "cheering",
	"oh", "ah", "yeah", "ooh", "hmm", "uh", "um",
}

// IsQualityTranscript reports whether a video's transcript looks like real
// speech rather than music-only or filler captions. The verdict is computed
// over the whole transcript, not per segment, and fails closed on empty
// input.
//
// Thresholds are tuned against indexed production transcripts; changing
// them reclassifies existing videos.
func IsQualityTranscript(segments []models.TranscriptSegment) bool {
	if len(segments) == 0 {
		return false
	}

	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(seg.Text)
	}
	words := strings.Fields(strings.ToLower(b.String()))
	totalWords := len(words)
	if totalWords == 0 {
		return false
	}

	fillerCount := 0
	longUnique := make(map[string]struct{})
	for _, w := range words {
		if isFiller(w) {
			fillerCount++
		}
		if len(w) > 3 {
			longUnique[w] = struct{}{}
		}
	}

	// Denominator is total words on purpose; see DESIGN.md.
	uniqueWordRatio := float64(len(longUnique)) / float64(totalWords)
	if uniqueWordRatio < 0.20 {
		return false
	}

	fillerPercentage := float64(fillerCount) / float64(totalWords)
	fillerThreshold := 0.50
	switch {
	case totalWords < 50:
		fillerThreshold = 0.30
	case totalWords < 100:
		fillerThreshold = 0.40
	}
	return fillerPercentage <= fillerThreshold
}

func isFiller(word string) bool {
	for _, f := range fillerWords {
		if strings.Contains(word, f) {
			return true
		}
	}
	return false
}
