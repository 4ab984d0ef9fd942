package search

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve"

	"github.com/clipsearch/clipsearch/models"
)

// How many neighbouring segments on each side are stitched into the
// search context handed to snippet extraction.
const contextRadius = 2

// segmentDoc is what gets indexed into bleve for one transcript segment.
type segmentDoc struct {
	Text    string `json:"text"`
	VideoID string `json:"video_id"`
}

// videoEntry is the per-video state held by the index: display metadata
// plus the ordered segment list and one vector per segment.
type videoEntry struct {
	video    models.Video
	channel  models.Channel
	segments []models.TranscriptSegment
	vectors  [][]float32 // parallel to segments; nil when not embedded
}

// Index is the in-memory retrieval index over transcript segments: a bleve
// full-text index for the keyword path and per-segment vectors for the
// semantic path. Safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	bleve  bleve.Index
	videos map[string]*videoEntry // video ID -> entry
	segs   map[string]segmentRef  // segment ID -> position
}

type segmentRef struct {
	videoID string
	pos     int
}

// NewIndex creates an empty in-memory index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("bleve index: %w", err)
	}
	return &Index{
		bleve:  idx,
		videos: make(map[string]*videoEntry),
		segs:   make(map[string]segmentRef),
	}, nil
}

// AddVideo indexes a video's transcript. Videos already classified as
// non-quality are skipped entirely: music-only captions never enter the
// index. vectors may be nil (video searchable by keyword only) or must be
// parallel to segments.
func (x *Index) AddVideo(video models.Video, channel models.Channel, segments []models.TranscriptSegment, vectors [][]float32) error {
	if video.IsQuality != nil && !*video.IsQuality {
		return nil
	}
	if vectors != nil && len(vectors) != len(segments) {
		return fmt.Errorf("video %s: %d vectors for %d segments", video.ID, len(vectors), len(segments))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if old, ok := x.videos[video.ID]; ok {
		x.dropLocked(video.ID, old)
	}
	entry := &videoEntry{video: video, channel: channel, segments: segments, vectors: vectors}
	x.videos[video.ID] = entry
	for i, seg := range segments {
		x.segs[seg.ID] = segmentRef{videoID: video.ID, pos: i}
		if err := x.bleve.Index(seg.ID, segmentDoc{Text: seg.Text, VideoID: video.ID}); err != nil {
			return fmt.Errorf("index segment %s: %w", seg.ID, err)
		}
	}
	return nil
}

// RemoveVideo drops a video and its segments from the index.
func (x *Index) RemoveVideo(videoID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if entry, ok := x.videos[videoID]; ok {
		x.dropLocked(videoID, entry)
	}
}

func (x *Index) dropLocked(videoID string, entry *videoEntry) {
	for _, seg := range entry.segments {
		delete(x.segs, seg.ID)
		_ = x.bleve.Delete(seg.ID)
	}
	delete(x.videos, videoID)
}

// VideoCount reports how many videos are currently indexed.
func (x *Index) VideoCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.videos)
}

// stitchContext concatenates a segment with its neighbours into the window
// used for sentence reconstruction.
func stitchContext(segments []models.TranscriptSegment, pos int) string {
	lo := pos - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := pos + contextRadius
	if hi > len(segments)-1 {
		hi = len(segments) - 1
	}
	parts := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		parts = append(parts, strings.TrimSpace(segments[i].Text))
	}
	return strings.Join(parts, " ")
}

// anchorStart walks back from the matched segment to the nearest earlier
// segment that is not a bare non-speech marker, so playback starts where
// speech does rather than mid-jingle.
func anchorStart(segments []models.TranscriptSegment, pos int) float64 {
	for i := pos; i >= 0; i-- {
		if !isNonSpeechMarker(segments[i].Text) {
			return segments[i].StartTime
		}
	}
	return segments[pos].StartTime
}

var nonSpeechMarkers = []string{"music", "applause", "laughter", "cheering"}

// isNonSpeechMarker reports whether a segment is nothing but a bracketed
// caption marker like "[music]".
func isNonSpeechMarker(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if !strings.HasPrefix(t, "[") || !strings.HasSuffix(t, "]") {
		return false
	}
	inner := strings.TrimSpace(t[1 : len(t)-1])
	for _, m := range nonSpeechMarkers {
		if inner == m {
			return true
		}
	}
	return false
}

// orderGroups sorts video IDs by their best per-video score descending and
// materializes result groups.
func orderGroups(byVideo map[string][]scoredMatch, videos map[string]*videoEntry) []groupedVideo {
	out := make([]groupedVideo, 0, len(byVideo))
	for id, matches := range byVideo {
		best := matches[0].score
		for _, m := range matches {
			if m.score > best {
				best = m.score
			}
		}
		out = append(out, groupedVideo{videoID: id, best: best, matches: matches, entry: videos[id]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].best > out[j].best })
	return out
}

type scoredMatch struct {
	ref   segmentRef
	score float64
}

type groupedVideo struct {
	videoID string
	best    float64
	matches []scoredMatch
	entry   *videoEntry
}
