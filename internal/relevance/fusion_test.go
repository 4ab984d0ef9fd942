package relevance

import (
	"math"
	"testing"
)

func group(videoID string, matches ...SearchMatch) VideoResultGroup {
	return VideoResultGroup{VideoID: videoID, YouTubeVideoID: "yt-" + videoID, Matches: matches}
}

func TestFuseResultsScenario(t *testing.T) {
	t.Parallel()
	keyword := []VideoResultGroup{group("v1"), group("v2")}
	semantic := []VideoResultGroup{group("v2"), group("v3")}

	got := FuseResults(keyword, semantic, 50)
	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(got))
	}
	wantOrder := []string{"v2", "v1", "v3"}
	wantScore := []float64{0.75, 0.5, 0.25}
	for i := range got {
		if got[i].VideoID != wantOrder[i] {
			t.Fatalf("position %d: got %s, want %s", i, got[i].VideoID, wantOrder[i])
		}
		if math.Abs(got[i].HybridScore-wantScore[i]) > 1e-9 {
			t.Fatalf("%s: score %f, want %f", got[i].VideoID, got[i].HybridScore, wantScore[i])
		}
	}
	v2 := got[0]
	if v2.KeywordRank == nil || *v2.KeywordRank != 2 {
		t.Fatalf("v2 keyword rank = %v", v2.KeywordRank)
	}
	if v2.SemanticRank == nil || *v2.SemanticRank != 1 {
		t.Fatalf("v2 semantic rank = %v", v2.SemanticRank)
	}
	if got[1].SemanticRank != nil {
		t.Fatalf("keyword-only v1 should have no semantic rank")
	}
	if got[2].KeywordRank != nil {
		t.Fatalf("semantic-only v3 should have no keyword rank")
	}
}

func TestFuseResultsScoreBounds(t *testing.T) {
	t.Parallel()
	keyword := []VideoResultGroup{group("a"), group("b"), group("c")}
	semantic := []VideoResultGroup{group("a"), group("d")}

	got := FuseResults(keyword, semantic, 10)
	for _, g := range got {
		if g.HybridScore < 0 || g.HybridScore > 1 {
			t.Fatalf("%s: score %f out of [0,1]", g.VideoID, g.HybridScore)
		}
	}
	if got[0].VideoID != "a" || math.Abs(got[0].HybridScore-1.0) > 1e-9 {
		t.Fatalf("top-of-both video should score 1.0, got %s %f", got[0].VideoID, got[0].HybridScore)
	}
}

func TestFuseResultsConsensusBoost(t *testing.T) {
	t.Parallel()
	keyword := []VideoResultGroup{group("x"), group("y")}
	semantic := []VideoResultGroup{group("z"), group("y")}

	keywordOnly := FuseResults(keyword, nil, 10)
	fused := FuseResults(keyword, semantic, 10)

	var single, both float64
	for _, g := range keywordOnly {
		if g.VideoID == "y" {
			single = g.HybridScore
		}
	}
	for _, g := range fused {
		if g.VideoID == "y" {
			both = g.HybridScore
		}
	}
	if both <= single {
		t.Fatalf("consensus should boost score: %f <= %f", both, single)
	}
}

func TestFuseResultsTruncation(t *testing.T) {
	t.Parallel()
	keyword := []VideoResultGroup{group("a"), group("b"), group("c")}
	semantic := []VideoResultGroup{group("c"), group("d"), group("e")}

	if got := FuseResults(keyword, semantic, 2); len(got) != 2 {
		t.Fatalf("limit 2: got %d", len(got))
	}
	// 5 unique videos across both lists.
	if got := FuseResults(keyword, semantic, 50); len(got) != 5 {
		t.Fatalf("expected all unique videos, got %d", len(got))
	}
}

func TestFuseResultsMatchUnion(t *testing.T) {
	t.Parallel()
	keyword := []VideoResultGroup{group("v",
		SearchMatch{TranscriptID: "t1", Text: "keyword side"},
		SearchMatch{TranscriptID: "t2", Text: "keyword only"},
	)}
	semantic := []VideoResultGroup{group("v",
		SearchMatch{TranscriptID: "t1", Text: "semantic side"},
		SearchMatch{TranscriptID: "t3", Text: "semantic only"},
	)}

	got := FuseResults(keyword, semantic, 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 group, got %d", len(got))
	}
	matches := got[0].Matches
	if len(matches) != 3 {
		t.Fatalf("expected union of 3 matches, got %d", len(matches))
	}
	if matches[0].Text != "keyword side" {
		t.Fatalf("keyword match should win for shared transcript, got %q", matches[0].Text)
	}
	if matches[2].TranscriptID != "t3" {
		t.Fatalf("semantic-only match should append last, got %q", matches[2].TranscriptID)
	}
}

func TestFuseResultsEmptyInputs(t *testing.T) {
	t.Parallel()
	if got := FuseResults(nil, nil, 10); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
	got := FuseResults(nil, []VideoResultGroup{group("only")}, 10)
	if len(got) != 1 || math.Abs(got[0].HybridScore-0.5) > 1e-9 {
		t.Fatalf("semantic-only top should score 0.5, got %#v", got)
	}
}
