package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clipsearch/clipsearch/config"
)

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"PT15S", 15},
		{"PT4M13S", 253},
		{"PT1H2M3S", 3723},
		{"P1DT1S", 86401},
		{"PT0S", 0},
		{"", 0},
		{"garbage", 0},
	}
	for _, c := range cases {
		if got := parseISODuration(c.in); got != c.want {
			t.Errorf("parseISODuration(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestTranscriptParsesTimedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "yt-1" {
			t.Errorf("unexpected video id %q", r.URL.Query().Get("v"))
		}
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.5" dur="3.2">We start by cleaning the tip.</text>
  <text start="3.7" dur="2.9">Good soldering takes a steady hand.</text>
  <text start="6.6" dur="1.0">   </text>
  <text start="7.6" dur="2.0">Don&#39;t rush it.</text>
</transcript>`))
	}))
	defer srv.Close()

	c := NewClient(config.YouTubeConfig{APIKey: "k"})
	c.timedText = srv.URL

	segments, err := c.Transcript(context.Background(), "yt-1")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segments), segments)
	}
	if segments[0].Text != "We start by cleaning the tip." || segments[0].StartTime != 0.5 {
		t.Fatalf("unexpected first segment: %+v", segments[0])
	}
	if segments[2].Text != "Don't rush it." {
		t.Fatalf("entity not unescaped: %+v", segments[2])
	}
}

func TestTranscriptEmptyTrack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<transcript></transcript>`))
	}))
	defer srv.Close()

	c := NewClient(config.YouTubeConfig{APIKey: "k"})
	c.timedText = srv.URL

	segments, err := c.Transcript(context.Background(), "yt-1")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if segments != nil {
		t.Fatalf("expected nil segments, got %+v", segments)
	}
}
