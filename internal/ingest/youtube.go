package ingest

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/clipsearch/clipsearch/config"
	"github.com/clipsearch/clipsearch/models"
)

const timedTextURL = "https://video.google.com/timedtext"

// Client talks to the YouTube Data API and the timedtext caption endpoint.
type Client struct {
	apiKey    string
	baseURL   string
	timedText string
	http      *http.Client
}

func NewClient(cfg config.YouTubeConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://www.googleapis.com/youtube/v3"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:    cfg.APIKey,
		baseURL:   base,
		timedText: timedTextURL,
		http:      &http.Client{Timeout: timeout},
	}
}

// ChannelInfo is the subset of channel metadata the importer refreshes.
type ChannelInfo struct {
	Title           string
	Description     string
	Thumbnail       string
	UploadsPlaylist string
}

// VideoInfo is one video as listed from a channel's uploads playlist.
type VideoInfo struct {
	YouTubeID   string
	Title       string
	Thumbnail   string
	PublishedAt time.Time
	Duration    int // seconds
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("youtube api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube api: status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Channel fetches channel metadata and the uploads playlist id.
func (c *Client) Channel(ctx context.Context, youtubeID string) (ChannelInfo, error) {
	var payload struct {
		Items []struct {
			Snippet struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				Thumbnails  struct {
					High struct {
						URL string `json:"url"`
					} `json:"high"`
				} `json:"thumbnails"`
			} `json:"snippet"`
			ContentDetails struct {
				RelatedPlaylists struct {
					Uploads string `json:"uploads"`
				} `json:"relatedPlaylists"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", youtubeID)
	if err := c.get(ctx, "/channels", params, &payload); err != nil {
		return ChannelInfo{}, err
	}
	if len(payload.Items) == 0 {
		return ChannelInfo{}, fmt.Errorf("youtube channel %s not found", youtubeID)
	}
	item := payload.Items[0]
	return ChannelInfo{
		Title:           item.Snippet.Title,
		Description:     item.Snippet.Description,
		Thumbnail:       item.Snippet.Thumbnails.High.URL,
		UploadsPlaylist: item.ContentDetails.RelatedPlaylists.Uploads,
	}, nil
}

// ListVideos pages through a channel's uploads playlist and resolves
// durations in batches of 50.
func (c *Client) ListVideos(ctx context.Context, uploadsPlaylist string) ([]VideoInfo, error) {
	var out []VideoInfo
	pageToken := ""
	for {
		var payload struct {
			NextPageToken string `json:"nextPageToken"`
			Items         []struct {
				Snippet struct {
					Title       string    `json:"title"`
					PublishedAt time.Time `json:"publishedAt"`
					Thumbnails  struct {
						High struct {
							URL string `json:"url"`
						} `json:"high"`
					} `json:"thumbnails"`
					ResourceID struct {
						VideoID string `json:"videoId"`
					} `json:"resourceId"`
				} `json:"snippet"`
			} `json:"items"`
		}
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("playlistId", uploadsPlaylist)
		params.Set("maxResults", "50")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		if err := c.get(ctx, "/playlistItems", params, &payload); err != nil {
			return nil, err
		}
		for _, item := range payload.Items {
			out = append(out, VideoInfo{
				YouTubeID:   item.Snippet.ResourceID.VideoID,
				Title:       item.Snippet.Title,
				Thumbnail:   item.Snippet.Thumbnails.High.URL,
				PublishedAt: item.Snippet.PublishedAt,
			})
		}
		if payload.NextPageToken == "" {
			break
		}
		pageToken = payload.NextPageToken
	}

	for lo := 0; lo < len(out); lo += 50 {
		hi := lo + 50
		if hi > len(out) {
			hi = len(out)
		}
		if err := c.fillDurations(ctx, out[lo:hi]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Client) fillDurations(ctx context.Context, videos []VideoInfo) error {
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.YouTubeID)
	}
	var payload struct {
		Items []struct {
			ID             string `json:"id"`
			ContentDetails struct {
				Duration string `json:"duration"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", strings.Join(ids, ","))
	if err := c.get(ctx, "/videos", params, &payload); err != nil {
		return err
	}
	durations := make(map[string]int, len(payload.Items))
	for _, item := range payload.Items {
		durations[item.ID] = parseISODuration(item.ContentDetails.Duration)
	}
	for i := range videos {
		videos[i].Duration = durations[videos[i].YouTubeID]
	}
	return nil
}

// Transcript fetches a video's caption track from the timedtext endpoint.
// Returns nil (no error) when the video has no captions.
func (c *Client) Transcript(ctx context.Context, youtubeID string) ([]models.TranscriptSegment, error) {
	params := url.Values{}
	params.Set("lang", "en")
	params.Set("v", youtubeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.timedText+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext: status %d", resp.StatusCode)
	}

	var doc struct {
		Texts []struct {
			Start float64 `xml:"start,attr"`
			Dur   float64 `xml:"dur,attr"`
			Body  string  `xml:",chardata"`
		} `xml:"text"`
	}
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("timedtext decode: %w", err)
	}
	segments := make([]models.TranscriptSegment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Body))
		if text == "" {
			continue
		}
		segments = append(segments, models.TranscriptSegment{
			Text:      text,
			StartTime: t.Start,
			Duration:  t.Dur,
		})
	}
	if len(segments) == 0 {
		return nil, nil
	}
	return segments, nil
}

// parseISODuration converts an ISO-8601 duration like PT1H2M3S to seconds.
// Malformed input yields 0.
func parseISODuration(s string) int {
	s = strings.TrimPrefix(s, "P")
	total := 0
	num := ""
	inTime := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'T':
			inTime = true
		default:
			n, err := strconv.Atoi(num)
			num = ""
			if err != nil {
				continue
			}
			switch r {
			case 'D':
				total += n * 86400
			case 'H':
				total += n * 3600
			case 'M':
				if inTime {
					total += n * 60
				}
			case 'S':
				total += n
			}
		}
	}
	return total
}
