package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/tubebrief/tubebrief-backend/internal/models"
)

const (
	watchURL  = "https://www.youtube.com/watch?v=%s"
	oembedURL = "https://www.youtube.com/oembed?url=%s&format=json"
)

// ErrNoCaptions is returned when a video has no caption tracks.
var ErrNoCaptions = fmt.Errorf("video has no captions")

// Client fetches transcripts and metadata from YouTube
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new transcript client
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// captionTrack is one entry of the player response's caption track list
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

var captionTracksPattern = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

// Fetch retrieves the transcript of a video. It scrapes the caption track
// list from the watch page and downloads the first suitable track, preferring
// manually authored captions over auto-generated ones.
func (c *Client) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	page, err := c.get(ctx, fmt.Sprintf(watchURL, videoID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watch page: %w", err)
	}

	matches := captionTracksPattern.FindSubmatch(page)
	if len(matches) < 2 {
		return nil, ErrNoCaptions
	}

	var tracks []captionTrack
	if err := json.Unmarshal(matches[1], &tracks); err != nil {
		return nil, fmt.Errorf("failed to parse caption track list: %w", err)
	}
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}

	track := pickTrack(tracks)

	body, err := c.get(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch caption track: %w", err)
	}

	lines, err := parseTimedText(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse caption track: %w", err)
	}

	return &Transcript{
		VideoID:  videoID,
		Language: track.LanguageCode,
		Lines:    lines,
	}, nil
}

// FetchMetadata retrieves video metadata via the oEmbed endpoint
func (c *Client) FetchMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	videoURL := url.QueryEscape(fmt.Sprintf(watchURL, videoID))
	body, err := c.get(ctx, fmt.Sprintf(oembedURL, videoURL))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video metadata: %w", err)
	}

	var oembed struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
		AuthorURL  string `json:"author_url"`
	}
	if err := json.Unmarshal(body, &oembed); err != nil {
		return nil, fmt.Errorf("failed to parse video metadata: %w", err)
	}

	return &models.VideoMetadata{
		VideoID:    videoID,
		Title:      oembed.Title,
		AuthorName: oembed.AuthorName,
		AuthorURL:  oembed.AuthorURL,
	}, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return io.ReadAll(resp.Body)
}

// pickTrack prefers a manually authored track; "asr" marks auto-generated ones
func pickTrack(tracks []captionTrack) captionTrack {
	for _, t := range tracks {
		if t.Kind != "asr" {
			return t
		}
	}
	return tracks[0]
}

type timedText struct {
	Texts []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Body  string  `xml:",chardata"`
	} `xml:"text"`
}

// parseTimedText converts the timedtext XML document into transcript lines
// with millisecond offsets.
func parseTimedText(body []byte) ([]Line, error) {
	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Body))
		if text == "" {
			continue
		}
		lines = append(lines, Line{
			Text:     text,
			Offset:   int(t.Start * 1000),
			Duration: int(t.Dur * 1000),
		})
	}
	return lines, nil
}
