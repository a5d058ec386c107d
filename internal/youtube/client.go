// Package youtube fetches caption transcripts through YouTube's private
// InnerTube API: scrape the watch page for the API key, request player info,
// select a caption track, and decode the timed-text XML it points at.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/scottidler/ytx"
	"github.com/scottidler/ytx/internal/httpx"
)

const (
	defaultWatchBase  = "https://www.youtube.com"
	defaultPlayerBase = "https://www.youtube.com"

	playerPath = "/youtubei/v1/player"

	clientName    = "WEB"
	clientVersion = "2.20241126.01.00"

	// The service varies its response shape by client signature, so requests
	// carry a realistic desktop browser User-Agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// Client retrieves caption transcripts via the InnerTube API.
type Client struct {
	httpClient *httpx.Client
	watchBase  string
	playerBase string
	logger     *slog.Logger
}

// ClientOption configures the caption client.
type ClientOption func(*Client)

// WithBaseURL points both the watch page and player endpoint at a different
// host (used by tests).
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.watchBase = base
		c.playerBase = base
	}
}

// WithLogger sets the logger used for protocol progress.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new caption client.
func NewClient(httpClient *httpx.Client, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: httpClient,
		watchBase:  defaultWatchBase,
		playerBase: defaultPlayerBase,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// browserHeaders returns the headers sent with every protocol request.
func browserHeaders() map[string]string {
	return map[string]string{"User-Agent": userAgent}
}

// FetchCaptions retrieves the transcript for videoID from its caption
// tracks, preferring lang. The transcript's Language field records the
// language of the track actually selected, which may differ from lang.
func (c *Client) FetchCaptions(ctx context.Context, videoID, lang string) (*ytx.Transcript, error) {
	watchURL := fmt.Sprintf("%s/watch?v=%s", c.watchBase, videoID)
	c.logger.Debug("fetching watch page", "url", watchURL)

	pageResp, err := c.httpClient.Get(ctx, watchURL, browserHeaders())
	if err != nil {
		return nil, &CaptionError{Step: StepWatchPage, VideoID: videoID, Err: err}
	}

	apiKey, err := extractAPIKey(string(pageResp.Body))
	if err != nil {
		return nil, &CaptionError{Step: StepWatchPage, VideoID: videoID, Err: err}
	}
	c.logger.Debug("extracted innertube api key")

	player, err := c.fetchPlayerInfo(ctx, videoID, lang, apiKey)
	if err != nil {
		return nil, &CaptionError{Step: StepPlayerInfo, VideoID: videoID, Err: err}
	}

	track, ok := selectTrack(player.tracks(), lang)
	if !ok {
		return nil, &CaptionError{Step: StepPlayerInfo, VideoID: videoID, Err: ErrNoCaptions}
	}
	c.logger.Debug("selected caption track", "lang", track.LanguageCode)

	trackResp, err := c.httpClient.Get(ctx, track.BaseURL, browserHeaders())
	if err != nil {
		return nil, &CaptionError{Step: StepTrackFetch, VideoID: videoID, Err: err}
	}

	segments, err := parseTimedText(trackResp.Body)
	if err != nil {
		return nil, &CaptionError{Step: StepDecode, VideoID: videoID, Err: err}
	}

	return &ytx.Transcript{
		VideoID:  videoID,
		Title:    player.title(),
		Language: track.LanguageCode,
		Source:   ytx.SourceCaption,
		Segments: segments,
	}, nil
}

// fetchPlayerInfo calls the InnerTube player endpoint with the key scraped
// from the watch page.
func (c *Client) fetchPlayerInfo(ctx context.Context, videoID, lang, apiKey string) (*playerResponse, error) {
	body, err := json.Marshal(&playerRequest{
		Context: playerContext{
			Client: innertubeClient{
				HL:            lang,
				GL:            "US",
				ClientName:    clientName,
				ClientVersion: clientVersion,
			},
		},
		VideoID: videoID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal player request: %w", err)
	}

	playerURL := fmt.Sprintf("%s%s?key=%s&prettyPrint=false", c.playerBase, playerPath, url.QueryEscape(apiKey))
	headers := browserHeaders()
	headers["Content-Type"] = "application/json"

	resp, err := c.httpClient.Do(ctx, http.MethodPost, playerURL, bytes.NewReader(body), headers)
	if err != nil {
		return nil, fmt.Errorf("player request: %w", err)
	}

	var player playerResponse
	if err := json.Unmarshal(resp.Body, &player); err != nil {
		return nil, fmt.Errorf("unmarshal player response: %w", err)
	}
	return &player, nil
}
