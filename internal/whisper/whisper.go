// Package whisper transcribes a video's audio when captions are not
// available: it downloads an audio render with yt-dlp, splits it with ffmpeg
// if it exceeds the upload ceiling, and sends it to the Whisper API.
package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/scottidler/ytx"
	"github.com/scottidler/ytx/internal/httpx"
)

const (
	// maxUploadBytes is the transcription API's payload ceiling (25 MiB).
	maxUploadBytes = 25 * 1024 * 1024

	credentialEnv = "OPENAI_API_KEY"

	defaultBaseURL = "https://api.openai.com"
	transcribePath = "/v1/audio/transcriptions"
	defaultYtdlp   = "yt-dlp"
	defaultFfmpeg  = "ffmpeg"
)

// Client transcribes video audio through the Whisper API.
type Client struct {
	httpClient *httpx.Client
	baseURL    string
	apiKey     string
	ytdlpPath  string
	ffmpegPath string
	tempDir    string
	runner     CommandRunner
	logger     *slog.Logger
}

// Option customizes the Whisper client.
type Option func(*Client)

// WithBaseURL overrides the transcription API base (used by tests).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

// WithAPIKey sets the credential explicitly instead of reading the
// environment.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithCommandRunner sets a custom command runner (used by tests).
func WithCommandRunner(runner CommandRunner) Option {
	return func(c *Client) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// WithTempDir sets the directory for audio downloads and chunk files.
func WithTempDir(dir string) Option {
	return func(c *Client) {
		if dir != "" {
			c.tempDir = dir
		}
	}
}

// WithLogger sets the logger used for transcription progress.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new Whisper client.
func NewClient(httpClient *httpx.Client, opts ...Option) *Client {
	c := &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		ytdlpPath:  defaultYtdlp,
		ffmpegPath: defaultFfmpeg,
		tempDir:    os.TempDir(),
		runner:     execRunner{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transcribe downloads the video's audio and transcribes it, chunking when
// the file exceeds the upload ceiling. The returned transcript's Language is
// the requested one; Whisper is told which language to expect.
func (c *Client) Transcribe(ctx context.Context, videoID, lang string, model Model) (*ytx.Transcript, error) {
	apiKey := c.apiKey
	if apiKey == "" {
		apiKey = os.Getenv(credentialEnv)
	}
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	audioPath, err := c.downloadAudio(ctx, videoID)
	if err != nil {
		return nil, err
	}

	title := c.videoTitle(ctx, videoID)

	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, &DownloadError{VideoID: videoID, Err: err}
	}
	c.logger.Debug("audio file ready", "path", audioPath, "size", info.Size())

	var segments []ytx.Segment
	if info.Size() > maxUploadBytes {
		segments, err = c.transcribeChunked(ctx, apiKey, videoID, audioPath, model, lang, info.Size())
	} else {
		segments, err = c.transcribeFile(ctx, apiKey, audioPath, model, lang)
	}
	if err != nil {
		return nil, err
	}

	return &ytx.Transcript{
		VideoID:  videoID,
		Title:    title,
		Language: lang,
		Source:   ytx.SourceWhisper,
		Segments: segments,
	}, nil
}

// transcribeFile uploads a single audio file and decodes the response.
func (c *Client) transcribeFile(ctx context.Context, apiKey, audioPath string, model Model, lang string) ([]ytx.Segment, error) {
	fileBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(fileBytes); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}

	fields := map[string]string{
		"model":           string(model),
		"language":        lang,
		"response_format": model.ResponseFormat(),
	}
	if model.SupportsSegmentTimestamps() {
		fields["timestamp_granularities[]"] = "segment"
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("build upload form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}

	c.logger.Debug("uploading audio for transcription", "path", audioPath, "model", model)

	headers := map[string]string{
		"Authorization": "Bearer " + apiKey,
		"Content-Type":  form.FormDataContentType(),
	}
	resp, err := c.httpClient.Do(ctx, http.MethodPost, c.baseURL+transcribePath, &body, headers)
	if err != nil {
		var httpErr *httpx.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &APIError{StatusCode: httpErr.StatusCode, Body: string(httpErr.Body)}
		}
		return nil, err
	}

	return parseTranscription(resp.Body)
}
