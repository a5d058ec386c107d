// Package pipeline orchestrates transcript acquisition: captions first,
// Whisper transcription as the fallback, with retries around each path.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/scottidler/ytx"
	"github.com/scottidler/ytx/internal/retry"
	"github.com/scottidler/ytx/internal/whisper"
)

// CaptionFetcher pulls a transcript from published caption tracks.
type CaptionFetcher interface {
	FetchCaptions(ctx context.Context, videoID, lang string) (*ytx.Transcript, error)
}

// AudioTranscriber produces a transcript from the video's audio.
type AudioTranscriber interface {
	Transcribe(ctx context.Context, videoID, lang string, model whisper.Model) (*ytx.Transcript, error)
}

// Options selects the acquisition strategy for a single video.
type Options struct {
	// Lang is the preferred transcript language code.
	Lang string
	// Model is the transcription model for the Whisper path.
	Model whisper.Model
	// WhisperOnly skips the caption path entirely.
	WhisperOnly bool
	// NoFallback disables the Whisper path; caption failure is final.
	NoFallback bool
}

// Pipeline runs the caption-first, Whisper-fallback acquisition flow.
type Pipeline struct {
	captions CaptionFetcher
	audio    AudioTranscriber
	retryCfg retry.Config
	logger   *slog.Logger
}

// Option customizes the pipeline.
type Option func(*Pipeline)

// WithRetryConfig overrides the per-path retry budget (used by tests).
func WithRetryConfig(cfg retry.Config) Option {
	return func(p *Pipeline) {
		p.retryCfg = cfg
	}
}

// WithLogger sets the logger used for acquisition progress.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a pipeline over the given caption and audio sources.
func New(captions CaptionFetcher, audio AudioTranscriber, opts ...Option) *Pipeline {
	p := &Pipeline{
		captions: captions,
		audio:    audio,
		retryCfg: retry.DefaultConfig(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run acquires a transcript for one video. The caption path runs first
// unless WhisperOnly is set; every caption error is retried. The Whisper
// path runs when captions fail, unless NoFallback is set. Both paths
// exhausted yields an AcquisitionError carrying each path's last error.
func (p *Pipeline) Run(ctx context.Context, videoID string, opts Options) (*ytx.Transcript, error) {
	var captionErr error

	if !opts.WhisperOnly {
		var transcript *ytx.Transcript
		captionErr = retry.Do(ctx, p.retryCfg, nil, func(ctx context.Context) error {
			var err error
			transcript, err = p.captions.FetchCaptions(ctx, videoID, opts.Lang)
			return err
		})
		if captionErr == nil {
			return transcript, nil
		}
		p.logger.Info("caption fetch failed", "video_id", videoID, "error", captionErr)

		if opts.NoFallback {
			return nil, &AcquisitionError{VideoID: videoID, CaptionErr: captionErr}
		}
	}

	var transcript *ytx.Transcript
	whisperErr := retry.Do(ctx, p.retryCfg, whisperRetryable, func(ctx context.Context) error {
		var err error
		transcript, err = p.audio.Transcribe(ctx, videoID, opts.Lang, opts.Model)
		return err
	})
	if whisperErr == nil {
		return transcript, nil
	}
	p.logger.Info("whisper transcription failed", "video_id", videoID, "error", whisperErr)

	return nil, &AcquisitionError{VideoID: videoID, CaptionErr: captionErr, WhisperErr: whisperErr}
}

// whisperRetryable reports whether a Whisper-path error is worth another
// attempt. Configuration problems, missing tools, and chunked uploads that
// already discarded partial work are permanent.
func whisperRetryable(err error) bool {
	if errors.Is(err, whisper.ErrMissingCredential) ||
		errors.Is(err, whisper.ErrYtdlpNotInstalled) ||
		errors.Is(err, whisper.ErrFfmpegNotInstalled) {
		return false
	}

	var downloadErr *whisper.DownloadError
	var chunkErr *whisper.ChunkError
	if errors.As(err, &downloadErr) || errors.As(err, &chunkErr) {
		return false
	}

	return true
}

// AcquisitionError reports that every enabled acquisition path failed for a
// video. CaptionErr is nil in whisper-only mode; WhisperErr is nil when the
// fallback was disabled.
type AcquisitionError struct {
	VideoID    string
	CaptionErr error
	WhisperErr error
}

// Error returns a string representation of the acquisition error.
func (e *AcquisitionError) Error() string {
	switch {
	case e.CaptionErr != nil && e.WhisperErr != nil:
		return fmt.Sprintf("no transcript for %s: captions: %v; whisper: %v", e.VideoID, e.CaptionErr, e.WhisperErr)
	case e.WhisperErr != nil:
		return fmt.Sprintf("no transcript for %s: whisper: %v", e.VideoID, e.WhisperErr)
	default:
		return fmt.Sprintf("no transcript for %s: captions: %v", e.VideoID, e.CaptionErr)
	}
}

// Unwrap exposes the per-path errors to errors.Is and errors.As.
func (e *AcquisitionError) Unwrap() []error {
	var errs []error
	if e.CaptionErr != nil {
		errs = append(errs, e.CaptionErr)
	}
	if e.WhisperErr != nil {
		errs = append(errs, e.WhisperErr)
	}
	return errs
}
