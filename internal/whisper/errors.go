package whisper

import (
	"errors"
	"fmt"
)

// Sentinel errors for the transcription path.
var (
	// ErrMissingCredential indicates the transcription API key is not set.
	// This is a configuration error; retrying cannot fix it.
	ErrMissingCredential = errors.New("OPENAI_API_KEY environment variable not set (required for Whisper fallback)")

	// ErrYtdlpNotInstalled indicates the yt-dlp binary was not found.
	ErrYtdlpNotInstalled = errors.New("yt-dlp not found; install it to enable the Whisper fallback:\n  pip install yt-dlp\n  or: brew install yt-dlp")

	// ErrFfmpegNotInstalled indicates the ffmpeg binary was not found.
	ErrFfmpegNotInstalled = errors.New("ffmpeg not found; install it to transcribe audio over the upload size limit")

	// ErrUnexpectedFormat indicates the transcription response had neither
	// a segments array nor a text field.
	ErrUnexpectedFormat = errors.New("unexpected transcription response format")
)

// DownloadError indicates the audio download failed.
type DownloadError struct {
	// VideoID is the video being downloaded.
	VideoID string
	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the download error.
func (e *DownloadError) Error() string {
	return fmt.Sprintf("download audio for %s: %v", e.VideoID, e.Err)
}

// Unwrap returns the underlying error.
func (e *DownloadError) Unwrap() error {
	return e.Err
}

// APIError indicates a non-2xx response from the transcription API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Body is the response body, kept for diagnostics.
	Body string
}

// Error returns a string representation of the API error.
func (e *APIError) Error() string {
	return fmt.Sprintf("transcription api returned %d: %s", e.StatusCode, e.Body)
}

// ChunkError indicates the audio tool failed to split out a chunk. The
// whole operation aborts; segments transcribed so far are discarded.
type ChunkError struct {
	// Index is the zero-based chunk index.
	Index int
	// Offset is the chunk's start offset in seconds.
	Offset float64
	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the chunk error.
func (e *ChunkError) Error() string {
	return fmt.Sprintf("split audio chunk %d at offset %.0fs: %v", e.Index, e.Offset, e.Err)
}

// Unwrap returns the underlying error.
func (e *ChunkError) Unwrap() error {
	return e.Err
}
