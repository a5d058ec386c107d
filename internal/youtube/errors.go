package youtube

import (
	"errors"
	"fmt"
)

// Sentinel errors for caption retrieval.
var (
	// ErrKeyNotFound indicates the InnerTube API key could not be located
	// in the watch page. The page content can change between fetches, so
	// callers still spend their retry budget on this.
	ErrKeyNotFound = errors.New("innertube api key not found in watch page")

	// ErrNoCaptions indicates the video has no caption tracks. This is the
	// signal that triggers the Whisper fallback.
	ErrNoCaptions = errors.New("no caption tracks available")
)

// Protocol steps, used to identify where a caption retrieval failed.
const (
	StepWatchPage  = "watch-page"
	StepPlayerInfo = "player-info"
	StepTrackFetch = "track-fetch"
	StepDecode     = "decode"
)

// CaptionError wraps a failure in one step of the caption protocol.
type CaptionError struct {
	// Step is the protocol step that failed.
	Step string
	// VideoID is the video being processed.
	VideoID string
	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the caption error.
func (e *CaptionError) Error() string {
	return fmt.Sprintf("captions (%s) for %s: %v", e.Step, e.VideoID, e.Err)
}

// Unwrap returns the underlying error.
func (e *CaptionError) Unwrap() error {
	return e.Err
}
