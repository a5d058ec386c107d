// Package ytx retrieves spoken-word transcripts for YouTube videos. It
// prefers the platform's own caption tracks and falls back to Whisper
// transcription of the downloaded audio when captions are unavailable.
package ytx

// Source identifies how a transcript was obtained.
type Source string

const (
	// SourceCaption means the transcript came from a platform caption track.
	SourceCaption Source = "caption"
	// SourceWhisper means the transcript was produced by audio transcription.
	SourceWhisper Source = "whisper"
)

// String returns the source name.
func (s Source) String() string {
	return string(s)
}

// Segment is a single timed piece of transcript text. Text is never empty;
// empty cues are filtered at the decode boundary.
type Segment struct {
	// Text is the decoded segment text.
	Text string `json:"text"`
	// Start is the segment start offset in seconds.
	Start float64 `json:"start"`
	// Duration is the segment length in seconds.
	Duration float64 `json:"duration"`
}

// Transcript is the complete transcript for a single video. Segments keep
// the order they were produced in; source order is authoritative.
type Transcript struct {
	VideoID  string    `json:"video_id"`
	Title    string    `json:"title"`
	Language string    `json:"language"`
	Source   Source    `json:"source"`
	Segments []Segment `json:"segments"`
}
