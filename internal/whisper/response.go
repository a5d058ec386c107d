package whisper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scottidler/ytx"
)

// transcriptionResponse is the JSON shape returned by the transcription
// API. verbose_json responses carry a segments array; plain json responses
// only carry text.
type transcriptionResponse struct {
	Text     *string           `json:"text"`
	Segments []json.RawMessage `json:"segments"`
}

// transcriptionSegment is one entry of the segments array. Pointer fields
// distinguish absent values; entries missing any required field are skipped.
type transcriptionSegment struct {
	Text  *string  `json:"text"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// parseTranscription decodes a transcription API response into segments.
// A segments array is preferred; entries that fail to parse are silently
// skipped. Without one, the whole text field becomes a single segment at
// offset zero. Neither shape present is a decode error.
func parseTranscription(data []byte) ([]ytx.Segment, error) {
	var resp transcriptionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
	}

	if resp.Segments != nil {
		segments := make([]ytx.Segment, 0, len(resp.Segments))
		for _, raw := range resp.Segments {
			var entry transcriptionSegment
			if err := json.Unmarshal(raw, &entry); err != nil {
				continue
			}
			if entry.Text == nil || entry.Start == nil || entry.End == nil {
				continue
			}
			text := strings.TrimSpace(*entry.Text)
			if text == "" {
				continue
			}
			segments = append(segments, ytx.Segment{
				Text:     text,
				Start:    *entry.Start,
				Duration: *entry.End - *entry.Start,
			})
		}
		return segments, nil
	}

	if resp.Text != nil {
		return []ytx.Segment{{
			Text:     strings.TrimSpace(*resp.Text),
			Start:    0,
			Duration: 0,
		}}, nil
	}

	return nil, ErrUnexpectedFormat
}
