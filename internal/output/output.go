// Package output renders transcripts in the supported formats.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/scottidler/ytx"
)

// Format identifies an output rendering.
type Format string

const (
	// FormatText renders one segment per line, no timestamps.
	FormatText Format = "text"
	// FormatJSON renders the whole transcript as indented JSON.
	FormatJSON Format = "json"
	// FormatSRT renders numbered SubRip subtitle blocks.
	FormatSRT Format = "srt"
)

// ParseFormat resolves a format name. An empty name means text.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatSRT:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, json, srt)", name)
	}
}

// Render serializes the transcript in the given format.
func Render(transcript *ytx.Transcript, format Format) (string, error) {
	switch format {
	case FormatText:
		return renderText(transcript), nil
	case FormatJSON:
		return renderJSON(transcript)
	case FormatSRT:
		return renderSRT(transcript), nil
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}

func renderText(transcript *ytx.Transcript) string {
	lines := make([]string, len(transcript.Segments))
	for i, segment := range transcript.Segments {
		lines[i] = segment.Text
	}
	return strings.Join(lines, "\n")
}

func renderJSON(transcript *ytx.Transcript) (string, error) {
	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render json: %w", err)
	}
	return string(data) + "\n", nil
}

// renderSRT produces SubRip blocks: a 1-based index, a start --> end
// timestamp line with millisecond precision, the text, and a blank line.
func renderSRT(transcript *ytx.Transcript) string {
	var b strings.Builder
	for i, segment := range transcript.Segments {
		start := time.Duration(segment.Start * float64(time.Second))
		end := time.Duration((segment.Start + segment.Duration) * float64(time.Second))
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(start), srtTimestamp(end), segment.Text)
	}
	return b.String()
}

func srtTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
