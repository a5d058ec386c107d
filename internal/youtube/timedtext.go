package youtube

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strconv"

	"github.com/scottidler/ytx"
)

// parseTimedText decodes a timed-text XML document into ordered segments.
// Each <text start="S" dur="D"> element yields one segment. The XML decoder
// unescapes entities once; html.UnescapeString handles the doubly-escaped
// entities seen in the wild (e.g. &amp;#39;). Cues whose decoded text is
// empty are dropped, as are self-closing elements and elements missing
// start or dur attributes.
func parseTimedText(data []byte) ([]ytx.Segment, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	segments := []ytx.Segment{}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse timed-text xml: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "text" {
			continue
		}

		var startSec, dur float64
		var haveStart, haveDur bool
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "start":
				if v, err := strconv.ParseFloat(attr.Value, 64); err == nil {
					startSec, haveStart = v, true
				}
			case "dur":
				if v, err := strconv.ParseFloat(attr.Value, 64); err == nil {
					dur, haveDur = v, true
				}
			}
		}

		raw, err := collectText(dec)
		if err != nil {
			return nil, fmt.Errorf("parse timed-text xml: %w", err)
		}

		if !haveStart || !haveDur {
			continue
		}

		text := html.UnescapeString(raw)
		if text == "" {
			continue
		}

		segments = append(segments, ytx.Segment{
			Text:     text,
			Start:    startSec,
			Duration: dur,
		})
	}

	return segments, nil
}

// collectText consumes tokens until the current element closes, returning
// the concatenated character data.
func collectText(dec *xml.Decoder) (string, error) {
	var buf bytes.Buffer
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			buf.Write(t)
		}
	}
	return buf.String(), nil
}
