package ytx

import (
	"regexp"
	"strings"
)

// Patterns are tried in a fixed priority order; the first match wins.
var (
	bareIDRegex   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	watchURLRegex = regexp.MustCompile(`youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`)
	shortURLRegex = regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`)
	embedURLRegex = regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`)
	shortsRegex   = regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`)
)

// ExtractVideoID extracts the canonical 11-character video identifier from
// user input. It accepts a bare identifier, a watch URL, a youtu.be short
// link, an embed URL, or a shorts URL. The second return value is false when
// no identifier could be extracted; callers must treat that as an input
// error, not something to retry.
func ExtractVideoID(input string) (string, bool) {
	input = strings.TrimSpace(input)

	if bareIDRegex.MatchString(input) {
		return input, true
	}

	for _, re := range []*regexp.Regexp{watchURLRegex, shortURLRegex, embedURLRegex, shortsRegex} {
		if m := re.FindStringSubmatch(input); m != nil {
			return m[1], true
		}
	}

	return "", false
}
