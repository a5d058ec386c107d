package youtube

import "regexp"

// The InnerTube API key is embedded in the watch page's inline script text.
// The primary token is tried first, then the older assignment form.
var (
	apiKeyRegex         = regexp.MustCompile(`"INNERTUBE_API_KEY"\s*:\s*"([^"]+)"`)
	apiKeyFallbackRegex = regexp.MustCompile(`innertubeApiKey\s*[=:]\s*"([^"]+)"`)
)

// extractAPIKey pulls the InnerTube API key out of the watch page HTML.
func extractAPIKey(html string) (string, error) {
	if m := apiKeyRegex.FindStringSubmatch(html); m != nil {
		return m[1], nil
	}
	if m := apiKeyFallbackRegex.FindStringSubmatch(html); m != nil {
		return m[1], nil
	}
	return "", ErrKeyNotFound
}

// playerRequest is the JSON body sent to the InnerTube player endpoint.
type playerRequest struct {
	Context playerContext `json:"context"`
	VideoID string        `json:"videoId"`
}

// playerContext identifies the client making the request. The service
// varies its response shape by client signature.
type playerContext struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	HL            string `json:"hl"`
	GL            string `json:"gl"`
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

// playerResponse is the subset of the player-info response we consume.
// Field names must match the live service exactly.
type playerResponse struct {
	Captions     *captionsData `json:"captions,omitempty"`
	VideoDetails *videoDetails `json:"videoDetails,omitempty"`
}

type videoDetails struct {
	Title string `json:"title,omitempty"`
}

type captionsData struct {
	PlayerCaptionsTracklistRenderer *captionTracklistRenderer `json:"playerCaptionsTracklistRenderer,omitempty"`
}

type captionTracklistRenderer struct {
	CaptionTracks []CaptionTrack `json:"captionTracks,omitempty"`
}

// CaptionTrack is a platform-hosted caption stream, identified by language
// code and fetch URL. It lives only for the duration of a single retrieval.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

// tracks returns the caption track list, which may be absent at any level
// of the response.
func (r *playerResponse) tracks() []CaptionTrack {
	if r.Captions == nil || r.Captions.PlayerCaptionsTracklistRenderer == nil {
		return nil
	}
	return r.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}

// title returns the video title, or "" when absent.
func (r *playerResponse) title() string {
	if r.VideoDetails == nil {
		return ""
	}
	return r.VideoDetails.Title
}

// selectTrack picks the caption track to fetch: an exact language-code match
// wins, otherwise the first track in API-provided order. Returns false when
// the list is empty.
func selectTrack(tracks []CaptionTrack, lang string) (CaptionTrack, bool) {
	if len(tracks) == 0 {
		return CaptionTrack{}, false
	}
	for _, t := range tracks {
		if t.LanguageCode == lang {
			return t, true
		}
	}
	return tracks[0], true
}
