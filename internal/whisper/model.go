package whisper

import "fmt"

// Model identifies the transcription model used for uploads.
type Model string

// Supported transcription models.
const (
	ModelWhisper1            Model = "whisper-1"
	ModelGPT4oTranscribe     Model = "gpt-4o-transcribe"
	ModelGPT4oMiniTranscribe Model = "gpt-4o-mini-transcribe"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = ModelWhisper1

// ParseModel validates a configured model name.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case ModelWhisper1, ModelGPT4oTranscribe, ModelGPT4oMiniTranscribe:
		return Model(s), nil
	case "":
		return DefaultModel, nil
	}
	return "", fmt.Errorf("unknown whisper model %q", s)
}

// ResponseFormat returns the response_format parameter value for the model.
// whisper-1 supports verbose_json with per-segment timestamps; the newer
// transcribe models only accept plain json.
func (m Model) ResponseFormat() string {
	if m == ModelWhisper1 {
		return "verbose_json"
	}
	return "json"
}

// SupportsSegmentTimestamps reports whether the model accepts the segment
// timestamp granularity option.
func (m Model) SupportsSegmentTimestamps() bool {
	return m == ModelWhisper1
}
