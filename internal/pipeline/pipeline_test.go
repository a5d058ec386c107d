package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scottidler/ytx"
	"github.com/scottidler/ytx/internal/retry"
	"github.com/scottidler/ytx/internal/whisper"
)

type fakeCaptions struct {
	calls   int
	results []error // error per call; nil means success
}

func (f *fakeCaptions) FetchCaptions(ctx context.Context, videoID, lang string) (*ytx.Transcript, error) {
	idx := f.calls
	f.calls++
	if idx < len(f.results) && f.results[idx] != nil {
		return nil, f.results[idx]
	}
	return &ytx.Transcript{VideoID: videoID, Language: lang, Source: ytx.SourceCaption}, nil
}

type fakeAudio struct {
	calls   int
	results []error
}

func (f *fakeAudio) Transcribe(ctx context.Context, videoID, lang string, model whisper.Model) (*ytx.Transcript, error) {
	idx := f.calls
	f.calls++
	if idx < len(f.results) && f.results[idx] != nil {
		return nil, f.results[idx]
	}
	return &ytx.Transcript{VideoID: videoID, Language: lang, Source: ytx.SourceWhisper}, nil
}

func fastRetry() Option {
	return WithRetryConfig(retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond})
}

func TestRun_CaptionsFirstTry(t *testing.T) {
	captions := &fakeCaptions{}
	audio := &fakeAudio{}
	p := New(captions, audio, fastRetry())

	transcript, err := p.Run(context.Background(), "dQw4w9WgXcQ", Options{Lang: "en"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if transcript.Source != ytx.SourceCaption {
		t.Errorf("Source = %q, want %q", transcript.Source, ytx.SourceCaption)
	}
	if captions.calls != 1 {
		t.Errorf("caption fetch ran %d times, want 1", captions.calls)
	}
	if audio.calls != 0 {
		t.Errorf("whisper ran %d times, want 0", audio.calls)
	}
}

func TestRun_CaptionsRetried(t *testing.T) {
	transient := errors.New("watch page fetch failed")
	captions := &fakeCaptions{results: []error{transient, transient, nil}}
	audio := &fakeAudio{}
	p := New(captions, audio, fastRetry())

	transcript, err := p.Run(context.Background(), "dQw4w9WgXcQ", Options{Lang: "en"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if transcript.Source != ytx.SourceCaption {
		t.Errorf("Source = %q, want %q", transcript.Source, ytx.SourceCaption)
	}
	if captions.calls != 3 {
		t.Errorf("caption fetch ran %d times, want 3", captions.calls)
	}
	if audio.calls != 0 {
		t.Errorf("whisper ran %d times, want 0", audio.calls)
	}
}

func TestRun_FallsBackToWhisper(t *testing.T) {
	noCaptions := errors.New("no caption tracks")
	captions := &fakeCaptions{results: []error{noCaptions, noCaptions, noCaptions}}
	audio := &fakeAudio{}
	p := New(captions, audio, fastRetry())

	transcript, err := p.Run(context.Background(), "dQw4w9WgXcQ", Options{Lang: "en"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if transcript.Source != ytx.SourceWhisper {
		t.Errorf("Source = %q, want %q", transcript.Source, ytx.SourceWhisper)
	}
	if captions.calls != 3 {
		t.Errorf("caption fetch ran %d times before fallback, want 3", captions.calls)
	}
	if audio.calls != 1 {
		t.Errorf("whisper ran %d times, want 1", audio.calls)
	}
}

func TestRun_NoFallback(t *testing.T) {
	noCaptions := errors.New("no caption tracks")
	captions := &fakeCaptions{results: []error{noCaptions, noCaptions, noCaptions}}
	audio := &fakeAudio{}
	p := New(captions, audio, fastRetry())

	_, err := p.Run(context.Background(), "dQw4w9WgXcQ", Options{Lang: "en", NoFallback: true})

	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Fatalf("Run() error = %T (%v), want *AcquisitionError", err, err)
	}
	if !errors.Is(err, noCaptions) {
		t.Errorf("error does not wrap the caption failure: %v", err)
	}
	if acqErr.WhisperErr != nil {
		t.Errorf("WhisperErr = %v, want nil with fallback disabled", acqErr.WhisperErr)
	}
	if audio.calls != 0 {
		t.Errorf("whisper ran %d times with fallback disabled, want 0", audio.calls)
	}
}

func TestRun_WhisperOnly(t *testing.T) {
	captions := &fakeCaptions{}
	audio := &fakeAudio{}
	p := New(captions, audio, fastRetry())

	transcript, err := p.Run(context.Background(), "dQw4w9WgXcQ", Options{Lang: "en", WhisperOnly: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if transcript.Source != ytx.SourceWhisper {
		t.Errorf("Source = %q, want %q", transcript.Source, ytx.SourceWhisper)
	}
	if captions.calls != 0 {
		t.Errorf("caption fetch ran %d times in whisper-only mode, want 0", captions.calls)
	}
}

func TestRun_WhisperPermanentErrorNotRetried(t *testing.T) {
	captions := &fakeCaptions{}
	audio := &fakeAudio{results: []error{whisper.ErrMissingCredential}}
	p := New(captions, audio, fastRetry())

	_, err := p.Run(context.Background(), "dQw4w9WgXcQ", Options{Lang: "en", WhisperOnly: true})
	if !errors.Is(err, whisper.ErrMissingCredential) {
		t.Fatalf("Run() error = %v, want ErrMissingCredential", err)
	}
	if audio.calls != 1 {
		t.Errorf("whisper ran %d times for a permanent error, want 1", audio.calls)
	}
}

func TestRun_WhisperTransientErrorRetried(t *testing.T) {
	first := &whisper.APIError{StatusCode: 503, Body: "overloaded"}
	last := &whisper.APIError{StatusCode: 500, Body: "internal"}
	captions := &fakeCaptions{}
	audio := &fakeAudio{results: []error{first, first, last}}
	p := New(captions, audio, fastRetry())

	_, err := p.Run(context.Background(), "dQw4w9WgXcQ", Options{Lang: "en", WhisperOnly: true})
	if audio.calls != 3 {
		t.Errorf("whisper ran %d times, want 3", audio.calls)
	}

	var apiErr *whisper.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Run() error = %T (%v), want *APIError", err, err)
	}
	if apiErr.StatusCode != 500 {
		t.Errorf("surfaced status = %d, want the last attempt's 500", apiErr.StatusCode)
	}
}

func TestRun_BothPathsFail(t *testing.T) {
	noCaptions := errors.New("no caption tracks")
	downloadErr := &whisper.DownloadError{VideoID: "dQw4w9WgXcQ", Err: errors.New("network down")}
	captions := &fakeCaptions{results: []error{noCaptions, noCaptions, noCaptions}}
	audio := &fakeAudio{results: []error{downloadErr}}
	p := New(captions, audio, fastRetry())

	_, err := p.Run(context.Background(), "dQw4w9WgXcQ", Options{Lang: "en"})

	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Fatalf("Run() error = %T (%v), want *AcquisitionError", err, err)
	}
	if acqErr.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("VideoID = %q", acqErr.VideoID)
	}
	if !errors.Is(err, noCaptions) {
		t.Errorf("error does not wrap the caption failure: %v", err)
	}
	var wrapped *whisper.DownloadError
	if !errors.As(err, &wrapped) {
		t.Errorf("error does not wrap the download failure: %v", err)
	}
	if audio.calls != 1 {
		t.Errorf("whisper ran %d times for a download failure, want 1", audio.calls)
	}
}
