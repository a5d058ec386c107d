package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scottidler/ytx"
)

func sampleTranscript() *ytx.Transcript {
	return &ytx.Transcript{
		VideoID:  "dQw4w9WgXcQ",
		Title:    "A Video",
		Language: "en",
		Source:   ytx.SourceCaption,
		Segments: []ytx.Segment{
			{Text: "Hello", Start: 0, Duration: 1.5},
			{Text: "World", Start: 1.5, Duration: 2},
		},
	}
}

func TestSaveThenLoad(t *testing.T) {
	c := New(t.TempDir())

	if err := c.Save(sampleTranscript()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok := c.Load("dQw4w9WgXcQ", "en")
	if !ok {
		t.Fatal("Load() miss after Save()")
	}
	if got.Title != "A Video" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Source != ytx.SourceCaption {
		t.Errorf("Source = %q", got.Source)
	}
	if len(got.Segments) != 2 || got.Segments[1].Start != 1.5 {
		t.Errorf("Segments = %+v", got.Segments)
	}
}

func TestLoad_MissingEntry(t *testing.T) {
	c := New(t.TempDir())
	if _, ok := c.Load("dQw4w9WgXcQ", "en"); ok {
		t.Error("Load() hit on an empty cache")
	}
}

func TestLoad_KeyedByActualLanguage(t *testing.T) {
	c := New(t.TempDir())

	transcript := sampleTranscript()
	transcript.Language = "es"
	if err := c.Save(transcript); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// The entry lives under the language the transcript actually came in.
	if _, ok := c.Load("dQw4w9WgXcQ", "en"); ok {
		t.Error("Load(en) hit for a transcript saved as es")
	}
	if _, ok := c.Load("dQw4w9WgXcQ", "es"); !ok {
		t.Error("Load(es) miss for a transcript saved as es")
	}
}

func TestLoad_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	path := filepath.Join(dir, "dQw4w9WgXcQ-en.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Load("dQw4w9WgXcQ", "en"); ok {
		t.Error("Load() hit on a corrupt entry")
	}
}

func TestLoad_MismatchedVideoIDIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	other := sampleTranscript()
	other.VideoID = "AAAAAAAAAAA"
	if err := c.Save(other); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(
		filepath.Join(dir, "AAAAAAAAAAA-en.json"),
		filepath.Join(dir, "dQw4w9WgXcQ-en.json"),
	); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Load("dQw4w9WgXcQ", "en"); ok {
		t.Error("Load() hit on an entry whose video_id does not match")
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "transcripts")
	c := New(dir)

	if err := c.Save(sampleTranscript()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "dQw4w9WgXcQ-en.json")); err != nil {
		t.Errorf("cache file not created: %v", err)
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	if err := c.Save(sampleTranscript()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, ".ytx-*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}
