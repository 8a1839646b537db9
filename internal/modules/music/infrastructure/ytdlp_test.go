package infrastructure

import (
	"testing"
	"time"
)

func TestParseYtdlpOutput(t *testing.T) {
	stdout := "abc123\thttps://youtu.be/abc123\tSome Song\thttps://img.example/abc123.jpg\t215\n" +
		"def456\thttps://youtu.be/def456\tAnother Song\tNA\tNA\n" +
		"malformed line without tabs\n" +
		"\n"

	tracks := parseYtdlpOutput(stdout)
	if len(tracks) != 2 {
		t.Fatalf("parsed %d tracks, want 2", len(tracks))
	}

	first := tracks[0]
	if first.ID != "abc123" {
		t.Errorf("ID = %q, want abc123", first.ID)
	}
	if first.StreamLocator != "https://youtu.be/abc123" {
		t.Errorf("StreamLocator = %q", first.StreamLocator)
	}
	if first.Title != "Some Song" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Duration != 215*time.Second {
		t.Errorf("Duration = %v, want 215s", first.Duration)
	}

	second := tracks[1]
	if second.ThumbnailURL != "" {
		t.Errorf("ThumbnailURL = %q, want empty for NA", second.ThumbnailURL)
	}
	if second.Duration != 0 {
		t.Errorf("Duration = %v, want 0 for NA", second.Duration)
	}
}

func TestParseYtdlpOutput_Empty(t *testing.T) {
	if tracks := parseYtdlpOutput(""); tracks != nil {
		t.Errorf("parsed %v from empty output, want nil", tracks)
	}
}

func TestNaEmpty(t *testing.T) {
	if got := naEmpty("NA"); got != "" {
		t.Errorf("naEmpty(NA) = %q, want empty", got)
	}
	if got := naEmpty("value"); got != "value" {
		t.Errorf("naEmpty(value) = %q", got)
	}
}
