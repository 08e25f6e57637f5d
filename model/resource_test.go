package model

import (
	"testing"
)

func TestParseContentHTML(t *testing.T) {
	cases := []string{
		"<h1>Grammar</h1><p>Fill the gaps.</p>",
		"plain text worksheet body",
		"",
		"{not valid json",
	}

	for _, raw := range cases {
		content := ParseContent(raw)
		if content.Kind != ContentKindHTML {
			t.Errorf("ParseContent(%q).Kind = %q, want %q", raw, content.Kind, ContentKindHTML)
		}
		if content.HTML != raw {
			t.Errorf("ParseContent(%q).HTML = %q, want original string", raw, content.HTML)
		}
	}
}

func TestParseContentFileKey(t *testing.T) {
	content := ParseContent("uploads/resources/abc_worksheet.pdf")
	if content.Kind != ContentKindFile {
		t.Fatalf("Kind = %q, want %q", content.Kind, ContentKindFile)
	}
	if content.FileKey != "uploads/resources/abc_worksheet.pdf" {
		t.Errorf("FileKey = %q", content.FileKey)
	}
}

func TestParseContentFileKeyTrimsWhitespace(t *testing.T) {
	content := ParseContent("  uploads/resources/x.pdf\n")
	if content.Kind != ContentKindFile {
		t.Fatalf("Kind = %q, want %q", content.Kind, ContentKindFile)
	}
	if content.FileKey != "uploads/resources/x.pdf" {
		t.Errorf("FileKey = %q", content.FileKey)
	}
}

func TestParseContentPDFWithAudio(t *testing.T) {
	raw, err := EncodePDFWithAudio("uploads/resources/lesson.pdf", []string{
		"uploads/audio/track1.mp3",
		"uploads/audio/track2.mp3",
	})
	if err != nil {
		t.Fatalf("EncodePDFWithAudio: %v", err)
	}

	content := ParseContent(raw)
	if content.Kind != ContentKindPDFWithAudio {
		t.Fatalf("Kind = %q, want %q", content.Kind, ContentKindPDFWithAudio)
	}
	if content.PDF != "uploads/resources/lesson.pdf" {
		t.Errorf("PDF = %q", content.PDF)
	}
	if len(content.Audio) != 2 || content.Audio[0] != "uploads/audio/track1.mp3" {
		t.Errorf("Audio = %v", content.Audio)
	}
}

func TestParseContentJSONWithoutTagIsHTML(t *testing.T) {
	// A JSON object that is not the pdf-with-audio bundle stays raw HTML
	raw := `{"type":"something-else","pdf":"x"}`
	content := ParseContent(raw)
	if content.Kind != ContentKindHTML {
		t.Errorf("Kind = %q, want %q", content.Kind, ContentKindHTML)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusNotStarted, StatusInProgress, StatusCompleted} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "completed", "DONE", "in_progress"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true, want false", s)
		}
	}
}
