package util

import (
	"strings"
	"testing"
)

func TestNameFromURL(t *testing.T) {
	cases := []struct {
		rawURL string
		want   string
	}{
		{"https://cdn.example.com/files/notes.pdf", "notes.pdf"},
		{"https://cdn.example.com/files/notes.pdf?sig=abc&expires=123", "notes.pdf"},
		{"https://cdn.example.com/a/b/c/slides%20final.pptx", "slides final.pptx"},
		{"http://host/archive.tar.gz", "archive.tar.gz"},
		{"plain-name.txt", "plain-name.txt"},
	}
	for _, tc := range cases {
		if got := NameFromURL(tc.rawURL); got != tc.want {
			t.Errorf("NameFromURL(%q) = %q, want %q", tc.rawURL, got, tc.want)
		}
	}
}

func TestValidateMimeType(t *testing.T) {
	pngHeader := "\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 100)

	mime, err := ValidateMimeType(strings.NewReader(pngHeader), []string{"image/"})
	if err != nil {
		t.Fatalf("png rejected: %v (detected %s)", err, mime)
	}
	if !IsImage(mime) {
		t.Errorf("IsImage(%q) = false", mime)
	}

	if _, err := ValidateMimeType(strings.NewReader(pngHeader), []string{"video/"}); err == nil {
		t.Error("png accepted as video")
	}
}

func TestPreconditionFailedError(t *testing.T) {
	err := NewPreconditionFailed("title", "videoUrl")
	if got := err.Error(); got != "missing required fields: title, videoUrl" {
		t.Errorf("Error() = %q", got)
	}

	pf, ok := IsPreconditionFailed(err)
	if !ok || len(pf.Missing) != 2 {
		t.Fatalf("IsPreconditionFailed = %v, %v", pf, ok)
	}
}
