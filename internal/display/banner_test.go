package display

import (
	"strings"
	"testing"
)

func TestRenderBanner(t *testing.T) {
	out := RenderBanner()

	if !strings.Contains(out, bannerTagline) {
		t.Fatalf("banner missing tagline %q", bannerTagline)
	}
	art := strings.Split(strings.TrimRight(bannerArt, "\n"), "\n")
	for _, line := range art {
		if !strings.Contains(out, strings.TrimRight(line, " ")) {
			t.Fatalf("banner missing art line %q", line)
		}
	}
	// Art lines plus one tagline line, each newline-terminated.
	if got := strings.Count(out, "\n"); got != len(art)+1 {
		t.Fatalf("banner has %d lines, want %d", got, len(art)+1)
	}
}
