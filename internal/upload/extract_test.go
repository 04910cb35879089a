package upload

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	text, err := Extract("recipe.txt", strings.NewReader("  flour, water, salt  \n"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "flour, water, salt" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractMarkdown(t *testing.T) {
	text, err := Extract("recipe.MD", strings.NewReader("# Dough\n\n500g flour"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(text, "500g flour") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractPDFKeepsPrintableRuns(t *testing.T) {
	raw := "%PDF-1.4\x00\x01\x02Preheat the oven to 220C\x00\x03\x04ok\x00knead the dough well\x05"
	text, err := Extract("recipe.pdf", strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(text, "Preheat the oven to 220C") {
		t.Fatalf("expected long printable run, got %q", text)
	}
	if !strings.Contains(text, "knead the dough well") {
		t.Fatalf("expected second run, got %q", text)
	}
	if strings.Contains(text, "\x00") {
		t.Fatalf("binary bytes leaked: %q", text)
	}
	// Runs shorter than the minimum are dropped.
	if strings.Contains(strings.ReplaceAll(text, "knead", ""), "ok") {
		t.Fatalf("short run should be dropped: %q", text)
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	for _, name := range []string{"image.png", "archive.zip", "noext"} {
		if _, err := Extract(name, strings.NewReader("data")); !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("Extract(%q): expected ErrUnsupportedType, got %v", name, err)
		}
	}
}

func TestExtractCapsReadSize(t *testing.T) {
	big := strings.Repeat("a", MaxReferenceBytes+1024)
	text, err := Extract("big.txt", strings.NewReader(big))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(text) != MaxReferenceBytes {
		t.Fatalf("expected capped read of %d bytes, got %d", MaxReferenceBytes, len(text))
	}
}
