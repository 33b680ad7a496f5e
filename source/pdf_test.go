package source

import (
	"context"
	"testing"
)

func TestBoldFontName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Helvetica-Bold", true},
		{"Arial Black", true},
		{"SegoeUI-Semibold", true},
		{"TimesNewRoman,BoldItalic", true},
		{"Futura Heavy", true},
		{"Helvetica", false},
		{"Times-Roman", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := boldFontName(tt.name); got != tt.want {
			t.Errorf("boldFontName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestItalicFontName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Helvetica-Oblique", true},
		{"Times-Italic", true},
		{"TimesNewRoman,BoldItalic", true},
		{"Helvetica-Bold", false},
		{"Courier", false},
	}
	for _, tt := range tests {
		if got := italicFontName(tt.name); got != tt.want {
			t.Errorf("italicFontName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPDF_ExtractRejectsGarbage(t *testing.T) {
	// A file with a .pdf name but no PDF structure must produce an
	// error, never a panic.
	path := writeTemp(t, "broken.pdf", "this is not a pdf at all")

	if _, err := (&PDF{}).Extract(context.Background(), path); err == nil {
		t.Error("expected an error for a non-PDF file")
	}
}

func TestPDF_ExtractMissingFile(t *testing.T) {
	if _, err := (&PDF{}).Extract(context.Background(), "absent.pdf"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
