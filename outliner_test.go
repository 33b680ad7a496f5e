package outliner

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brunobiangulo/outliner/score"
	"github.com/brunobiangulo/outliner/span"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func sp(text string, page int, size, y0 float64) span.TextSpan {
	return span.TextSpan{
		Text:     text,
		Page:     page,
		FontSize: size,
		BBox:     span.BBox{X0: 72, Y0: y0, X1: 400, Y1: y0 + size},
	}
}

func boldSp(text string, page int, size, y0 float64) span.TextSpan {
	s := sp(text, page, size, y0)
	s.Bold = true
	return s
}

func TestEngine_ReportScenario(t *testing.T) {
	// A cover title on page 1 and one numbered section on page 2. The
	// cover becomes the title and leaves the outline; the section takes
	// over the top heading level.
	e := newTestEngine(t)
	spans := []span.TextSpan{
		boldSp("Annual Report 2024", 1, 24, 50),
		sp(strings.Repeat("a", 150), 1, 10, 300),
		sp(strings.Repeat("b", 150), 1, 10, 690),
		boldSp("1. Introduction", 2, 16, 60),
		sp(strings.Repeat("c", 150), 2, 10, 150),
	}

	res := e.ExtractSpans(spans)
	if res.Title != "Annual Report 2024" {
		t.Errorf("Title = %q, want %q", res.Title, "Annual Report 2024")
	}
	if len(res.Outline) != 1 {
		t.Fatalf("Outline = %+v, want exactly one entry", res.Outline)
	}
	got := res.Outline[0]
	if got.Level != score.H1 || got.Text != "1. Introduction" || got.Page != 2 {
		t.Errorf("entry = %+v, want {H1 1. Introduction 2}", got)
	}
}

func TestEngine_FlatDocumentScenario(t *testing.T) {
	// Every span shares one font size. The keyword-matching span is the
	// only heading; it is below the top quartile of page 1, so the title
	// falls back to the first accepted heading.
	e := newTestEngine(t)
	spans := []span.TextSpan{
		sp("plain opening line without structure", 1, 12, 40),
		sp("more unremarkable body text here", 1, 12, 120),
		boldSp("Chapter 1", 1, 12, 300),
		sp("the narrative resumes below the heading", 1, 12, 400),
		sp("and continues to the bottom of the page", 1, 12, 660),
	}

	res := e.ExtractSpans(spans)
	if len(res.Outline) != 1 {
		t.Fatalf("Outline = %+v, want exactly one entry", res.Outline)
	}
	got := res.Outline[0]
	if got.Level != score.H1 || got.Text != "Chapter 1" || got.Page != 1 {
		t.Errorf("entry = %+v, want {H1 Chapter 1 1}", got)
	}
	if res.Title != "Chapter 1" {
		t.Errorf("Title = %q, want first-heading fallback %q", res.Title, "Chapter 1")
	}
}

func TestEngine_NumberingOverridePromotesOneLevel(t *testing.T) {
	// "1.1.1 Details" sits at the second font tier (H2 by size); its
	// three-level numbering deepens it exactly one step to H3.
	e := newTestEngine(t)
	spans := []span.TextSpan{
		sp(strings.Repeat("a", 150), 1, 10, 100),
		sp(strings.Repeat("b", 150), 1, 10, 600),
		boldSp("2. Methods", 2, 24, 60),
		sp(strings.Repeat("c", 150), 2, 10, 200),
		boldSp("1.1.1 Details", 3, 16, 60),
		sp(strings.Repeat("d", 150), 3, 10, 200),
	}

	res := e.ExtractSpans(spans)
	if len(res.Outline) != 2 {
		t.Fatalf("Outline = %+v, want two entries", res.Outline)
	}
	if res.Outline[0].Level != score.H1 || res.Outline[0].Text != "2. Methods" {
		t.Errorf("first entry = %+v, want H1 2. Methods", res.Outline[0])
	}
	if res.Outline[1].Level != score.H3 || res.Outline[1].Text != "1.1.1 Details" {
		t.Errorf("second entry = %+v, want H3 1.1.1 Details", res.Outline[1])
	}
}

func TestEngine_RunningHeaderNeverInOutline(t *testing.T) {
	// The same line tops every page of a six-page document. Whatever
	// else happens, it must not appear in the outline.
	e := newTestEngine(t)
	var spans []span.TextSpan
	for page := 1; page <= 6; page++ {
		spans = append(spans,
			boldSp("Confidential Draft", page, 14, 30),
			sp(strings.Repeat("x", 120), page, 10, 200),
			sp(strings.Repeat("y", 120), page, 10, 600),
		)
	}

	res := e.ExtractSpans(spans)
	for _, entry := range res.Outline {
		if entry.Text == "Confidential Draft" {
			t.Fatalf("running header leaked into the outline: %+v", entry)
		}
	}
}

func TestEngine_Determinism(t *testing.T) {
	e := newTestEngine(t)
	spans := []span.TextSpan{
		boldSp("Annual Report 2024", 1, 24, 50),
		sp(strings.Repeat("a", 150), 1, 10, 300),
		boldSp("1. Introduction", 2, 16, 60),
		boldSp("1.1 Scope", 2, 14, 200),
		sp(strings.Repeat("b", 150), 2, 10, 400),
	}

	first, err := json.Marshal(e.ExtractSpans(spans))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(e.ExtractSpans(spans))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(first) != string(again) {
			t.Fatalf("output differs across runs:\n%s\n%s", first, again)
		}
	}
}

func TestEngine_EmptyInput(t *testing.T) {
	e := newTestEngine(t)

	res := e.ExtractSpans(nil)
	if res.Title != "" {
		t.Errorf("Title = %q, want empty", res.Title)
	}
	if res.Outline == nil || len(res.Outline) != 0 {
		t.Errorf("Outline = %#v, want non-nil empty slice", res.Outline)
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"title":"","outline":[]}` {
		t.Errorf("serialized = %s, want the empty contract", data)
	}
}

func TestEngine_ExtractDocumentNil(t *testing.T) {
	e := newTestEngine(t)
	res := e.ExtractDocument(nil)
	if res.Title != "" || len(res.Outline) != 0 {
		t.Errorf("nil document: %+v, want empty result", res)
	}
}

func TestEngine_ExtractFile_UnsupportedFormat(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.ExtractFile(context.Background(), "report.xyz")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
	if res == nil || res.Outline == nil {
		t.Fatal("fallback result must still be well-formed")
	}
}

func TestEngine_ExtractFile_MissingFile(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	if !errors.Is(err, ErrUpstreamExtraction) {
		t.Errorf("err = %v, want ErrUpstreamExtraction", err)
	}
	if res == nil || res.Outline == nil {
		t.Fatal("fallback result must still be well-formed")
	}
}

func TestEngine_ExtractFile_TextDocument(t *testing.T) {
	e := newTestEngine(t)

	path := filepath.Join(t.TempDir(), "notes.txt")
	content := "OVERVIEW\nplain line one\nplain line two\n\fDETAILS\nmore plain text\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := e.ExtractFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if res.Title != "OVERVIEW" {
		t.Errorf("Title = %q, want %q", res.Title, "OVERVIEW")
	}
	if len(res.Outline) != 1 || res.Outline[0].Text != "DETAILS" || res.Outline[0].Page != 2 {
		t.Errorf("Outline = %+v, want one DETAILS entry on page 2", res.Outline)
	}
}

func TestEngine_New_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AcceptanceThreshold = 1.5
	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}
