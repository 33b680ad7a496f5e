package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/brunobiangulo/outliner/span"
)

// defaultPageHeight is US Letter in points, used when a page carries no
// resolvable MediaBox.
const defaultPageHeight = 792

// PDF extracts positioned text spans from PDF files.
type PDF struct {
	// MaxPages caps how many pages are read. 0 means no cap.
	MaxPages int
}

func (p *PDF) SupportedFormats() []string { return []string{"pdf"} }

func (p *PDF) Extract(ctx context.Context, path string) (doc *Document, err error) {
	// The underlying reader panics on some malformed files; degrade to an
	// error so one bad document cannot abort a batch.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("reading PDF %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	doc = &Document{Meta: Metadata{Title: pdfInfoTitle(reader)}}

	total := reader.NumPage()
	if p.MaxPages > 0 && total > p.MaxPages {
		total = p.MaxPages
	}

	for i := 1; i <= total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		height := pageHeight(page)
		for _, t := range page.Content().Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			// PDF coordinates grow upward from the bottom-left corner;
			// t.Y is the baseline. Flip into the top-down convention.
			top := height - t.Y - t.FontSize
			doc.Spans = append(doc.Spans, span.TextSpan{
				Text:     t.S,
				Page:     i,
				FontSize: t.FontSize,
				FontName: t.Font,
				Bold:     boldFontName(t.Font),
				Italic:   italicFontName(t.Font),
				BBox: span.BBox{
					X0: t.X,
					Y0: top,
					X1: t.X + t.W,
					Y1: top + t.FontSize,
				},
			})
		}
	}

	return doc, nil
}

// pageHeight resolves the page's MediaBox height, walking up the page
// tree for inherited entries.
func pageHeight(page pdf.Page) float64 {
	v := page.V
	for depth := 0; depth < 16 && !v.IsNull(); depth++ {
		if mb := v.Key("MediaBox"); !mb.IsNull() {
			h := mb.Index(3).Float64() - mb.Index(1).Float64()
			if h > 0 {
				return h
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageHeight
}

// pdfInfoTitle reads the trailer Info dictionary's Title, if any.
func pdfInfoTitle(r *pdf.Reader) string {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	return strings.TrimSpace(info.Key("Title").Text())
}

// Font naming conventions carry the weight and slant: "Helvetica-Bold",
// "Arial Black", "TimesNewRoman,BoldItalic".
var boldMarkers = []string{"bold", "black", "heavy", "semibold", "demibold"}

func boldFontName(name string) bool {
	lower := strings.ToLower(name)
	for _, m := range boldMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func italicFontName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")
}
