package source

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/brunobiangulo/outliner/span"
)

// Word documents are flowed, not paged; rendered page breaks recorded by
// the last editor are the only page signal. Vertical flow is synthesized
// from the paragraph sequence.
const (
	docxDefaultSize  = 11.0 // half-point 22, the Word default
	docxLineSpacing  = 1.4
	docxGlyphAdvance = 0.5
	docxPageHeight   = 720.0 // synthetic page reset on breaks
)

// DOCX extracts styled paragraph runs from Word documents. Run
// properties (w:sz half-points, w:b, w:i) carry the font attributes;
// w:lastRenderedPageBreak and explicit page breaks advance the page
// counter.
type DOCX struct {
	// MaxPages caps how many synthetic pages are read. 0 means no cap.
	MaxPages int
}

func (d *DOCX) SupportedFormats() []string { return []string{"docx"} }

func (d *DOCX) Extract(ctx context.Context, path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening DOCX: %w", err)
	}
	defer r.Close()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	idx := zipIndex(&r.Reader)
	data := readZipFile(idx, "word/document.xml")
	if data == nil {
		return nil, fmt.Errorf("word/document.xml not found in DOCX")
	}

	doc := &Document{Meta: coreMetadata(idx)}
	doc.Spans = d.documentSpans(data, doc.Meta.Language)
	return doc, nil
}

type docxDocument struct {
	Body struct {
		Paras []docxPara `xml:"p"`
	} `xml:"body"`
}

type docxPara struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Props *docxRunProps `xml:"rPr"`
	Texts []string      `xml:"t"`
	// Breaks holds explicit breaks inside the run; a "page" type starts a
	// new page.
	Breaks []docxBreak `xml:"br"`
	// LastRenderedPageBreak marks where the last editor's layout engine
	// broke the page.
	PageBreaks []struct{} `xml:"lastRenderedPageBreak"`
}

type docxBreak struct {
	Type string `xml:"type,attr"`
}

type docxRunProps struct {
	Size *struct {
		Val int `xml:"val,attr"`
	} `xml:"sz"`
	Bold *struct {
		Val string `xml:"val,attr"`
	} `xml:"b"`
	Italic *struct {
		Val string `xml:"val,attr"`
	} `xml:"i"`
}

// documentSpans walks the paragraph/run tree, synthesizing geometry from
// the flow and advancing the page counter on rendered or explicit page
// breaks.
func (d *DOCX) documentSpans(data []byte, docLang string) []span.TextSpan {
	var parsed docxDocument
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil
	}

	var spans []span.TextSpan
	page := 1
	y := 0.0

	newPage := func() bool {
		page++
		y = 0
		return d.MaxPages > 0 && page > d.MaxPages
	}

	for _, para := range parsed.Body.Paras {
		lineSize := docxDefaultSize
		x := 0.0
		for _, run := range para.Runs {
			if len(run.PageBreaks) > 0 && y > 0 {
				if newPage() {
					return spans
				}
				x = 0
			}
			for _, br := range run.Breaks {
				if br.Type == "page" {
					if newPage() {
						return spans
					}
					x = 0
				}
			}

			size, bold, italic := docxRunFont(run.Props)
			text := strings.Join(run.Texts, "")
			if strings.TrimSpace(text) == "" {
				continue
			}
			if size > lineSize {
				lineSize = size
			}
			width := float64(len([]rune(text))) * size * docxGlyphAdvance
			spans = append(spans, span.TextSpan{
				Text:     text,
				Page:     page,
				FontSize: size,
				Bold:     bold,
				Italic:   italic,
				Lang:     docLang,
				BBox:     span.BBox{X0: x, Y0: y, X1: x + width, Y1: y + size},
			})
			x += width
		}
		y += lineSize * docxLineSpacing
		if y >= docxPageHeight {
			if newPage() {
				return spans
			}
		}
	}

	return spans
}

// docxRunFont resolves run font attributes. Sizes are half-points;
// boolean properties follow the OOXML presence convention.
func docxRunFont(rp *docxRunProps) (size float64, bold, italic bool) {
	size = docxDefaultSize
	if rp == nil {
		return size, false, false
	}
	if rp.Size != nil && rp.Size.Val > 0 {
		size = float64(rp.Size.Val) / 2
	}
	if rp.Bold != nil {
		bold = ooxmlOn(rp.Bold.Val)
	}
	if rp.Italic != nil {
		italic = ooxmlOn(rp.Italic.Val)
	}
	return size, bold, italic
}
