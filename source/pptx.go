package source

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/brunobiangulo/outliner/span"
)

// Presentation geometry and typography defaults.
const (
	emuPerPoint      = 12700.0
	pptxDefaultSize  = 18.0 // body placeholder default
	pptxLineSpacing  = 1.2
	pptxGlyphAdvance = 0.5 // crude width estimate per rune, in font sizes
)

// PPTX extracts positioned text runs from presentations. Each slide maps
// to one page; shape offsets give real geometry and run properties give
// font size and weight, so slide titles rank above body placeholders.
type PPTX struct {
	// MaxSlides caps how many slides are read. 0 means no cap.
	MaxSlides int
}

func (p *PPTX) SupportedFormats() []string { return []string{"pptx"} }

func (p *PPTX) Extract(ctx context.Context, path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening PPTX: %w", err)
	}
	defer r.Close()

	idx := zipIndex(&r.Reader)
	doc := &Document{Meta: coreMetadata(idx)}

	nums := make([]int, 0, len(idx))
	for name := range idx {
		if strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml") {
			if n := slideNumber(name); n > 0 {
				nums = append(nums, n)
			}
		}
	}
	sort.Ints(nums)
	if p.MaxSlides > 0 && len(nums) > p.MaxSlides {
		nums = nums[:p.MaxSlides]
	}

	for _, num := range nums {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		data := readZipFile(idx, fmt.Sprintf("ppt/slides/slide%d.xml", num))
		if data == nil {
			continue
		}
		doc.Spans = append(doc.Spans, slideSpans(data, num, doc.Meta.Language)...)
	}

	return doc, nil
}

// Simplified slide XML shapes. Namespaces are ignored; local names are
// unambiguous at this depth.
type pptxSlide struct {
	CSld struct {
		SpTree struct {
			SPs []pptxShape `xml:"sp"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

type pptxShape struct {
	SpPr struct {
		Xfrm struct {
			Off struct {
				X int64 `xml:"x,attr"`
				Y int64 `xml:"y,attr"`
			} `xml:"off"`
		} `xml:"xfrm"`
	} `xml:"spPr"`
	TxBody *pptxTxBody `xml:"txBody"`
}

type pptxTxBody struct {
	Paras []pptxPara `xml:"p"`
}

type pptxPara struct {
	Runs []pptxRun `xml:"r"`
}

type pptxRun struct {
	Props *pptxRunProps `xml:"rPr"`
	Text  string        `xml:"t"`
}

type pptxRunProps struct {
	Size   int    `xml:"sz,attr"` // hundredths of a point
	Bold   string `xml:"b,attr"`
	Italic string `xml:"i,attr"`
	Lang   string `xml:"lang,attr"`
}

// slideSpans converts one slide's shapes into spans. Paragraphs stack
// below the shape offset; run X advances by a crude glyph estimate, which
// is enough for the normalizer's contiguity check.
func slideSpans(data []byte, page int, docLang string) []span.TextSpan {
	var slide pptxSlide
	if err := xml.Unmarshal(data, &slide); err != nil {
		return nil
	}

	var spans []span.TextSpan
	for _, sp := range slide.CSld.SpTree.SPs {
		if sp.TxBody == nil {
			continue
		}
		shapeX := float64(sp.SpPr.Xfrm.Off.X) / emuPerPoint
		y := float64(sp.SpPr.Xfrm.Off.Y) / emuPerPoint

		for _, para := range sp.TxBody.Paras {
			lineSize := pptxDefaultSize
			x := shapeX
			for _, run := range para.Runs {
				text := strings.TrimSpace(run.Text)
				if text == "" {
					continue
				}
				size := pptxDefaultSize
				bold, italic := false, false
				lang := docLang
				if rp := run.Props; rp != nil {
					if rp.Size > 0 {
						size = float64(rp.Size) / 100
					}
					if rp.Bold != "" {
						bold = ooxmlOn(rp.Bold)
					}
					if rp.Italic != "" {
						italic = ooxmlOn(rp.Italic)
					}
					if rp.Lang != "" {
						lang = rp.Lang
					}
				}
				if size > lineSize {
					lineSize = size
				}
				width := float64(len([]rune(run.Text))) * size * pptxGlyphAdvance
				spans = append(spans, span.TextSpan{
					Text:     run.Text,
					Page:     page,
					FontSize: size,
					Bold:     bold,
					Italic:   italic,
					Lang:     lang,
					BBox:     span.BBox{X0: x, Y0: y, X1: x + width, Y1: y + size},
				})
				x += width
			}
			y += lineSize * pptxLineSpacing
		}
	}
	return spans
}

// slideNumber parses the N from "ppt/slides/slideN.xml".
func slideNumber(name string) int {
	name = strings.TrimPrefix(name, "ppt/slides/slide")
	name = strings.TrimSuffix(name, ".xml")
	var num int
	fmt.Sscanf(name, "%d", &num)
	return num
}
