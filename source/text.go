package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/brunobiangulo/outliner/span"
)

// Plain text carries no typography at all: every span shares one font
// size, which exercises the engine's flat-document path where pattern
// and position features carry the whole decision.
const (
	textFontSize     = 12.0
	textLineHeight   = 14.0
	textGlyphAdvance = 7.0
)

// Text extracts spans from plain-text files. Form feeds split pages;
// each line becomes one span at its line position.
type Text struct{}

func (t *Text) SupportedFormats() []string { return []string{"txt"} }

func (t *Text) Extract(ctx context.Context, path string) (*Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}

	doc := &Document{}
	for pi, pageText := range strings.Split(string(data), "\f") {
		page := pi + 1
		for li, line := range strings.Split(pageText, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			y := float64(li) * textLineHeight
			doc.Spans = append(doc.Spans, span.TextSpan{
				Text:     trimmed,
				Page:     page,
				FontSize: textFontSize,
				BBox: span.BBox{
					X0: 0,
					Y0: y,
					X1: float64(len([]rune(trimmed))) * textGlyphAdvance,
					Y1: y + textFontSize,
				},
			})
		}
	}

	return doc, nil
}
