package source

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/brunobiangulo/outliner/span"
)

// Spreadsheet geometry: cells are laid out on a nominal grid so the
// engine's positional heuristics apply (sheet = page, row = line).
const (
	cellWidth   = 64.0
	cellHeight  = 20.0
	defaultSize = 11.0 // Calibri 11, the spreadsheet default
)

// XLSX extracts styled cell text from workbooks. Each sheet maps to one
// page; cell font sizes and weights come from the workbook styles, so
// title rows and section rows rank above the data grid.
type XLSX struct{}

func (x *XLSX) SupportedFormats() []string { return []string{"xlsx"} }

func (x *XLSX) Extract(ctx context.Context, path string) (*Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	doc := &Document{}
	if props, err := f.GetDocProps(); err == nil && props != nil {
		doc.Meta.Title = props.Title
		doc.Meta.Language = props.Language
	}

	for si, sheet := range f.GetSheetList() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		page := si + 1

		for ri, row := range rows {
			for ci, cell := range row {
				if cell == "" {
					continue
				}
				size, bold, italic, fontName := x.cellFont(f, sheet, ci+1, ri+1)
				x0 := float64(ci) * cellWidth
				y0 := float64(ri) * cellHeight
				doc.Spans = append(doc.Spans, span.TextSpan{
					Text:     cell,
					Page:     page,
					FontSize: size,
					FontName: fontName,
					Bold:     bold,
					Italic:   italic,
					BBox: span.BBox{
						X0: x0,
						Y0: y0,
						X1: x0 + cellWidth,
						Y1: y0 + size,
					},
				})
			}
		}
	}

	return doc, nil
}

// cellFont resolves a cell's font attributes from its style, falling back
// to the spreadsheet default.
func (x *XLSX) cellFont(f *excelize.File, sheet string, col, row int) (size float64, bold, italic bool, name string) {
	size = defaultSize

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return size, false, false, ""
	}
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return size, false, false, ""
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil || style.Font == nil {
		return size, false, false, ""
	}

	if style.Font.Size > 0 {
		size = style.Font.Size
	}
	return size, style.Font.Bold, style.Font.Italic, style.Font.Family
}
