// Package span defines the text span model consumed by the extraction
// pipeline and the normalization pass that cleans raw extractor output.
package span

import "math"

// BBox is an axis-aligned bounding box in page points. The origin is the
// top-left corner of the page and Y grows downward; sources that extract
// from bottom-up coordinate systems (PDF) convert before emitting spans.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Union returns the smallest box covering both b and other.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// valid reports whether every coordinate is a finite number.
func (b BBox) valid() bool {
	for _, v := range [...]float64{b.X0, b.Y0, b.X1, b.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// TextSpan is a contiguous run of text with uniform font and position
// metadata, as produced by a content-extraction source. Spans are treated
// as immutable once created; the pipeline owns them for the duration of
// one document's processing.
type TextSpan struct {
	Text     string  `json:"text"`
	Page     int     `json:"page"`
	FontSize float64 `json:"font_size"`
	FontName string  `json:"font_name,omitempty"`
	Bold     bool    `json:"bold,omitempty"`
	Italic   bool    `json:"italic,omitempty"`
	BBox     BBox    `json:"bbox"`

	// Lang is an optional BCP-47 language tag assigned by an external
	// classifier. Empty means unknown.
	Lang string `json:"lang,omitempty"`
}
