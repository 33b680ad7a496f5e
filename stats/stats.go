// Package stats computes per-document layout baselines. Absolute font
// sizes mean nothing across documents, so every downstream decision is
// made relative to the statistics collected here.
package stats

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/brunobiangulo/outliner/span"
)

// Sizes are bucketed to 0.1pt before counting so float jitter from the
// extractor does not split one logical size into several.
func bucket(size float64) float64 {
	return math.Round(size*10) / 10
}

// extent is the observed vertical span of text on one page.
type extent struct {
	top, bottom float64
}

// Document holds the layout baselines for one document. Computed once by
// Collect and read-only afterward.
type Document struct {
	// BodyFontSize is the presumed paragraph-text size: the size with the
	// largest character-count weight, ties broken toward the smaller size.
	BodyFontSize float64

	// Percentiles are the char-weighted font-size percentiles
	// (p25, p50, p75, p90), ascending.
	Percentiles []float64

	// Tiers are the distinct font sizes strictly greater than
	// BodyFontSize, descending. Tier 0 is the strongest H1 signal.
	Tiers []float64

	// PageCount is the highest page number seen.
	PageCount int

	// AvgLeftMargin is the mean left edge of all spans.
	AvgLeftMargin float64

	pages map[int]extent
}

// Collect builds the statistics for one normalized span list. It is
// deterministic for identical input ordering and never fails: a document
// with zero spans yields zeroed statistics and an empty tier set.
func Collect(spans []span.TextSpan) *Document {
	d := &Document{pages: make(map[int]extent)}
	if len(spans) == 0 {
		return d
	}

	weights := make(map[float64]int)
	var leftSum float64
	for _, sp := range spans {
		chars := utf8.RuneCountInString(sp.Text)
		if chars == 0 {
			continue
		}
		weights[bucket(sp.FontSize)] += chars
		leftSum += sp.BBox.X0

		if sp.Page > d.PageCount {
			d.PageCount = sp.Page
		}
		ext, ok := d.pages[sp.Page]
		if !ok {
			ext = extent{top: sp.BBox.Y0, bottom: sp.BBox.Y1}
		} else {
			ext.top = math.Min(ext.top, sp.BBox.Y0)
			ext.bottom = math.Max(ext.bottom, sp.BBox.Y1)
		}
		d.pages[sp.Page] = ext
	}
	d.AvgLeftMargin = leftSum / float64(len(spans))

	sizes := make([]float64, 0, len(weights))
	total := 0
	for s, w := range weights {
		sizes = append(sizes, s)
		total += w
	}
	sort.Float64s(sizes)

	best := -1
	for _, s := range sizes { // ascending, so ties keep the smaller size
		if weights[s] > best {
			best = weights[s]
			d.BodyFontSize = s
		}
	}

	d.Percentiles = weightedPercentiles(sizes, weights, total)

	for i := len(sizes) - 1; i >= 0; i-- {
		if sizes[i] > d.BodyFontSize {
			d.Tiers = append(d.Tiers, sizes[i])
		}
	}

	return d
}

// Flat reports whether the document has no font sizes above the body
// baseline. Size-based scoring carries zero weight for flat documents.
func (d *Document) Flat() bool { return len(d.Tiers) == 0 }

// TierRank returns the 0-based rank of size in the descending tier
// ordering, or -1 when the size is at or below the body baseline.
func (d *Document) TierRank(size float64) int {
	b := bucket(size)
	for i, t := range d.Tiers {
		if b >= t-0.05 {
			return i
		}
	}
	return -1
}

// PageExtent returns the observed top and bottom Y of text on a page. The
// second return is false when the page produced no spans.
func (d *Document) PageExtent(page int) (top, bottom float64, ok bool) {
	ext, ok := d.pages[page]
	return ext.top, ext.bottom, ok
}

// weightedPercentiles computes p25/p50/p75/p90 over the char-weighted size
// distribution.
func weightedPercentiles(sizes []float64, weights map[float64]int, total int) []float64 {
	if total == 0 {
		return nil
	}
	targets := []float64{0.25, 0.50, 0.75, 0.90}
	out := make([]float64, 0, len(targets))
	for _, p := range targets {
		threshold := p * float64(total)
		cum := 0
		for _, s := range sizes {
			cum += weights[s]
			if float64(cum) >= threshold {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
