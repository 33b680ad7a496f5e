package span

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Merge tolerances, expressed as multiples of the span font size.
const (
	lineTolerance = 0.3  // max Y0 difference for two spans on the same line
	wordGap       = 0.5  // max horizontal gap to treat fragments as one run
	overlapSlack  = 1.0  // allowed horizontal overlap (extractors often overshoot widths)
	sizeEpsilon   = 0.11 // font sizes within this are considered equal
)

// Normalize cleans a raw span list for one document: it trims and collapses
// whitespace, drops empty / punctuation-only / malformed spans, sorts into
// reading order (page, top-to-bottom, left-to-right), and merges fragments
// that the upstream extractor split mid-word or mid-line. The operation is
// idempotent and an empty input yields an empty output.
func Normalize(spans []TextSpan) []TextSpan {
	cleaned := make([]TextSpan, 0, len(spans))
	for _, sp := range spans {
		sp.Text = CleanText(sp.Text)
		if sp.Text == "" || punctuationOnly(sp.Text) {
			continue
		}
		if malformed(sp) {
			continue
		}
		cleaned = append(cleaned, sp)
	}

	sort.SliceStable(cleaned, func(i, j int) bool {
		a, b := cleaned[i], cleaned[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		return a.BBox.X0 < b.BBox.X0
	})

	return mergeFragments(cleaned)
}

// CleanText trims leading/trailing whitespace and collapses internal runs
// of whitespace to a single space.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// punctuationOnly reports whether text consists entirely of punctuation,
// symbols, and list bullets — artifacts, not content.
func punctuationOnly(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// malformed reports whether a span carries unusable layout metadata:
// non-positive or non-finite font size, page below 1, or NaN/Inf
// coordinates. Such spans are dropped silently.
func malformed(sp TextSpan) bool {
	if sp.Page < 1 {
		return true
	}
	if !(sp.FontSize > 0) || math.IsInf(sp.FontSize, 0) {
		return true
	}
	return !sp.BBox.valid()
}

// mergeFragments joins horizontally contiguous spans on the same line that
// share font attributes. Extractors frequently emit one span per word or
// even per glyph run; headings in particular arrive shredded.
func mergeFragments(spans []TextSpan) []TextSpan {
	if len(spans) == 0 {
		return spans
	}

	out := make([]TextSpan, 0, len(spans))
	cur := spans[0]
	for _, next := range spans[1:] {
		if duplicate(cur, next) {
			continue
		}
		if mergeable(cur, next) {
			cur.Text = cur.Text + " " + next.Text
			cur.BBox = cur.BBox.Union(next.BBox)
			continue
		}
		out = append(out, cur)
		cur = next
	}
	return append(out, cur)
}

// duplicate reports whether next repeats cur at the same position — some
// extractors emit doubled spans for faux-bold rendering.
func duplicate(cur, next TextSpan) bool {
	return cur.Page == next.Page &&
		cur.Text == next.Text &&
		math.Abs(cur.BBox.X0-next.BBox.X0) < 1 &&
		math.Abs(cur.BBox.Y0-next.BBox.Y0) < 1
}

// mergeable reports whether next continues cur on the same line with the
// same font attributes and no meaningful horizontal gap.
func mergeable(cur, next TextSpan) bool {
	if cur.Page != next.Page {
		return false
	}
	if math.Abs(cur.FontSize-next.FontSize) > sizeEpsilon {
		return false
	}
	if cur.Bold != next.Bold || cur.Italic != next.Italic || cur.FontName != next.FontName {
		return false
	}
	if math.Abs(cur.BBox.Y0-next.BBox.Y0) > lineTolerance*cur.FontSize {
		return false
	}
	gap := next.BBox.X0 - cur.BBox.X1
	return gap <= wordGap*cur.FontSize && gap >= -overlapSlack*cur.FontSize
}
