// Package outline sequences accepted heading candidates into the final
// ordered outline and selects the document title.
package outline

import (
	"sort"
	"strings"
	"unicode"

	"github.com/brunobiangulo/outliner/score"
)

// Entry is one detected heading in the final outline.
type Entry struct {
	Level score.Level `json:"level"`
	Text  string      `json:"text"`
	Page  int         `json:"page"`
}

// Config tunes the hierarchy builder.
type Config struct {
	// PageCount is the document's page count, used for running
	// header/footer detection. When 0 it is derived from the candidates.
	PageCount int

	// RepetitionRatio is the fraction of pages above which a repeated
	// (level, text) pair is treated as a running header/footer and
	// suppressed. Default 0.5.
	RepetitionRatio float64
}

// wrapGap is the maximum vertical gap, in multiples of the font size,
// between two candidate lines that form one wrapped heading.
const wrapGap = 0.6

// Build turns accepted candidates into the ordered, leveled outline. It
// never fails: zero candidates yield an empty (non-nil) outline. All
// state is local to one invocation — a single forward pass with small
// look-behind state.
func Build(cands []score.Candidate, cfg Config) []Entry {
	if cfg.RepetitionRatio == 0 {
		cfg.RepetitionRatio = 0.5
	}

	sorted := make([]score.Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Span, sorted[j].Span
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		return a.BBox.Y0 < b.BBox.Y0
	})

	if cfg.PageCount == 0 && len(sorted) > 0 {
		cfg.PageCount = sorted[len(sorted)-1].Span.Page
	}

	merged := mergeWrapped(sorted)
	leveled := softenLevels(merged)
	kept := dropRunningFurniture(leveled, cfg)

	out := make([]Entry, 0, len(kept))
	for _, c := range kept {
		e := Entry{Level: c.Level, Text: strings.TrimSpace(c.Span.Text), Page: c.Span.Page}
		if e.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1] == e {
			continue
		}
		out = append(out, e)
	}
	return out
}

// mergeWrapped joins immediately-adjacent candidates on the same page with
// the same tentative level and contiguous vertical bounds into one
// multi-line heading. Handles headings that wrap across two lines.
func mergeWrapped(cands []score.Candidate) []score.Candidate {
	if len(cands) == 0 {
		return cands
	}
	out := make([]score.Candidate, 0, len(cands))
	cur := cands[0]
	for _, next := range cands[1:] {
		if cur.Span.Page == next.Span.Page &&
			cur.Level == next.Level &&
			next.Span.BBox.Y0-cur.Span.BBox.Y1 <= wrapGap*cur.Span.FontSize {
			cur.Span.Text = cur.Span.Text + " " + next.Span.Text
			cur.Span.BBox = cur.Span.BBox.Union(next.Span.BBox)
			if next.Score > cur.Score {
				cur.Score = next.Score
			}
			continue
		}
		out = append(out, cur)
		cur = next
	}
	return append(out, cur)
}

// softenLevels enforces level monotonicity softly: a document cannot
// plausibly open at H3, so the first H3 seen before any H1 or H2 is
// demoted to H2. The rule fires only on the first occurrence of the gap,
// never retroactively. Opening directly at H2 is allowed.
func softenLevels(cands []score.Candidate) []score.Candidate {
	seenUpper := false
	fired := false
	out := make([]score.Candidate, len(cands))
	for i, c := range cands {
		if c.Level == score.H3 && !seenUpper && !fired {
			c.Level = score.H2
			fired = true
		}
		if c.Level == score.H1 || c.Level == score.H2 {
			seenUpper = true
		}
		out[i] = c
	}
	return out
}

// dropRunningFurniture suppresses repeated header/footer text: a
// (level, normalized text) pair recurring on more than the configured
// ratio of pages — and on at least two distinct pages — is page furniture
// misclassified as structure, and every occurrence is dropped.
func dropRunningFurniture(cands []score.Candidate, cfg Config) []score.Candidate {
	if cfg.PageCount < 1 {
		return cands
	}

	type key struct {
		level score.Level
		text  string
	}
	pages := make(map[key]map[int]struct{})
	for _, c := range cands {
		k := key{c.Level, normalizeHeading(c.Span.Text)}
		if pages[k] == nil {
			pages[k] = make(map[int]struct{})
		}
		pages[k][c.Span.Page] = struct{}{}
	}

	limit := cfg.RepetitionRatio * float64(cfg.PageCount)
	out := make([]score.Candidate, 0, len(cands))
	for _, c := range cands {
		k := key{c.Level, normalizeHeading(c.Span.Text)}
		if n := len(pages[k]); n >= 2 && float64(n) > limit {
			continue
		}
		out = append(out, c)
	}
	return out
}

// normalizeHeading canonicalizes heading text for repetition matching:
// extraction artifacts (private-use glyphs, replacement runes) and
// trailing whitespace must not keep two occurrences of the same running
// header from matching.
func normalizeHeading(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == unicode.ReplacementChar || unicode.In(r, unicode.Co) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
