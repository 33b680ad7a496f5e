package outline

import (
	"strings"

	"github.com/brunobiangulo/outliner/score"
	"github.com/brunobiangulo/outliner/stats"
)

// titleBand is the fraction of page 1's usable height a candidate must
// start within to qualify as a cover title.
const titleBand = 0.25

// titlePageLimit caps how deep into the document the first-heading
// fallback may reach. A "title" found on page 7 is a section, not a title.
const titlePageLimit = 3

// ResolveTitle selects the document title from the accepted candidates.
// Preference order: the best-scoring page-1 H1 candidate within the top
// quarter of the page; the source-supplied metadata title; the first
// accepted H1 on an early page; otherwise the empty string — a title is
// never fabricated from body text. fromCover reports that the first rule
// fired, meaning the title text is a cover element rather than a section
// heading and should be pruned from the outline.
func ResolveTitle(cands []score.Candidate, st *stats.Document, metaTitle string) (title string, fromCover bool) {
	if t := coverTitle(cands, st); t != "" {
		return t, true
	}
	if t := strings.TrimSpace(metaTitle); t != "" {
		return t, false
	}
	return firstHeadingTitle(cands), false
}

// coverTitle finds the highest-scoring H1 candidate that starts within
// the top quarter of page 1.
func coverTitle(cands []score.Candidate, st *stats.Document) string {
	top, bottom, ok := st.PageExtent(1)
	best := ""
	bestScore := 0.0
	for _, c := range cands {
		if c.Span.Page != 1 || c.Level != score.H1 {
			continue
		}
		if ok && bottom > top {
			frac := (c.Span.BBox.Y0 - top) / (bottom - top)
			if frac > titleBand {
				continue
			}
		}
		if c.Score > bestScore {
			bestScore = c.Score
			best = strings.TrimSpace(c.Span.Text)
		}
	}
	return best
}

// firstHeadingTitle returns the first accepted H1 in reading order,
// restricted to the first few pages.
func firstHeadingTitle(cands []score.Candidate) string {
	best := ""
	bestPage := titlePageLimit + 1
	bestY := 0.0
	for _, c := range cands {
		if c.Level != score.H1 || c.Span.Page > titlePageLimit {
			continue
		}
		if c.Span.Page < bestPage || (c.Span.Page == bestPage && c.Span.BBox.Y0 < bestY) {
			bestPage = c.Span.Page
			bestY = c.Span.BBox.Y0
			best = strings.TrimSpace(c.Span.Text)
		}
	}
	return best
}

// PruneTitle removes the cover title's page-1 occurrences from the
// candidate set. A cover title usually monopolizes the largest font tier;
// when its removal leaves tier 0 empty, the remaining candidates' ranks
// shift up one and their levels are remapped, so the first real section
// tier becomes H1.
func PruneTitle(cands []score.Candidate, title string) []score.Candidate {
	title = strings.TrimSpace(title)
	if title == "" {
		return cands
	}

	kept := make([]score.Candidate, 0, len(cands))
	droppedTop := false
	keptTop := false
	for _, c := range cands {
		if c.Span.Page == 1 && strings.TrimSpace(c.Span.Text) == title {
			if c.SizeRank == 0 {
				droppedTop = true
			}
			continue
		}
		if c.SizeRank == 0 {
			keptTop = true
		}
		kept = append(kept, c)
	}

	if !droppedTop || keptTop {
		return kept
	}
	for i, c := range kept {
		if c.SizeRank > 0 {
			c.SizeRank--
			c.Level = score.LevelFor(c.SizeRank, score.NumberingDepth(c.Span.Text))
			kept[i] = c
		}
	}
	return kept
}
