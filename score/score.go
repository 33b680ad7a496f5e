// Package score classifies normalized text spans as heading candidates.
// Every feature is computed relative to the document statistics, weighted,
// and combined into a single heading-likelihood score; spans that clear
// the acceptance threshold become candidates with a tentative H1–H3 level.
package score

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/brunobiangulo/outliner/span"
	"github.com/brunobiangulo/outliner/stats"
)

// Level is the tentative classification of a span.
type Level int

const (
	Body Level = iota
	H1
	H2
	H3
)

var levelNames = [...]string{"BODY", "H1", "H2", "H3"}

func (l Level) String() string {
	if l < Body || l > H3 {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// MarshalJSON encodes the level as its wire name ("H1", "H2", "H3").
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a wire-format level name.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range levelNames {
		if name == s {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("unknown heading level %q", s)
}

// Candidate is a span that cleared the acceptance threshold, annotated
// with its score and tentative level. Candidates are transient: the
// hierarchy builder consumes them and they are discarded.
type Candidate struct {
	Span     span.TextSpan
	Score    float64
	Level    Level
	SizeRank int // position in the descending distinct-size ordering; -1 for body-tier
}

// Weights control the relative contribution of each feature. The length
// penalty is applied multiplicatively on top of the weighted sum.
type Weights struct {
	Size     float64 `json:"size" yaml:"size"`
	Style    float64 `json:"style" yaml:"style"`
	Position float64 `json:"position" yaml:"position"`
	Pattern  float64 `json:"pattern" yaml:"pattern"`
}

// DefaultWeights returns the calibrated feature weights.
func DefaultWeights() Weights {
	return Weights{Size: 0.35, Style: 0.15, Position: 0.15, Pattern: 0.25}
}

// topBand is the fraction of the usable page height that scores a full
// position signal.
const topBand = 0.15

// Config holds the scorer's immutable tuning, passed in at construction
// rather than read from ambient state.
type Config struct {
	Weights             Weights
	AcceptanceThreshold float64
	HeadingLengthLimit  int
	Patterns            *PatternTable
}

// Scorer assigns heading scores and tentative levels. It is a pure
// function of (span, statistics): no side effects, no error conditions —
// unscorable spans classify as Body.
type Scorer struct {
	st  *stats.Document
	cfg Config
}

// New builds a Scorer over one document's statistics. Zero-value config
// fields fall back to defaults.
func New(st *stats.Document, cfg Config) *Scorer {
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if cfg.AcceptanceThreshold == 0 {
		cfg.AcceptanceThreshold = 0.45
	}
	if cfg.HeadingLengthLimit == 0 {
		cfg.HeadingLengthLimit = 150
	}
	if cfg.Patterns == nil {
		cfg.Patterns = DefaultPatterns()
	}
	return &Scorer{st: st, cfg: cfg}
}

// ScoreAll scores every span and returns the accepted candidates in input
// order. Body spans are dropped.
func (s *Scorer) ScoreAll(spans []span.TextSpan) []Candidate {
	var out []Candidate
	for _, sp := range spans {
		if c, ok := s.Score(sp); ok {
			out = append(out, c)
		}
	}
	return out
}

// Score evaluates one span. The boolean reports acceptance; rejected
// spans are body text.
func (s *Scorer) Score(sp span.TextSpan) (Candidate, bool) {
	rank := s.st.TierRank(sp.FontSize)

	w := s.cfg.Weights
	total := w.Size*s.sizeScore(rank) +
		w.Style*styleScore(sp) +
		w.Pattern*s.patternScore(sp) +
		w.Position*s.positionScore(sp)

	// Flat documents carry no size signal at all; redistribute its weight
	// across the remaining features so the acceptance threshold keeps the
	// same meaning.
	if s.st.Flat() {
		if active := w.Style + w.Pattern + w.Position; active > 0 {
			total *= (active + w.Size) / active
		}
	}

	total *= s.lengthPenalty(sp.Text)

	if math.IsNaN(total) || total < s.cfg.AcceptanceThreshold {
		return Candidate{}, false
	}

	return Candidate{
		Span:     sp,
		Score:    total,
		Level:    s.level(sp, rank),
		SizeRank: rank,
	}, true
}

// sizeScore maps the span's tier rank to [0,1]: the largest tier scores
// 1.0, lower tiers decay linearly, body tier and below score 0. Flat
// documents have no tiers, so the size signal degrades to zero weight.
func (s *Scorer) sizeScore(rank int) float64 {
	n := len(s.st.Tiers)
	if rank < 0 || n == 0 {
		return 0
	}
	return float64(n-rank) / float64(n)
}

func styleScore(sp span.TextSpan) float64 {
	switch {
	case sp.Bold:
		return 1.0
	case sp.Italic:
		return 0.5
	default:
		return 0
	}
}

// positionScore rewards spans near the top of their page: 1.0 within the
// top band of the usable page height, decaying linearly to 0 at the
// bottom. Pages with no measurable extent score 0.
func (s *Scorer) positionScore(sp span.TextSpan) float64 {
	top, bottom, ok := s.st.PageExtent(sp.Page)
	if !ok || bottom <= top {
		return 0
	}
	frac := (sp.BBox.Y0 - top) / (bottom - top)
	if frac <= topBand {
		return 1.0
	}
	return math.Max(0, (1-frac)/(1-topBand))
}

func (s *Scorer) patternScore(sp span.TextSpan) float64 {
	if s.cfg.Patterns.Match(sp.Text, sp.Lang) {
		return 1.0
	}
	return 0
}

// lengthPenalty degrades toward 0 as the span length exceeds the heading
// length limit. Long spans are body paragraphs regardless of other
// signals; the penalty reaches 0 at twice the limit.
func (s *Scorer) lengthPenalty(text string) float64 {
	limit := s.cfg.HeadingLengthLimit
	n := utf8.RuneCountInString(text)
	if n <= limit {
		return 1.0
	}
	return math.Max(0, 1-float64(n-limit)/float64(limit))
}

// level assigns the tentative level from the span's tier rank and
// numbering.
func (s *Scorer) level(sp span.TextSpan, rank int) Level {
	return LevelFor(rank, NumberingDepth(sp.Text))
}

// LevelFor maps a font-size tier rank and a numbering depth to a heading
// level. The font tier is the primary signal (tier 0 → H1, tier 1 → H2,
// deeper → H3). Explicit numbering depth may deepen the tier-based level
// by exactly one step when the two disagree by one; larger disagreements
// keep the tier level — numbering is a stronger semantic signal than
// size, but only for near-misses. A rank of -1 means no tier evidence
// (flat document), where numbering decides outright, defaulting to H1.
func LevelFor(rank, depth int) Level {
	if rank < 0 {
		switch {
		case depth >= 3:
			return H3
		case depth == 2:
			return H2
		default:
			return H1
		}
	}

	base := H3
	switch rank {
	case 0:
		base = H1
	case 1:
		base = H2
	}

	if depth > 0 {
		target := Level(depth)
		if target > H3 {
			target = H3
		}
		if target == base+1 {
			return target
		}
	}
	return base
}
