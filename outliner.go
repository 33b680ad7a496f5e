// Package outliner extracts a title and a hierarchical outline (H1–H3
// with page numbers) from page-structured documents, using only layout
// metadata on text spans: font-size tiers, weight, position, and
// numbering/keyword patterns. Each document is processed independently
// and statelessly; extraction never fails — the worst outcome is an
// empty, well-formed result.
package outliner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/brunobiangulo/outliner/outline"
	"github.com/brunobiangulo/outliner/score"
	"github.com/brunobiangulo/outliner/source"
	"github.com/brunobiangulo/outliner/span"
	"github.com/brunobiangulo/outliner/stats"
)

// Result is the extraction output for one document: the serialized
// contract is exactly {"title": ..., "outline": [...]} with outline
// never null.
type Result struct {
	Title   string          `json:"title"`
	Outline []outline.Entry `json:"outline"`
}

// Engine runs the structure-extraction pipeline. It holds only immutable
// configuration; every extraction is an independent, side-effect-free
// computation, so one Engine is safe for concurrent use across documents.
type Engine struct {
	cfg      Config
	sources  *source.Registry
	patterns *score.PatternTable
	log      *slog.Logger
}

// New builds an Engine. Zero-value config fields fall back to defaults.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.backfill()
	return &Engine{
		cfg:      cfg,
		sources:  source.NewRegistry(cfg.MaxPages),
		patterns: score.DefaultPatterns(),
		log:      slog.Default(),
	}, nil
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Sources exposes the source registry so callers can register custom
// content-extraction collaborators.
func (e *Engine) Sources() *source.Registry { return e.sources }

// RegisterPatterns adds or replaces a language pattern set used for
// keyword-anchored heading detection.
func (e *Engine) RegisterPatterns(set score.LanguagePatternSet) {
	e.patterns.Register(set)
}

// ExtractFile extracts the outline of one document file. The Result is
// always well-formed; a non-nil error is a soft failure meaning the
// document fell back to an empty extraction (unsupported format, source
// failure, timeout, or no usable spans).
func (e *Engine) ExtractFile(ctx context.Context, path string) (*Result, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	src, err := e.sources.Get(format)
	if err != nil {
		return emptyResult(), fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	// The source is a fallible, potentially slow external collaborator;
	// bound it per document so one hang cannot stall a batch.
	if timeout := e.cfg.DocumentTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout.Std())
		defer cancel()
	}

	doc, err := src.Extract(ctx, path)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return emptyResult(), fmt.Errorf("%w: %s", ErrExtractionTimeout, path)
		}
		return emptyResult(), fmt.Errorf("%w: %v", ErrUpstreamExtraction, err)
	}
	if doc == nil || len(doc.Spans) == 0 {
		return emptyResult(), fmt.Errorf("%w: %s", ErrUpstreamExtraction, path)
	}

	return e.ExtractDocument(doc), nil
}

// ExtractDocument runs the pipeline over already-extracted spans. It
// never fails: any internal inconsistency degrades to an empty result.
func (e *Engine) ExtractDocument(doc *source.Document) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("extraction recovered", "panic", r)
			res = emptyResult()
		}
	}()

	if doc == nil {
		return emptyResult()
	}

	normalized := span.Normalize(doc.Spans)
	st := stats.Collect(normalized)

	scorer := score.New(st, score.Config{
		Weights:             e.cfg.Weights,
		AcceptanceThreshold: e.cfg.AcceptanceThreshold,
		HeadingLengthLimit:  e.cfg.HeadingLengthLimit,
		Patterns:            e.patterns,
	})
	candidates := scorer.ScoreAll(applyLanguage(normalized, doc.Meta.Language))

	title, fromCover := outline.ResolveTitle(candidates, st, doc.Meta.Title)
	if fromCover {
		// A cover title is a document-level element, not a section; it
		// leaves the outline and frees its font tier for real headings.
		candidates = outline.PruneTitle(candidates, title)
	}

	entries := outline.Build(candidates, outline.Config{
		PageCount:       st.PageCount,
		RepetitionRatio: e.cfg.HeaderFooterRatio,
	})

	return &Result{Title: title, Outline: entries}
}

// ExtractSpans runs the pipeline over a bare span list with no document
// metadata.
func (e *Engine) ExtractSpans(spans []span.TextSpan) *Result {
	return e.ExtractDocument(&source.Document{Spans: spans})
}

// applyLanguage fills the document-level language tag into spans that
// carry none of their own.
func applyLanguage(spans []span.TextSpan, lang string) []span.TextSpan {
	if lang == "" {
		return spans
	}
	out := make([]span.TextSpan, len(spans))
	for i, sp := range spans {
		if sp.Lang == "" {
			sp.Lang = lang
		}
		out[i] = sp
	}
	return out
}

func emptyResult() *Result {
	return &Result{Outline: []outline.Entry{}}
}
