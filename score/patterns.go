package score

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
)

// numberedPattern matches hierarchical section numbering such as "1 ",
// "1. ", "3.9.1 ", "7.3.1.2) ".
var numberedPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)[.)]?\s+\S`)

// NumberingDepth returns the depth implied by a numbered-section prefix:
// "1." is 1, "1.2" is 2, "3.9.1" is 3. It returns 0 when the text carries
// no numbering.
func NumberingDepth(text string) int {
	m := numberedPattern.FindStringSubmatch(strings.TrimSpace(text))
	if len(m) < 2 {
		return 0
	}
	return strings.Count(m[1], ".") + 1
}

// allCapsLimit is the maximum length for the all-caps heading heuristic.
// Long shouted paragraphs exist; short shouted lines are headings.
const allCapsLimit = 60

// LanguagePatternSet holds the heading-anchor keywords for one language.
// Keywords are matched case-insensitively as prefixes of the span text
// ("Chapter 3", "Anexo A", "第1章").
type LanguagePatternSet struct {
	Tag      language.Tag
	Keywords []string
}

// PatternTable is a pluggable registry of LanguagePatternSets keyed by
// language tag. Lookup uses BCP-47 matching, so "pt-BR" resolves to the
// Portuguese set and unknown tags fall back to the first registered
// language. New scripts are added by registering a set, not by touching
// the scoring code.
type PatternTable struct {
	sets    []LanguagePatternSet
	matcher language.Matcher
}

// NewPatternTable builds a table from the given sets. The first set is the
// fallback for unrecognized tags.
func NewPatternTable(sets ...LanguagePatternSet) *PatternTable {
	t := &PatternTable{sets: sets}
	tags := make([]language.Tag, len(sets))
	for i, s := range sets {
		tags[i] = s.Tag
	}
	t.matcher = language.NewMatcher(tags)
	return t
}

// Register adds or replaces the set for a language.
func (t *PatternTable) Register(set LanguagePatternSet) {
	for i, s := range t.sets {
		if s.Tag == set.Tag {
			t.sets[i] = set
			t.rebuild()
			return
		}
	}
	t.sets = append(t.sets, set)
	t.rebuild()
}

func (t *PatternTable) rebuild() {
	tags := make([]language.Tag, len(t.sets))
	for i, s := range t.sets {
		tags[i] = s.Tag
	}
	t.matcher = language.NewMatcher(tags)
}

// For returns the closest-matching set for a BCP-47 tag. An empty or
// unparsable tag yields the fallback set.
func (t *PatternTable) For(tag string) LanguagePatternSet {
	if len(t.sets) == 0 {
		return LanguagePatternSet{}
	}
	_, idx := language.MatchStrings(t.matcher, tag)
	return t.sets[idx]
}

// Match reports whether text looks like a heading by pattern alone:
// numbered-section prefix, a language keyword anchor, or a short all-caps
// line.
func (t *PatternTable) Match(text, tag string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if NumberingDepth(text) > 0 {
		return true
	}
	if allCapsHeading(text) {
		return true
	}
	lower := strings.ToLower(text)
	for _, kw := range t.For(tag).Keywords {
		if strings.HasPrefix(lower, kw) {
			return true
		}
	}
	return false
}

// allCapsHeading reports whether text is a short fully upper-case line
// with at least one letter. Scripts without case never match here; their
// keyword sets carry the signal instead.
func allCapsHeading(text string) bool {
	if utf8.RuneCountInString(text) > allCapsLimit || utf8.RuneCountInString(text) <= 2 {
		return false
	}
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter && text == strings.ToUpper(text)
}

// DefaultPatterns returns the built-in table. English is the fallback.
// Keywords are lower-case; matching is prefix-based on the lowered text.
func DefaultPatterns() *PatternTable {
	return NewPatternTable(
		LanguagePatternSet{Tag: language.English, Keywords: []string{
			"chapter ", "section ", "part ", "appendix ", "annex ",
			"article ", "introduction", "conclusion", "abstract",
			"references", "acknowledg", "glossary", "index",
		}},
		LanguagePatternSet{Tag: language.Spanish, Keywords: []string{
			"capítulo ", "capitulo ", "sección ", "seccion ", "parte ",
			"anexo ", "apéndice ", "apendice ", "artículo ", "articulo ",
			"introducción", "introduccion", "conclusión", "conclusion",
			"resumen", "referencias", "glosario",
		}},
		LanguagePatternSet{Tag: language.Portuguese, Keywords: []string{
			"capítulo ", "capitulo ", "seção ", "secao ", "parte ",
			"anexo ", "apêndice ", "apendice ", "artigo ",
			"introdução", "introducao", "conclusão", "conclusao",
			"resumo", "referências", "referencias",
		}},
		LanguagePatternSet{Tag: language.French, Keywords: []string{
			"chapitre ", "section ", "partie ", "annexe ", "article ",
			"introduction", "conclusion", "résumé", "références",
		}},
		LanguagePatternSet{Tag: language.German, Keywords: []string{
			"kapitel ", "abschnitt ", "teil ", "anhang ", "artikel ",
			"einleitung", "zusammenfassung", "schlussfolgerung",
			"literaturverzeichnis",
		}},
		LanguagePatternSet{Tag: language.Japanese, Keywords: []string{
			"第", "章", "節", "序論", "結論", "要約", "付録", "目次",
		}},
		LanguagePatternSet{Tag: language.Chinese, Keywords: []string{
			"第", "章", "节", "引言", "结论", "摘要", "附录", "目录",
		}},
		LanguagePatternSet{Tag: language.Arabic, Keywords: []string{
			"الفصل", "القسم", "الجزء", "مقدمة", "خاتمة", "ملخص", "ملحق",
		}},
		LanguagePatternSet{Tag: language.Hindi, Keywords: []string{
			"अध्याय", "खंड", "भाग", "परिचय", "निष्कर्ष", "सारांश", "परिशिष्ट",
		}},
	)
}
