package score

import (
	"testing"

	"golang.org/x/text/language"
)

func TestNumberingDepth(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"1. Introduction", 1},
		{"1 Introduction", 1},
		{"10.2 Configuration", 2},
		{"3.9.1 Modelo A: AV Cabezal Standard", 3},
		{"7.3.1.2 Subsection detail", 4},
		{"2) Scope", 1},
		{"  4.4 Indented heading  ", 2},
		{"Introduction", 0},
		{"1.Introduction", 0}, // no space after the number
		{"v2 release notes", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := NumberingDepth(tt.text); got != tt.want {
			t.Errorf("NumberingDepth(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestPatternTable_Multilingual(t *testing.T) {
	p := DefaultPatterns()

	tests := []struct {
		line     string
		expected bool
		lang     string
		reason   string
	}{
		// --- English ---
		{"Chapter 3 - Methods", true, "en", "English chapter prefix"},
		{"Section 1 Overview", true, "en", "English section prefix"},
		{"Appendix B", true, "en", "English appendix prefix"},
		{"Introduction", true, "en", "bare introduction keyword"},

		// --- Spanish ---
		{"Capítulo 4 - Resultados", true, "es", "Spanish capítulo with accent"},
		{"Capitulo 4 - Resultados", true, "es", "Spanish capitulo without accent"},
		{"Anexo A - Diagramas", true, "es", "Spanish anexo"},

		// --- Portuguese, including region subtag resolution ---
		{"Seção 1 - Introdução", true, "pt", "Portuguese seção"},
		{"Capítulo 2 - Metodologia", true, "pt-BR", "pt-BR resolves to the Portuguese set"},
		{"Artigo 3 - Disposições", true, "pt", "Portuguese artigo"},

		// --- French / German ---
		{"Chapitre 1 - Introduction", true, "fr", "French chapitre"},
		{"Annexe C - Références", true, "fr", "French annexe"},
		{"Kapitel 2 - Methoden", true, "de", "German kapitel"},
		{"Anhang A", true, "de", "German anhang"},

		// --- CJK ---
		{"第1章 序論", true, "ja", "Japanese chapter marker"},
		{"第一章 引言", true, "zh", "Chinese chapter marker"},

		// --- Numbered and all-caps, language-agnostic ---
		{"3.9.1 Condiciones Ambientales", true, "es", "numbered section"},
		{"REFERENCES", true, "en", "short all-caps line"},
		{"ANEXOS", true, "es", "short all-caps line, Spanish"},

		// --- Unknown tags fall back to the first registered set ---
		{"Chapter 1 Overview", true, "xx", "unparsable tag uses English fallback"},
		{"Chapter 1 Overview", true, "", "empty tag uses English fallback"},

		// --- Not headings ---
		{"This sentence merely mentions a chapter in passing.", false, "en", "keyword not at start"},
		{"En esta sección explicamos los resultados obtenidos.", false, "es", "body text, keyword not at start"},
		{"AB", false, "en", "too short for the all-caps rule"},
		{"ok", false, "en", "short lowercase"},
		{"", false, "en", "empty"},
	}

	for _, tt := range tests {
		got := p.Match(tt.line, tt.lang)
		if got != tt.expected {
			t.Errorf("[%s] Match(%q) = %v, want %v (%s)",
				tt.lang, tt.line, got, tt.expected, tt.reason)
		}
	}
}

func TestPatternTable_LongAllCapsIsNotHeading(t *testing.T) {
	p := DefaultPatterns()
	line := "THIS PARAGRAPH IS SHOUTED AT CONSIDERABLE LENGTH AND KEEPS GOING WELL PAST ANY PLAUSIBLE HEADING"
	if p.Match(line, "en") {
		t.Error("long all-caps paragraph should not match as a heading")
	}
}

func TestPatternTable_Register(t *testing.T) {
	p := DefaultPatterns()
	p.Register(LanguagePatternSet{
		Tag:      language.Italian,
		Keywords: []string{"capitolo ", "sezione ", "appendice "},
	})

	if !p.Match("Capitolo 2 - Metodi", "it") {
		t.Error("registered Italian keyword should match")
	}

	// Re-registering a language replaces its set.
	p.Register(LanguagePatternSet{Tag: language.Italian, Keywords: []string{"sezione "}})
	if p.Match("Capitolo 2 - Metodi", "it") {
		t.Error("replaced set should no longer match the old keyword")
	}
}

func TestPatternTable_For(t *testing.T) {
	p := DefaultPatterns()

	if got := p.For("pt-BR").Tag; got != language.Portuguese {
		t.Errorf("For(pt-BR).Tag = %v, want Portuguese", got)
	}
	if got := p.For("").Tag; got != language.English {
		t.Errorf("For(\"\").Tag = %v, want English fallback", got)
	}
}
