package conversation

import (
	"regexp"
	"strconv"
	"strings"

	"atendimento_backend/platform/textnorm"
)

// FunnelFacts are the structured attributes heuristically extracted from a
// free-text customer message. All fields may be unset; extraction never fails.
type FunnelFacts struct {
	Equipamento string   `json:"equipamento,omitempty"`
	Marca       string   `json:"marca,omitempty"`
	Problema    string   `json:"problema,omitempty"`
	Bocas       int      `json:"bocas,omitempty"`
	// KeywordsFound lists every equipment keyword matched in the text, not
	// just the primary one.
	KeywordsFound []string `json:"keywords_found,omitempty"`
}

// vocabEntry pairs the canonical display form of a keyword with its folded
// matcher form. Matching always runs over folded text.
type vocabEntry struct {
	canonical string
	folded    string
}

func vocab(canonical ...string) []vocabEntry {
	entries := make([]vocabEntry, 0, len(canonical))
	for _, c := range canonical {
		entries = append(entries, vocabEntry{canonical: c, folded: textnorm.Fold(c)})
	}
	return entries
}

// Equipment vocabulary. Entries that are substrings of each other are fine:
// the longest match wins for the singular fact and all matches land in the
// found set.
var equipmentVocab = vocab(
	"fogão industrial",
	"fogão",
	"cooktop",
	"forno de embutir",
	"forno elétrico",
	"forno",
	"micro-ondas",
	"microondas",
	"geladeira",
	"freezer",
	"frigobar",
	"lava-louças",
	"lava louças",
	"máquina de lavar",
	"lavadora",
	"lava e seca",
	"secadora",
	"coifa",
	"depurador",
	"adega",
)

var brandVocab = vocab(
	"brastemp",
	"consul",
	"electrolux",
	"fischer",
	"dako",
	"atlas",
	"esmaltec",
	"continental",
	"mueller",
	"suggar",
	"bosch",
	"general electric",
	"ge",
	"panasonic",
	"lg",
	"samsung",
	"midea",
	"philco",
	"tramontina",
)

// Complaint phrases, multi-word entries matched as whole phrases. First match
// in vocabulary order populates the singular fact.
var problemVocab = vocab(
	"não acende",
	"não liga",
	"não esquenta",
	"não gela",
	"não congela",
	"não centrifuga",
	"não seca",
	"não enche de água",
	"não funciona",
	"vazando água",
	"vazamento de gás",
	"cheiro de gás",
	"chama amarela",
	"fazendo barulho",
	"barulho estranho",
	"desarmando o disjuntor",
	"trinco quebrado",
	"porta não fecha",
)

// Burner/unit counts only count when disambiguated by a unit keyword.
var burnerCountRe = regexp.MustCompile(`(\d+)\s*(bocas?|queimadores?)`)

// GuessFunnelFacts extracts funnel facts from free text. Each extractor runs
// independently over the same folded text; none short-circuits another. The
// worst case is an all-unset result.
func GuessFunnelFacts(text string) FunnelFacts {
	folded := textnorm.Fold(text)
	if folded == "" {
		return FunnelFacts{}
	}

	var facts FunnelFacts

	bestLen := 0
	for _, entry := range equipmentVocab {
		if !textnorm.ContainsPhrase(folded, entry.folded) {
			continue
		}
		facts.KeywordsFound = append(facts.KeywordsFound, entry.canonical)
		if len(entry.folded) > bestLen {
			facts.Equipamento = entry.canonical
			bestLen = len(entry.folded)
		}
	}

	for _, entry := range brandVocab {
		if textnorm.ContainsPhrase(folded, entry.folded) {
			facts.Marca = entry.canonical
			break
		}
	}

	for _, entry := range problemVocab {
		if strings.Contains(folded, entry.folded) {
			facts.Problema = entry.canonical
			break
		}
	}

	if m := burnerCountRe.FindStringSubmatch(folded); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			facts.Bocas = n
		}
	}

	return facts
}
