package conversation

import (
	"fmt"
	"os"

	"atendimento_backend/platform/textnorm"

	"gopkg.in/yaml.v3"
)

// Modality tags returned by the service policy resolver.
const (
	// ModalityOnSite means the technician visits the customer ("domicilio").
	ModalityOnSite = "domicilio"
	// ModalityCollect means the unit is collected for bench diagnosis.
	ModalityCollect = "coleta_diagnostico"
)

// Sub-type tags recognized in customer text.
const (
	subtypeGas       = "gas"
	subtypeElectric  = "eletrico"
	subtypeInduction = "inducao"
)

// PolicyRule is one configured row of the service policy table. An explicit
// row for an equipment+sub-type pair overrides the built-in heuristics.
type PolicyRule struct {
	Equipamento string   `yaml:"equipamento"`
	Subtipo     string   `yaml:"subtipo,omitempty"`
	Modalidades []string `yaml:"modalidades"`
}

// policyFile is the on-disk shape of the policy table.
type policyFile struct {
	Regras []PolicyRule `yaml:"regras"`
}

// LoadPolicyFile reads the YAML policy table. A missing path is not an error:
// the resolver falls back entirely to the built-in heuristics.
func LoadPolicyFile(path string) ([]PolicyRule, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading policy file %s: %w", path, err)
	}
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing policy file %s: %w", path, err)
	}
	return file.Regras, nil
}

// ResolveServiceModality maps free text to the allowed service modalities.
// Precedence, most specific first: an explicit policy row for the detected
// equipment+sub-type pair, then the built-in sub-type heuristics (gas is
// serviced on site, electric and induction go to the bench). Equipment with
// no recognizable sub-type and no disambiguating row resolves to the empty
// set, never to a guessed default. The function is pure and never fails.
func ResolveServiceModality(policies []PolicyRule, text string) []string {
	folded := textnorm.Fold(text)
	if folded == "" {
		return nil
	}

	equipment := GuessFunnelFacts(text).Equipamento
	subtype := detectSubtype(folded)

	if row := matchPolicyRow(policies, equipment, subtype); row != nil {
		out := make([]string, len(row.Modalidades))
		copy(out, row.Modalidades)
		return out
	}

	switch subtype {
	case subtypeGas:
		return []string{ModalityOnSite}
	case subtypeElectric, subtypeInduction:
		return []string{ModalityCollect}
	}
	return nil
}

func detectSubtype(folded string) string {
	switch {
	case textnorm.ContainsPhrase(folded, "gás") || textnorm.ContainsPhrase(folded, "glp"):
		return subtypeGas
	case textnorm.ContainsPhrase(folded, "indução"):
		return subtypeInduction
	case textnorm.ContainsPhrase(folded, "elétrico") || textnorm.ContainsPhrase(folded, "elétrica"):
		return subtypeElectric
	}
	return ""
}

// matchPolicyRow finds the most specific explicit row: equipment+sub-type
// first, then an equipment-only row. Rule fields are folded so configured
// accents do not matter.
func matchPolicyRow(policies []PolicyRule, equipment, subtype string) *PolicyRule {
	if equipment == "" {
		return nil
	}
	foldedEquipment := textnorm.Fold(equipment)

	if subtype != "" {
		for i := range policies {
			if textnorm.Fold(policies[i].Equipamento) == foldedEquipment &&
				textnorm.Fold(policies[i].Subtipo) == subtype {
				return &policies[i]
			}
		}
		// A detected sub-type without a configured row falls through to the
		// built-in heuristic, never to an equipment-only row.
		return nil
	}
	for i := range policies {
		if textnorm.Fold(policies[i].Equipamento) == foldedEquipment && policies[i].Subtipo == "" {
			return &policies[i]
		}
	}
	return nil
}
