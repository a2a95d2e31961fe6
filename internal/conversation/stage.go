package conversation

import (
	"strconv"
	"strings"
	"time"
)

// Stage is the explicit funnel stage of a conversation. It is a projection of
// the legacy boolean flags and is recomputed on every state merge.
type Stage string

const (
	// StageCollectingCore gathers equipment, brand and problem description.
	StageCollectingCore Stage = "collecting_core"
	// StageQuoted means a quote was sent and we wait for a reaction.
	StageQuoted Stage = "quoted"
	// StageCollectingPersonal gathers name and address after the quote.
	StageCollectingPersonal Stage = "collecting_personal"
	// StageConfirmingSlot means slot options were offered and we wait for a pick.
	StageConfirmingSlot Stage = "confirming_slot"
)

// DeriveStageFromLegacy maps the legacy flag combination to a stage. Precedence
// is strict: a pending slot choice outranks everything, then the
// personal-data sub-state of a sent quote, then the sent quote itself.
func DeriveStageFromLegacy(f LegacyFlags) Stage {
	switch {
	case f.AguardandoEscolhaHorario:
		return StageConfirmingSlot
	case f.OrcamentoEnviado && f.DadosPessoaisSolicitados:
		return StageCollectingPersonal
	case f.OrcamentoEnviado:
		return StageQuoted
	default:
		return StageCollectingCore
	}
}

// ApplyStageToLegacyFlags is the inverse of DeriveStageFromLegacy: it returns
// the minimal flag combination that derives back to the given stage. Unknown
// stages map to the zero flag set.
func ApplyStageToLegacyFlags(s Stage) LegacyFlags {
	switch s {
	case StageConfirmingSlot:
		return LegacyFlags{AguardandoEscolhaHorario: true}
	case StageCollectingPersonal:
		return LegacyFlags{OrcamentoEnviado: true, DadosPessoaisSolicitados: true}
	case StageQuoted:
		return LegacyFlags{OrcamentoEnviado: true}
	default:
		return LegacyFlags{}
	}
}

// MergeStateWithStage applies a partial update to a conversation state and
// returns the result. Known keys overwrite their fields, unknown string keys
// are preserved in Extra, and the stage is always recomputed from the merged
// flags. A "stage" key in the update is ignored: stage is derived, never set.
func MergeStateWithStage(current State, update map[string]any) State {
	merged := current
	for key, raw := range update {
		switch key {
		case "orcamento_enviado":
			merged.Flags.OrcamentoEnviado = asBool(raw)
		case "dados_pessoais_solicitados":
			merged.Flags.DadosPessoaisSolicitados = asBool(raw)
		case "aguardando_escolha_horario":
			merged.Flags.AguardandoEscolhaHorario = asBool(raw)
		case "nome":
			merged.Nome = asString(raw)
		case "endereco":
			merged.Endereco = asString(raw)
		case "equipamento":
			merged.Equipamento = asString(raw)
		case "marca":
			merged.Marca = asString(raw)
		case "problema":
			merged.Problema = asString(raw)
		case "bocas":
			merged.Bocas = asInt(raw)
		case "data_agendamento":
			merged.DataAgendamento = asTime(raw)
		case "stage":
			// derived field, never taken from the update
		default:
			if s := asString(raw); s != "" {
				if merged.Extra == nil {
					merged.Extra = make(map[string]string)
				}
				merged.Extra[key] = s
			}
		}
	}
	merged.Stage = DeriveStageFromLegacy(merged.Flags)
	merged.UpdatedAt = time.Now()
	return merged
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	default:
		return false
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func asInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	default:
		return 0
	}
}

func asTime(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return &parsed
			}
		}
	}
	return nil
}
