package conversation

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"atendimento_backend/internal/conversation/tools"
	"atendimento_backend/platform/textnorm"
)

// extraOfferedSlots is the state Extra key holding the slot list last offered
// to the customer, encoded by encodeOfferedSlots. An ordinal reply ("1", "2")
// while confirming a slot selects from this list.
const extraOfferedSlots = "horarios_oferecidos"

// ToolCall is a resolved intent: which tool to run and with what arguments.
// A nil ToolCall means "no tool, reply conversationally".
type ToolCall struct {
	Tool string
	Args map[string]any
}

// ClassifyInput carries everything a classifier may look at.
type ClassifyInput struct {
	Text  string
	Stage Stage
	State State
	Facts FunnelFacts
}

// IntentClassifier decides the tool call for an inbound message. The
// deterministic rules in SelectIntent run first; a classifier is only
// consulted when they abstain.
type IntentClassifier interface {
	Classify(ctx context.Context, in ClassifyInput) (*ToolCall, error)
}

var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	brDateRe    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}))?\b`)
	clockTimeRe = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2})|\s*h(?:oras)?)\b`)
	ordinalRe   = regexp.MustCompile(`^(?:opcao\s+)?(\d{1,2})[.!)]?$`)
	// The "os" must be adjacent to the digits: "os 150" in "paguei os 150
	// reais" is the article, not an order code.
	orderCodeRe   = regexp.MustCompile(`\b(os-?\d{3,})\b`)
	orderPhraseRe = regexp.MustCompile(`\bordem(?:\s+de\s+servico)?\s+(?:n[o.]?\s*|numero\s+)?(\d{3,})\b`)
)

// SelectIntent applies the deterministic routing rules. It returns nil when
// no rule fires, leaving the decision to the fallback classifier.
func SelectIntent(in ClassifyInput) *ToolCall {
	folded := textnorm.Fold(in.Text)
	if folded == "" {
		return nil
	}

	if m := orderCodeRe.FindStringSubmatch(folded); m != nil {
		return &ToolCall{
			Tool: tools.ToolConsultarOrdemServico,
			Args: map[string]any{"codigo_ordem": m[1]},
		}
	}
	if m := orderPhraseRe.FindStringSubmatch(folded); m != nil {
		return &ToolCall{
			Tool: tools.ToolConsultarOrdemServico,
			Args: map[string]any{"codigo_ordem": "os-" + m[1]},
		}
	}

	if textnorm.ContainsPhrase(folded, "cancelar") || textnorm.ContainsPhrase(folded, "desmarcar") {
		return &ToolCall{Tool: tools.ToolCancelarAgendamento, Args: map[string]any{}}
	}

	if in.Stage == StageConfirmingSlot {
		// An explicit date and time wins over an ordinal pick.
		if date, hour, ok := extractSlotChoice(folded); ok {
			return &ToolCall{
				Tool: tools.ToolCriarAgendamento,
				Args: map[string]any{"data_agendamento": date, "hora_inicio": hour},
			}
		}
		if m := ordinalRe.FindStringSubmatch(folded); m != nil {
			choice, _ := strconv.Atoi(m[1])
			if date, hour, ok := offeredSlotAt(in.State.Extra[extraOfferedSlots], choice); ok {
				return &ToolCall{
					Tool: tools.ToolCriarAgendamento,
					Args: map[string]any{"data_agendamento": date, "hora_inicio": hour},
				}
			}
		}
	}

	if in.Stage == StageCollectingPersonal && in.State.Nome != "" && in.State.Endereco != "" {
		if date, ok := extractDate(folded); ok {
			return &ToolCall{
				Tool: tools.ToolConsultarHorarios,
				Args: map[string]any{"data_agendamento": date},
			}
		}
	}

	wantsSchedule := textnorm.ContainsPhrase(folded, "agendar") ||
		textnorm.ContainsPhrase(folded, "marcar") ||
		textnorm.ContainsPhrase(folded, "horarios") ||
		textnorm.ContainsPhrase(folded, "horario")
	if wantsSchedule && (in.Stage == StageQuoted || in.Stage == StageCollectingPersonal || in.Stage == StageConfirmingSlot) {
		args := map[string]any{}
		if m := isoDateRe.FindStringSubmatch(folded); m != nil {
			args["data_agendamento"] = m[1]
		}
		return &ToolCall{Tool: tools.ToolConsultarHorarios, Args: args}
	}

	if in.Stage == StageCollectingCore && in.Facts.Equipamento != "" && in.Facts.Problema != "" {
		args := map[string]any{
			"equipamento":        in.Facts.Equipamento,
			"descricao_problema": in.Facts.Problema,
		}
		if in.Facts.Marca != "" {
			args["marca"] = in.Facts.Marca
		}
		if in.Facts.Bocas > 0 {
			args["bocas"] = in.Facts.Bocas
		}
		return &ToolCall{Tool: tools.ToolGerarOrcamento, Args: args}
	}

	return nil
}

// extractDate pulls an ISO or dd/mm/yyyy date out of the text.
func extractDate(folded string) (string, bool) {
	if m := isoDateRe.FindStringSubmatch(folded); m != nil {
		return m[1], true
	}
	if m := brDateRe.FindStringSubmatch(folded); m != nil && m[3] != "" {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return m[3] + "-" + pad2(month) + "-" + pad2(day), true
	}
	return "", false
}

// extractSlotChoice pulls a concrete date and start time out of a slot pick.
// Both must be present for a booking to fire.
func extractSlotChoice(folded string) (date, hour string, ok bool) {
	date, _ = extractDate(folded)

	if m := clockTimeRe.FindStringSubmatch(folded); m != nil {
		hourNum, _ := strconv.Atoi(m[1])
		if hourNum > 23 {
			return "", "", false
		}
		minutes := m[2]
		if minutes == "" {
			minutes = "00"
		}
		hour = pad2(hourNum) + ":" + minutes
	}

	return date, hour, date != "" && hour != ""
}

// encodeOfferedSlots renders a slot list into the compact "date hora" form
// stored under extraOfferedSlots, in the order the customer saw it.
func encodeOfferedSlots(slots []tools.Slot) string {
	parts := make([]string, 0, len(slots))
	for _, slot := range slots {
		parts = append(parts, slot.Data+" "+slot.HoraInicio)
	}
	return strings.Join(parts, ";")
}

// offeredSlotAt resolves a 1-based pick against the encoded offered list.
func offeredSlotAt(encoded string, choice int) (date, hour string, ok bool) {
	if encoded == "" || choice < 1 {
		return "", "", false
	}
	parts := strings.Split(encoded, ";")
	if choice > len(parts) {
		return "", "", false
	}
	date, hour, found := strings.Cut(parts[choice-1], " ")
	if !found || date == "" || hour == "" {
		return "", "", false
	}
	return date, hour, true
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
