package conversation

import (
	"testing"

	"atendimento_backend/internal/conversation/tools"
)

func TestSelectIntent_OrderStatus(t *testing.T) {
	call := SelectIntent(ClassifyInput{Text: "qual o andamento da OS-1042?"})
	if call == nil || call.Tool != tools.ToolConsultarOrdemServico {
		t.Fatalf("call = %+v, want %s", call, tools.ToolConsultarOrdemServico)
	}
	if call.Args["codigo_ordem"] != "os-1042" {
		t.Errorf("codigo_ordem = %v", call.Args["codigo_ordem"])
	}
}

func TestSelectIntent_OrderArticleIsNotACode(t *testing.T) {
	call := SelectIntent(ClassifyInput{Text: "paguei os 150 reais na semana passada"})
	if call != nil {
		t.Errorf("the article before an amount must not route, got %+v", call)
	}
}

func TestSelectIntent_OrderPhraseWithBareNumber(t *testing.T) {
	call := SelectIntent(ClassifyInput{Text: "qual o status da ordem de serviço 1042?"})
	if call == nil || call.Tool != tools.ToolConsultarOrdemServico {
		t.Fatalf("call = %+v, want %s", call, tools.ToolConsultarOrdemServico)
	}
	if call.Args["codigo_ordem"] != "os-1042" {
		t.Errorf("codigo_ordem = %v", call.Args["codigo_ordem"])
	}
}

func TestSelectIntent_Cancel(t *testing.T) {
	call := SelectIntent(ClassifyInput{Text: "quero cancelar minha visita", Stage: StageConfirmingSlot})
	if call == nil || call.Tool != tools.ToolCancelarAgendamento {
		t.Fatalf("call = %+v, want %s", call, tools.ToolCancelarAgendamento)
	}
}

func TestSelectIntent_SlotChoiceBooks(t *testing.T) {
	call := SelectIntent(ClassifyInput{
		Text:  "pode ser dia 02/09/2026 às 14h",
		Stage: StageConfirmingSlot,
	})
	if call == nil || call.Tool != tools.ToolCriarAgendamento {
		t.Fatalf("call = %+v, want %s", call, tools.ToolCriarAgendamento)
	}
	if call.Args["data_agendamento"] != "2026-09-02" {
		t.Errorf("data_agendamento = %v", call.Args["data_agendamento"])
	}
	if call.Args["hora_inicio"] != "14:00" {
		t.Errorf("hora_inicio = %v", call.Args["hora_inicio"])
	}
}

func TestSelectIntent_SlotChoiceNeedsDateAndTime(t *testing.T) {
	call := SelectIntent(ClassifyInput{Text: "pode ser às 14h", Stage: StageConfirmingSlot})
	if call != nil {
		t.Errorf("time without date must not book: %+v", call)
	}
}

func TestSelectIntent_OrdinalPicksOfferedSlot(t *testing.T) {
	state := State{Extra: map[string]string{
		extraOfferedSlots: "2026-09-02 08:00;2026-09-02 14:00",
	}}
	tests := []struct {
		text     string
		wantDate string
		wantHour string
	}{
		{"1", "2026-09-02", "08:00"},
		{"2", "2026-09-02", "14:00"},
		{"opção 2", "2026-09-02", "14:00"},
		{"2.", "2026-09-02", "14:00"},
	}
	for _, tc := range tests {
		call := SelectIntent(ClassifyInput{Text: tc.text, Stage: StageConfirmingSlot, State: state})
		if call == nil || call.Tool != tools.ToolCriarAgendamento {
			t.Fatalf("%q: call = %+v, want %s", tc.text, call, tools.ToolCriarAgendamento)
		}
		if call.Args["data_agendamento"] != tc.wantDate || call.Args["hora_inicio"] != tc.wantHour {
			t.Errorf("%q: args = %v, want %s %s", tc.text, call.Args, tc.wantDate, tc.wantHour)
		}
	}
}

func TestSelectIntent_OrdinalAbstainsWithoutOfferedList(t *testing.T) {
	if call := SelectIntent(ClassifyInput{Text: "1", Stage: StageConfirmingSlot}); call != nil {
		t.Errorf("ordinal without an offered list must abstain, got %+v", call)
	}
	state := State{Extra: map[string]string{extraOfferedSlots: "2026-09-02 08:00"}}
	if call := SelectIntent(ClassifyInput{Text: "5", Stage: StageConfirmingSlot, State: state}); call != nil {
		t.Errorf("out-of-range pick must abstain, got %+v", call)
	}
	if call := SelectIntent(ClassifyInput{Text: "1", Stage: StageCollectingCore, State: state}); call != nil {
		t.Errorf("ordinal outside slot confirmation must abstain, got %+v", call)
	}
}

func TestSelectIntent_AvailabilityAfterQuote(t *testing.T) {
	call := SelectIntent(ClassifyInput{Text: "quero agendar sim", Stage: StageQuoted})
	if call == nil || call.Tool != tools.ToolConsultarHorarios {
		t.Fatalf("call = %+v, want %s", call, tools.ToolConsultarHorarios)
	}
}

func TestSelectIntent_QuoteWhenCoreFactsComplete(t *testing.T) {
	facts := GuessFunnelFacts("Meu fogão Brastemp de 5 bocas não acende")
	call := SelectIntent(ClassifyInput{
		Text:  "Meu fogão Brastemp de 5 bocas não acende",
		Stage: StageCollectingCore,
		Facts: facts,
	})
	if call == nil || call.Tool != tools.ToolGerarOrcamento {
		t.Fatalf("call = %+v, want %s", call, tools.ToolGerarOrcamento)
	}
	if call.Args["descricao_problema"] != "não acende" {
		t.Errorf("descricao_problema = %v", call.Args["descricao_problema"])
	}
	if call.Args["bocas"] != 5 {
		t.Errorf("bocas = %v", call.Args["bocas"])
	}
}

func TestSelectIntent_AbstainsOnSmallTalk(t *testing.T) {
	if call := SelectIntent(ClassifyInput{Text: "bom dia!", Stage: StageCollectingCore}); call != nil {
		t.Errorf("small talk must abstain, got %+v", call)
	}
	if call := SelectIntent(ClassifyInput{Text: "", Stage: StageQuoted}); call != nil {
		t.Errorf("empty text must abstain, got %+v", call)
	}
}
