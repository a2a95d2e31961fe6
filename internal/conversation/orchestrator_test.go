package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"atendimento_backend/internal/conversation/tools"
	"atendimento_backend/platform/logger"
)

type memoryStore struct {
	states map[string]State
	seen   map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: map[string]State{}, seen: map[string]bool{}}
}

func (m *memoryStore) GetByVariants(_ context.Context, variants []string) (State, error) {
	for _, v := range variants {
		if state, ok := m.states[v]; ok {
			return state, nil
		}
	}
	return State{}, ErrConversationNotFound
}

func (m *memoryStore) Save(_ context.Context, state State) (State, error) {
	state.Stage = DeriveStageFromLegacy(state.Flags)
	m.states[state.PeerKey] = state
	return state, nil
}

func (m *memoryStore) RecordInbound(_ context.Context, providerMessageID, _, _ string) (bool, error) {
	if providerMessageID == "" {
		return true, nil
	}
	if m.seen[providerMessageID] {
		return false, nil
	}
	m.seen[providerMessageID] = true
	return true, nil
}

type fakeExecutor struct {
	calls    []string
	lastArgs map[string]any
	results  map[string]any
	failWith error
}

func (f *fakeExecutor) Execute(_ context.Context, tool string, args map[string]any) (any, error) {
	f.calls = append(f.calls, tool)
	f.lastArgs = args
	if f.failWith != nil {
		return nil, f.failWith
	}
	if result, ok := f.results[tool]; ok {
		return result, nil
	}
	return nil, &tools.UnknownToolError{Tool: tool}
}

type recordingSender struct {
	messages []string
	to       []string
}

func (r *recordingSender) SendText(_ context.Context, _, to, body string) error {
	r.to = append(r.to, to)
	r.messages = append(r.messages, body)
	return nil
}

type stubClassifier struct {
	call *ToolCall
	err  error
}

func (s *stubClassifier) Classify(_ context.Context, _ ClassifyInput) (*ToolCall, error) {
	return s.call, s.err
}

type orchestratorFixture struct {
	orch   *Orchestrator
	store  *memoryStore
	exec   *fakeExecutor
	sender *recordingSender
	pause  *PauseSwitch
}

func newFixture(classifier IntentClassifier) *orchestratorFixture {
	store := newMemoryStore()
	exec := &fakeExecutor{results: map[string]any{}}
	sender := &recordingSender{}
	pause := NewPauseSwitch()
	orch := NewOrchestrator(
		store, exec, classifier, NewTemplateRenderer(nil), sender, pause, nil, logger.New("test"),
	)
	return &orchestratorFixture{orch: orch, store: store, exec: exec, sender: sender, pause: pause}
}

func TestHandleInbound_WelcomesNewConversation(t *testing.T) {
	f := newFixture(nil)

	err := f.orch.HandleInbound(context.Background(), InboundMessage{
		Canal: "whatsapp", From: "+55 (11) 99999-0002", Body: "bom dia",
	})
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if len(f.sender.messages) != 1 {
		t.Fatalf("messages sent = %d, want 1", len(f.sender.messages))
	}
	if f.sender.to[0] != "5511999990002" {
		t.Errorf("reply went to %q, want canonical key", f.sender.to[0])
	}
	state, ok := f.store.states["5511999990002"]
	if !ok {
		t.Fatal("state not saved under canonical key")
	}
	if state.Stage != StageCollectingCore {
		t.Errorf("stage = %q, want %q", state.Stage, StageCollectingCore)
	}
}

func TestHandleInbound_QuotesWhenCoreFactsArrive(t *testing.T) {
	f := newFixture(nil)
	f.exec.results[tools.ToolGerarOrcamento] = tools.QuoteResult{ValorMinimo: 15000, ValorMaximo: 28000}

	err := f.orch.HandleInbound(context.Background(), InboundMessage{
		Canal: "whatsapp", From: "5511999990002", Body: "Meu fogão Brastemp de 5 bocas não acende",
	})
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if len(f.exec.calls) != 1 || f.exec.calls[0] != tools.ToolGerarOrcamento {
		t.Fatalf("calls = %v, want [%s]", f.exec.calls, tools.ToolGerarOrcamento)
	}
	state := f.store.states["5511999990002"]
	if state.Stage != StageQuoted {
		t.Errorf("stage = %q, want %q", state.Stage, StageQuoted)
	}
	if state.Equipamento != "fogão" || state.Marca != "brastemp" || state.Bocas != 5 {
		t.Errorf("facts not captured: %+v", state)
	}
	reply := f.sender.messages[0]
	if !strings.Contains(reply, "150,00") || !strings.Contains(reply, "280,00") {
		t.Errorf("quote values missing from reply %q", reply)
	}
}

func TestHandleInbound_PausedRecordsWithoutReply(t *testing.T) {
	f := newFixture(nil)
	f.pause.Set(true)

	err := f.orch.HandleInbound(context.Background(), InboundMessage{
		Canal: "whatsapp", From: "5511999990002", Body: "Meu fogão não acende",
	})
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if len(f.sender.messages) != 0 {
		t.Errorf("paused assistant must not reply, sent %v", f.sender.messages)
	}
	if len(f.exec.calls) != 0 {
		t.Errorf("paused assistant must not run tools, ran %v", f.exec.calls)
	}
	state, ok := f.store.states["5511999990002"]
	if !ok {
		t.Fatal("state must still be recorded while paused")
	}
	if state.Problema != "não acende" {
		t.Errorf("facts not captured while paused: %+v", state)
	}
}

func TestHandleInbound_DuplicateMessageIgnored(t *testing.T) {
	f := newFixture(nil)

	msg := InboundMessage{
		Canal: "whatsapp", From: "5511999990002", Body: "oi", ProviderMessageID: "msg-1",
	}
	if err := f.orch.HandleInbound(context.Background(), msg); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := f.orch.HandleInbound(context.Background(), msg); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if len(f.sender.messages) != 1 {
		t.Errorf("duplicate delivery produced %d replies, want 1", len(f.sender.messages))
	}
}

func TestHandleInbound_SlotChoiceBooksAppointment(t *testing.T) {
	f := newFixture(nil)
	booked := time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)
	f.exec.results[tools.ToolCriarAgendamento] = tools.AppointmentResult{
		ID: "7b2e7b9a-1ad0-4c4e-a6b1-0b1a6a1a2b3c", DataAgendamento: booked,
	}

	state := NewState("5511999990002", "whatsapp")
	state.Nome = "Maria Souza"
	state.Endereco = "Rua das Flores, 10"
	state.Equipamento = "fogão"
	state.Problema = "não acende"
	state.Flags = LegacyFlags{AguardandoEscolhaHorario: true}
	state.Stage = StageConfirmingSlot
	f.store.states["5511999990002"] = state

	err := f.orch.HandleInbound(context.Background(), InboundMessage{
		Canal: "whatsapp", From: "5511999990002", Body: "pode ser dia 02/09/2026 às 14h",
	})
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if len(f.exec.calls) != 1 || f.exec.calls[0] != tools.ToolCriarAgendamento {
		t.Fatalf("calls = %v", f.exec.calls)
	}
	if f.exec.lastArgs["nome"] != "Maria Souza" {
		t.Errorf("state values not merged into args: %v", f.exec.lastArgs)
	}
	saved := f.store.states["5511999990002"]
	if saved.Stage != StageCollectingCore {
		t.Errorf("stage after booking = %q, want %q", saved.Stage, StageCollectingCore)
	}
	if saved.Extra["agendamento_id"] == "" {
		t.Error("appointment id not kept for later cancellation")
	}
}

func TestHandleInbound_OrdinalReplyBooksOfferedSlot(t *testing.T) {
	f := newFixture(nil)
	f.exec.results[tools.ToolConsultarHorarios] = []tools.Slot{
		{Data: "2026-09-02", HoraInicio: "08:00", HoraFim: "11:00"},
		{Data: "2026-09-02", HoraInicio: "14:00", HoraFim: "17:00"},
	}
	f.exec.results[tools.ToolCriarAgendamento] = tools.AppointmentResult{
		ID: "7b2e7b9a-1ad0-4c4e-a6b1-0b1a6a1a2b3c", DataAgendamento: time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC),
	}

	state := NewState("5511999990002", "whatsapp")
	state.Flags = LegacyFlags{OrcamentoEnviado: true}
	state.Stage = StageQuoted
	f.store.states["5511999990002"] = state

	err := f.orch.HandleInbound(context.Background(), InboundMessage{
		Canal: "whatsapp", From: "5511999990002", Body: "quero agendar",
	})
	if err != nil {
		t.Fatalf("availability turn: %v", err)
	}
	offered := f.store.states["5511999990002"]
	if offered.Extra[extraOfferedSlots] != "2026-09-02 08:00;2026-09-02 14:00" {
		t.Fatalf("offered slots not kept in state: %q", offered.Extra[extraOfferedSlots])
	}
	if !strings.Contains(f.sender.messages[0], "1)") || !strings.Contains(f.sender.messages[0], "2)") {
		t.Errorf("options not numbered: %q", f.sender.messages[0])
	}

	err = f.orch.HandleInbound(context.Background(), InboundMessage{
		Canal: "whatsapp", From: "5511999990002", Body: "2",
	})
	if err != nil {
		t.Fatalf("pick turn: %v", err)
	}
	if len(f.exec.calls) != 2 || f.exec.calls[1] != tools.ToolCriarAgendamento {
		t.Fatalf("calls = %v", f.exec.calls)
	}
	if f.exec.lastArgs["data_agendamento"] != "2026-09-02" || f.exec.lastArgs["hora_inicio"] != "14:00" {
		t.Errorf("pick not mapped to the offered slot: %v", f.exec.lastArgs)
	}
}

func TestHandleInbound_CancelWithoutStoredBookingSendsPhone(t *testing.T) {
	f := newFixture(nil)
	f.exec.results[tools.ToolCancelarAgendamento] = map[string]string{"status": "cancelado"}

	err := f.orch.HandleInbound(context.Background(), InboundMessage{
		Canal: "whatsapp", From: "+55 (11) 99999-0002", Body: "quero cancelar minha visita",
	})
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if len(f.exec.calls) != 1 || f.exec.calls[0] != tools.ToolCancelarAgendamento {
		t.Fatalf("calls = %v", f.exec.calls)
	}
	if f.exec.lastArgs["telefone"] != "5511999990002" {
		t.Errorf("telefone not taken from the peer key: %v", f.exec.lastArgs)
	}
	if _, ok := f.exec.lastArgs["agendamento_id"]; ok {
		t.Errorf("no booking id is known, args = %v", f.exec.lastArgs)
	}
	if !strings.Contains(f.sender.messages[0], "cancelad") {
		t.Errorf("reply = %q, want cancellation confirmation", f.sender.messages[0])
	}
}

func TestHandleInbound_ToolFailureGetsGracefulReply(t *testing.T) {
	f := newFixture(nil)
	f.exec.failWith = &tools.ToolExecutionError{
		Tool: tools.ToolGerarOrcamento, Err: errors.New("backend down"),
	}

	err := f.orch.HandleInbound(context.Background(), InboundMessage{
		Canal: "whatsapp", From: "5511999990002", Body: "geladeira Consul não gela",
	})
	if err != nil {
		t.Fatalf("tool failure must not fail the turn: %v", err)
	}
	if len(f.sender.messages) != 1 {
		t.Fatalf("messages = %v", f.sender.messages)
	}
	if !strings.Contains(f.sender.messages[0], "dificuldade") {
		t.Errorf("reply = %q, want the unavailable template", f.sender.messages[0])
	}
	if f.store.states["5511999990002"].Stage != StageCollectingCore {
		t.Error("failed quote must not advance the stage")
	}
}

func TestHandleInbound_ClassifierFallback(t *testing.T) {
	classifier := &stubClassifier{call: &ToolCall{
		Tool: tools.ToolConsultarOrdemServico,
		Args: map[string]any{"codigo_ordem": "os-1042"},
	}}
	f := newFixture(classifier)
	f.exec.results[tools.ToolConsultarOrdemServico] = tools.OrderStatusResult{
		CodigoOrdem: "os-1042", Status: "aguardando_peca",
	}

	err := f.orch.HandleInbound(context.Background(), InboundMessage{
		Canal: "whatsapp", From: "5511999990002", Body: "e aí, alguma novidade do meu conserto?",
	})
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if len(f.exec.calls) != 1 || f.exec.calls[0] != tools.ToolConsultarOrdemServico {
		t.Fatalf("calls = %v", f.exec.calls)
	}
	if !strings.Contains(f.sender.messages[0], "aguardando_peca") {
		t.Errorf("reply = %q", f.sender.messages[0])
	}
}

func TestHandleInbound_ClassifierErrorFallsBackToTemplate(t *testing.T) {
	f := newFixture(&stubClassifier{err: errors.New("model timeout")})

	err := f.orch.HandleInbound(context.Background(), InboundMessage{
		Canal: "whatsapp", From: "5511999990002", Body: "hmm",
	})
	if err != nil {
		t.Fatalf("classifier failure must not fail the turn: %v", err)
	}
	if len(f.sender.messages) != 1 {
		t.Fatalf("messages = %v", f.sender.messages)
	}
}

func TestHandleInbound_PersonalDataCapture(t *testing.T) {
	f := newFixture(nil)

	state := NewState("5511999990002", "whatsapp")
	state.Equipamento = "fogão"
	state.Problema = "não acende"
	state.Flags = LegacyFlags{OrcamentoEnviado: true, DadosPessoaisSolicitados: true}
	state.Stage = StageCollectingPersonal
	f.store.states["5511999990002"] = state

	err := f.orch.HandleInbound(context.Background(), InboundMessage{
		Canal: "whatsapp", From: "5511999990002", Body: "Maria Souza",
	})
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	saved := f.store.states["5511999990002"]
	if saved.Nome != "Maria Souza" {
		t.Errorf("nome = %q, want captured", saved.Nome)
	}
	if !strings.Contains(f.sender.messages[0], "endereço") {
		t.Errorf("reply = %q, want address prompt", f.sender.messages[0])
	}
}
