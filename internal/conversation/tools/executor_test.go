package tools

import (
	"context"
	"errors"
	"testing"

	"atendimento_backend/platform/logger"
)

type fakeScheduling struct {
	slots     []Slot
	created   *CreateAppointmentParams
	cancelled *CancelAppointmentParams
	failWith  error
}

func (f *fakeScheduling) ListAvailableSlots(_ context.Context, _ AvailabilityParams) ([]Slot, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.slots, nil
}

func (f *fakeScheduling) CreateAppointment(_ context.Context, p CreateAppointmentParams) (AppointmentResult, error) {
	if f.failWith != nil {
		return AppointmentResult{}, f.failWith
	}
	f.created = &p
	return AppointmentResult{ID: "7b2e7b9a-1ad0-4c4e-a6b1-0b1a6a1a2b3c"}, nil
}

func (f *fakeScheduling) CancelAppointment(_ context.Context, p CancelAppointmentParams) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.cancelled = &p
	return nil
}

type fakeQuotes struct {
	result   QuoteResult
	failWith error
}

func (f *fakeQuotes) GenerateQuote(_ context.Context, _ QuoteParams) (QuoteResult, error) {
	if f.failWith != nil {
		return QuoteResult{}, f.failWith
	}
	return f.result, nil
}

type fakeOrders struct {
	result OrderStatusResult
}

func (f *fakeOrders) OrderStatus(_ context.Context, _ OrderStatusParams) (OrderStatusResult, error) {
	return f.result, nil
}

func newTestExecutor(sched *fakeScheduling, quotes *fakeQuotes, orders *fakeOrders) *Executor {
	if sched == nil {
		sched = &fakeScheduling{}
	}
	if quotes == nil {
		quotes = &fakeQuotes{}
	}
	if orders == nil {
		orders = &fakeOrders{}
	}
	return NewExecutor(Backends{Scheduling: sched, Quotes: quotes, Orders: orders}, logger.New("test"))
}

func TestExecute_UnknownTool(t *testing.T) {
	executor := newTestExecutor(nil, nil, nil)
	_, err := executor.Execute(context.Background(), "unknownTool", map[string]any{})

	var unknownErr *UnknownToolError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownToolError, got %T: %v", err, err)
	}
	if unknownErr.Tool != "unknownTool" {
		t.Errorf("Tool = %q, want %q", unknownErr.Tool, "unknownTool")
	}
}

func TestExecute_ValidationError(t *testing.T) {
	executor := newTestExecutor(nil, nil, nil)
	_, err := executor.Execute(context.Background(), ToolConsultarHorarios, map[string]any{
		"data_agendamento": "02/09/2026",
	})

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if valErr.Field != "data_agendamento" {
		t.Errorf("Field = %q, want %q", valErr.Field, "data_agendamento")
	}
	if valErr.Tool != ToolConsultarHorarios {
		t.Errorf("Tool = %q, want %q", valErr.Tool, ToolConsultarHorarios)
	}
}

func TestExecute_MissingRequiredField(t *testing.T) {
	executor := newTestExecutor(nil, nil, nil)
	_, err := executor.Execute(context.Background(), ToolGerarOrcamento, map[string]any{
		"equipamento": "fogão",
	})

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if valErr.Field != "descricao_problema" {
		t.Errorf("Field = %q, want %q", valErr.Field, "descricao_problema")
	}
}

func TestExecute_VocabularyReconciliation(t *testing.T) {
	sched := &fakeScheduling{}
	executor := newTestExecutor(sched, nil, nil)

	_, err := executor.Execute(context.Background(), ToolCriarAgendamento, map[string]any{
		"nome":        "Maria Souza",
		"telefone":    "5511999990002",
		"endereco":    "Rua das Flores, 10",
		"equipamento": "fogão",
		"problema":    "não acende",
		"data":        "2026-09-02",
		"horario":     "09:00",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if sched.created == nil {
		t.Fatal("backend was not called")
	}
	if sched.created.DescricaoProblema != "não acende" {
		t.Errorf("problema alias not reconciled: %+v", sched.created)
	}
	if sched.created.DataAgendamento != "2026-09-02" {
		t.Errorf("data alias not reconciled: %+v", sched.created)
	}
	if sched.created.HoraInicio != "09:00" {
		t.Errorf("horario alias not reconciled: %+v", sched.created)
	}
}

func TestExecute_BackendNameWinsOverAlias(t *testing.T) {
	quotes := &fakeQuotes{result: QuoteResult{ValorMinimo: 15000, ValorMaximo: 30000}}
	executor := newTestExecutor(nil, quotes, nil)

	result, err := executor.Execute(context.Background(), ToolGerarOrcamento, map[string]any{
		"equipamento":        "fogão",
		"problema":           "alias que deve perder",
		"descricao_problema": "não acende",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, ok := result.(QuoteResult); !ok {
		t.Fatalf("result = %T, want QuoteResult", result)
	}
}

func TestExecute_WrapsBackendFailure(t *testing.T) {
	cause := errors.New("agenda indisponível")
	sched := &fakeScheduling{failWith: cause}
	executor := newTestExecutor(sched, nil, nil)

	_, err := executor.Execute(context.Background(), ToolConsultarHorarios, map[string]any{
		"data_agendamento": "2026-09-02",
	})

	var execErr *ToolExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ToolExecutionError, got %T: %v", err, err)
	}
	if execErr.Tool != ToolConsultarHorarios {
		t.Errorf("Tool = %q, want %q", execErr.Tool, ToolConsultarHorarios)
	}
	if !errors.Is(err, cause) {
		t.Error("cause must be reachable through Unwrap")
	}
}

func TestExecute_CancelAppointment(t *testing.T) {
	sched := &fakeScheduling{}
	executor := newTestExecutor(sched, nil, nil)

	_, err := executor.Execute(context.Background(), ToolCancelarAgendamento, map[string]any{
		"agendamento_id": "7b2e7b9a-1ad0-4c4e-a6b1-0b1a6a1a2b3c",
		"motivo":         "cliente desistiu",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if sched.cancelled == nil || sched.cancelled.Motivo != "cliente desistiu" {
		t.Errorf("cancel params not passed through: %+v", sched.cancelled)
	}
}

func TestExecute_CancelByPhoneOnly(t *testing.T) {
	sched := &fakeScheduling{}
	executor := newTestExecutor(sched, nil, nil)

	_, err := executor.Execute(context.Background(), ToolCancelarAgendamento, map[string]any{
		"telefone": "5511999990002",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if sched.cancelled == nil || sched.cancelled.Telefone != "5511999990002" {
		t.Errorf("phone-only cancel not passed through: %+v", sched.cancelled)
	}
}

func TestExecute_CancelNeedsIdOrPhone(t *testing.T) {
	executor := newTestExecutor(nil, nil, nil)

	_, err := executor.Execute(context.Background(), ToolCancelarAgendamento, map[string]any{
		"motivo": "cliente desistiu",
	})
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestExecute_OrderStatusPassThrough(t *testing.T) {
	orders := &fakeOrders{result: OrderStatusResult{CodigoOrdem: "OS-1042", Status: "em_bancada"}}
	executor := newTestExecutor(nil, nil, orders)

	result, err := executor.Execute(context.Background(), ToolConsultarOrdemServico, map[string]any{
		"codigo_ordem": "OS-1042",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	status, ok := result.(OrderStatusResult)
	if !ok {
		t.Fatalf("result = %T, want OrderStatusResult", result)
	}
	if status.Status != "em_bancada" {
		t.Errorf("status = %q, want %q", status.Status, "em_bancada")
	}
}
