package tools

import (
	"context"
	"reflect"
	"strings"
	"time"

	"atendimento_backend/platform/logger"

	"github.com/go-playground/validator/v10"
)

// Slot is one bookable window offered to the customer.
type Slot struct {
	Data       string `json:"data"`
	HoraInicio string `json:"hora_inicio"`
	HoraFim    string `json:"hora_fim"`
}

// AppointmentResult is the outcome of a successful booking.
type AppointmentResult struct {
	ID              string    `json:"id"`
	DataAgendamento time.Time `json:"data_agendamento"`
	Modalidade      string    `json:"modalidade"`
}

// QuoteResult is a generated price quote.
type QuoteResult struct {
	ValorMinimo int64    `json:"valor_minimo_centavos"`
	ValorMaximo int64    `json:"valor_maximo_centavos"`
	Modalidades []string `json:"modalidades"`
	Observacoes string   `json:"observacoes,omitempty"`
}

// OrderStatusResult is the current state of a service order.
type OrderStatusResult struct {
	CodigoOrdem string `json:"codigo_ordem"`
	Status      string `json:"status"`
	Previsao    string `json:"previsao,omitempty"`
}

// SchedulingBackend handles availability, booking and cancellation.
type SchedulingBackend interface {
	ListAvailableSlots(ctx context.Context, params AvailabilityParams) ([]Slot, error)
	CreateAppointment(ctx context.Context, params CreateAppointmentParams) (AppointmentResult, error)
	CancelAppointment(ctx context.Context, params CancelAppointmentParams) error
}

// QuoteBackend generates price quotes.
type QuoteBackend interface {
	GenerateQuote(ctx context.Context, params QuoteParams) (QuoteResult, error)
}

// OrderBackend looks up service orders.
type OrderBackend interface {
	OrderStatus(ctx context.Context, params OrderStatusParams) (OrderStatusResult, error)
}

// Backends groups the services the executor dispatches to.
type Backends struct {
	Scheduling SchedulingBackend
	Quotes     QuoteBackend
	Orders     OrderBackend
}

// Executor validates tool arguments and dispatches them to the backends. It
// performs no retries: transient backend failures surface as
// *ToolExecutionError and the caller decides what to do.
type Executor struct {
	backends Backends
	val      *validator.Validate
	log      *logger.Logger
}

// NewExecutor builds an executor over the given backends.
func NewExecutor(backends Backends, log *logger.Logger) *Executor {
	return &Executor{
		backends: backends,
		val:      validator.New(),
		log:      log,
	}
}

// Execute runs one tool call. Unknown names fail with *UnknownToolError,
// invalid arguments with *ValidationError, backend failures with
// *ToolExecutionError. Successful results pass through unchanged.
func (e *Executor) Execute(ctx context.Context, tool string, rawArgs map[string]any) (any, error) {
	switch tool {
	case ToolConsultarHorarios:
		var params AvailabilityParams
		if err := decodeParams(tool, rawArgs, e.val, &params); err != nil {
			return nil, err
		}
		slots, err := e.backends.Scheduling.ListAvailableSlots(ctx, params)
		if err != nil {
			return nil, e.wrap(tool, err)
		}
		return slots, nil

	case ToolCriarAgendamento:
		var params CreateAppointmentParams
		if err := decodeParams(tool, rawArgs, e.val, &params); err != nil {
			return nil, err
		}
		result, err := e.backends.Scheduling.CreateAppointment(ctx, params)
		if err != nil {
			return nil, e.wrap(tool, err)
		}
		return result, nil

	case ToolCancelarAgendamento:
		var params CancelAppointmentParams
		if err := decodeParams(tool, rawArgs, e.val, &params); err != nil {
			return nil, err
		}
		if err := e.backends.Scheduling.CancelAppointment(ctx, params); err != nil {
			return nil, e.wrap(tool, err)
		}
		return map[string]string{"status": "cancelado"}, nil

	case ToolGerarOrcamento:
		var params QuoteParams
		if err := decodeParams(tool, rawArgs, e.val, &params); err != nil {
			return nil, err
		}
		result, err := e.backends.Quotes.GenerateQuote(ctx, params)
		if err != nil {
			return nil, e.wrap(tool, err)
		}
		return result, nil

	case ToolConsultarOrdemServico:
		var params OrderStatusParams
		if err := decodeParams(tool, rawArgs, e.val, &params); err != nil {
			return nil, err
		}
		result, err := e.backends.Orders.OrderStatus(ctx, params)
		if err != nil {
			return nil, e.wrap(tool, err)
		}
		return result, nil

	default:
		return nil, &UnknownToolError{Tool: tool}
	}
}

func (e *Executor) wrap(tool string, err error) error {
	e.log.Error("tool execution failed", "tool", tool, "error", err)
	return &ToolExecutionError{Tool: tool, Err: err}
}

// jsonFieldName resolves a struct field name to its json tag so validation
// errors speak the same vocabulary the caller sent.
func jsonFieldName(structPtr any, fieldName string) string {
	t := reflect.TypeOf(structPtr)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if field, ok := t.FieldByName(fieldName); ok {
		if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
			name, _, _ := strings.Cut(tag, ",")
			return name
		}
	}
	return fieldName
}
