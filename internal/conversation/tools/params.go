package tools

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

// Registered tool names. The registry is closed; see Executor.Execute.
const (
	ToolConsultarHorarios     = "consultar_horarios"
	ToolCriarAgendamento      = "criar_agendamento"
	ToolCancelarAgendamento   = "cancelar_agendamento"
	ToolGerarOrcamento        = "gerar_orcamento"
	ToolConsultarOrdemServico = "consultar_ordem_servico"
)

// argAliases maps assistant vocabulary to backend vocabulary. Reconciliation
// runs before decoding so the param structs only know backend names.
var argAliases = map[string]string{
	"problema": "descricao_problema",
	"data":     "data_agendamento",
	"horario":  "hora_inicio",
}

// reconcileArgs renames aliased keys in a copy of rawArgs. A backend-named
// key already present wins over its alias.
func reconcileArgs(rawArgs map[string]any) map[string]any {
	out := make(map[string]any, len(rawArgs))
	for key, value := range rawArgs {
		target := key
		if alias, ok := argAliases[key]; ok {
			target = alias
		}
		if _, exists := out[target]; exists && target != key {
			continue
		}
		out[target] = value
	}
	return out
}

// AvailabilityParams asks for open slots on a date.
type AvailabilityParams struct {
	DataAgendamento string `json:"data_agendamento" validate:"required,datetime=2006-01-02"`
	Periodo         string `json:"periodo" validate:"omitempty,oneof=manha tarde"`
}

// CreateAppointmentParams books a visit or a collection.
type CreateAppointmentParams struct {
	Nome              string `json:"nome" validate:"required,min=2"`
	Telefone          string `json:"telefone" validate:"required,min=8"`
	Endereco          string `json:"endereco" validate:"required,min=5"`
	Equipamento       string `json:"equipamento" validate:"required"`
	DescricaoProblema string `json:"descricao_problema" validate:"required"`
	DataAgendamento   string `json:"data_agendamento" validate:"required,datetime=2006-01-02"`
	HoraInicio        string `json:"hora_inicio" validate:"required,datetime=15:04"`
	Modalidade        string `json:"modalidade" validate:"omitempty,oneof=domicilio coleta_diagnostico"`
}

// CancelAppointmentParams cancels an existing appointment, by booking id when
// one is known or by the customer's phone otherwise.
type CancelAppointmentParams struct {
	AgendamentoID string `json:"agendamento_id" validate:"required_without=Telefone,omitempty,uuid4"`
	Telefone      string `json:"telefone" validate:"required_without=AgendamentoID,omitempty,min=8"`
	Motivo        string `json:"motivo" validate:"omitempty,max=500"`
}

// QuoteParams produces a price quote for a described repair.
type QuoteParams struct {
	Equipamento       string `json:"equipamento" validate:"required"`
	Marca             string `json:"marca" validate:"omitempty"`
	DescricaoProblema string `json:"descricao_problema" validate:"required"`
	Bocas             int    `json:"bocas" validate:"omitempty,gte=1,lte=8"`
}

// OrderStatusParams looks up a service order by its public code.
type OrderStatusParams struct {
	CodigoOrdem string `json:"codigo_ordem" validate:"required,min=4"`
}

// decodeParams maps reconciled args into a typed param struct and validates
// it. The JSON round trip gives the same coercion rules the HTTP layer uses.
func decodeParams(tool string, rawArgs map[string]any, val *validator.Validate, dst any) error {
	payload, err := json.Marshal(reconcileArgs(rawArgs))
	if err != nil {
		return &ValidationError{Tool: tool, Field: "", Reason: "arguments are not serializable"}
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{Tool: tool, Field: typeErr.Field, Reason: "wrong type"}
		}
		return &ValidationError{Tool: tool, Field: "", Reason: err.Error()}
	}
	if err := val.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return &ValidationError{
				Tool:   tool,
				Field:  jsonFieldName(dst, first.StructField()),
				Reason: "failed on rule " + first.Tag(),
			}
		}
		return &ValidationError{Tool: tool, Field: "", Reason: err.Error()}
	}
	return nil
}
