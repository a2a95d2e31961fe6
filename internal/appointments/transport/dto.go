// Package transport holds the request/response types for the appointments
// module.
package transport

import "time"

// SlotWindow is one bookable window on a day.
type SlotWindow struct {
	Data       string `json:"data"`
	HoraInicio string `json:"hora_inicio"`
	HoraFim    string `json:"hora_fim"`
	Periodo    string `json:"periodo"`
}

// CreateRequest books an appointment.
type CreateRequest struct {
	Nome              string    `json:"nome" validate:"required,min=2"`
	Telefone          string    `json:"telefone" validate:"required,min=8"`
	Email             string    `json:"email" validate:"omitempty,email"`
	Endereco          string    `json:"endereco" validate:"required,min=5"`
	Equipamento       string    `json:"equipamento" validate:"required"`
	DescricaoProblema string    `json:"descricao_problema" validate:"required"`
	Modalidade        string    `json:"modalidade" validate:"omitempty,oneof=domicilio coleta_diagnostico"`
	StartsAt          time.Time `json:"starts_at" validate:"required"`
}

// AppointmentResponse is the outward appointment representation.
type AppointmentResponse struct {
	ID                string    `json:"id"`
	Nome              string    `json:"nome"`
	Telefone          string    `json:"telefone"`
	Email             string    `json:"email,omitempty"`
	Endereco          string    `json:"endereco"`
	Equipamento       string    `json:"equipamento"`
	DescricaoProblema string    `json:"descricao_problema"`
	Modalidade        string    `json:"modalidade"`
	StartsAt          time.Time `json:"starts_at"`
	EndsAt            time.Time `json:"ends_at"`
	Status            string    `json:"status"`
}

// CancelRequest cancels an appointment.
type CancelRequest struct {
	Motivo string `json:"motivo" validate:"omitempty,max=500"`
}
