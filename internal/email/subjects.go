package email

const (
	subjectAppointmentConfirmation = "Sua visita técnica está agendada"
	subjectAppointmentCancelled    = "Seu agendamento foi cancelado"
)
