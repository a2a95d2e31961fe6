// Package email delivers transactional mail over the shop's SMTP server.
package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers the customer-facing notification emails.
type Sender interface {
	SendAppointmentConfirmation(ctx context.Context, toEmail, nome, equipamento, dataFormatada, modalidade string) error
	SendAppointmentCancelled(ctx context.Context, toEmail, nome, motivo string) error
}

// SMTPSender implements Sender using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// SendAppointmentConfirmation mails the booking confirmation.
func (s *SMTPSender) SendAppointmentConfirmation(ctx context.Context, toEmail, nome, equipamento, dataFormatada, modalidade string) error {
	content, err := renderEmailTemplate("appointment_confirmation.html", appointmentConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:   "Visita agendada",
			Heading: "Visita agendada",
		},
		Nome:          nome,
		Equipamento:   equipamento,
		DataFormatada: dataFormatada,
		Modalidade:    modalidadeLabel(modalidade),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAppointmentConfirmation, content)
}

// SendAppointmentCancelled mails the cancellation notice.
func (s *SMTPSender) SendAppointmentCancelled(ctx context.Context, toEmail, nome, motivo string) error {
	content, err := renderEmailTemplate("appointment_cancelled.html", appointmentCancelledEmailData{
		baseEmailData: baseEmailData{
			Title:   "Agendamento cancelado",
			Heading: "Agendamento cancelado",
		},
		Nome:   nome,
		Motivo: motivo,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAppointmentCancelled, content)
}

func modalidadeLabel(modalidade string) string {
	if modalidade == "coleta_diagnostico" {
		return "coleta para diagnóstico em bancada"
	}
	return "atendimento em domicílio"
}
