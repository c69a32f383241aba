// Package services содержит сервис-отправитель: доставку писем о решениях
// по учётным записям и расходам, принятых администратором.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mdc-cast/expense-approval/internal/lib/sl"
	"github.com/mdc-cast/expense-approval/internal/lib/smtp"
	"github.com/mdc-cast/expense-approval/internal/models"
)

// SenderService потребляет события из брокера и рассылает письма.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendAccountStatus отправляет письмо о решении по учётной записи.
func (s *SenderService) SendAccountStatus(body []byte) error {
	event, err := s.decode(body)
	if err != nil {
		return err
	}

	subject := "Expense tracker: account status update"
	bodyText := fmt.Sprintf("Hello, %s!\n\n%s", event.FullName, event.Message)
	return s.sendEmail([]string{event.Recipient}, subject, bodyText)
}

// SendExpenseStatus отправляет письмо о решении по расходу.
func (s *SenderService) SendExpenseStatus(body []byte) error {
	event, err := s.decode(body)
	if err != nil {
		return err
	}

	subject := "Expense tracker: expense status update"
	bodyText := fmt.Sprintf("Hello, %s!\n\n%s", event.FullName, event.Message)
	return s.sendEmail([]string{event.Recipient}, subject, bodyText)
}

func (s *SenderService) decode(body []byte) (*models.Event, error) {
	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return nil, fmt.Errorf("error unmarshalling message: %w", err)
	}
	if event.Recipient == "" {
		return nil, fmt.Errorf("event has no recipient")
	}
	return &event, nil
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("to", addr), sl.Err(err))
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		s.log.Error("failed to open DATA stream", sl.Err(err))
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write message body", sl.Err(err))
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		s.log.Error("failed to close DATA stream", sl.Err(err))
		return err
	}

	if err := client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP session", sl.Err(err))
		return err
	}
	s.log.Info("email sent", slog.String("to", strings.Join(to, ";")))
	return nil
}
