// Package services содержит почтовый воркер: разбор заданий из очереди
// и отправку писем с подтверждением e-mail через SMTP.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dolgodolah/login/internal/lib/sl"
	"github.com/dolgodolah/login/internal/lib/smtp"
	"github.com/dolgodolah/login/internal/models"
)

// SenderService отправляет письма-подтверждения через SMTP транспорт.
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

// SendVerificationMail разбирает задание из очереди и отправляет письмо
// со ссылкой для подтверждения e-mail.
func (s *SenderService) SendVerificationMail(body []byte) error {
	var message models.VerificationMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Подтверждение адреса электронной почты"
	bodyHTML := fmt.Sprintf("<p>Здравствуйте, %s!</p>"+
		"<p>Чтобы завершить регистрацию, перейдите по ссылке ниже.</p>"+
		"<a href='%s' target='_blank'>Подтвердить e-mail</a>",
		message.Name, message.ConfirmURL)

	return s.sendEmail(to, subject, bodyHTML)
}

func (s *SenderService) sendEmail(to []string, subject, bodyHTML string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		bodyHTML,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("verification email sent", "to", to)
	return nil
}
