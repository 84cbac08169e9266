package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/dolgodolah/login/internal/models"
)

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MailPublisher публикует задания на отправку писем в почтовую очередь.
// Реализует контракт MailPublisher сервиса учётных записей.
type MailPublisher struct {
	ch *amqp.Channel
}

// NewMailPublisher создает новый экземпляр MailPublisher.
func NewMailPublisher(ch *amqp.Channel) *MailPublisher {
	return &MailPublisher{ch: ch}
}

// PublishVerificationMail ставит письмо-подтверждение в очередь на отправку.
func (p *MailPublisher) PublishVerificationMail(_ context.Context, msg models.VerificationMessage) error {
	return PublishMessage(p.ch, MailExchange, VerificationRoutingKey, msg)
}
