package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/xavierca1/visa-leads/internal/entity"
	"github.com/xavierca1/visa-leads/internal/infra/http/middleware"
)

// Consumer is the part of *amqp.Channel used by the worker.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Mailer sends the e-mails triggered by a new lead.
type Mailer interface {
	SendNewLeadNotification(ctx context.Context, event entity.LeadEvent) error
	SendLeadConfirmation(ctx context.Context, event entity.LeadEvent) error
}

type CRMClient interface {
	CreateLead(ctx context.Context, event entity.LeadEvent) error
}

// Worker consumes lead events and fans them out to mail and CRM. Mailer and
// CRM are optional; a nil one is skipped.
type Worker struct {
	Channel Consumer
	Mailer  Mailer
	CRM     CRMClient
	Log     zerolog.Logger
}

func NewWorker(ch Consumer, mailer Mailer, crm CRMClient, log zerolog.Logger) *Worker {
	return &Worker{
		Channel: ch,
		Mailer:  mailer,
		CRM:     crm,
		Log:     log.With().Str("component", "lead_worker").Logger(),
	}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Log.Info().Str("queue", queueName).Msg("worker waiting for messages")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.HandleDelivery(ctx, d)
		}
	}
}

// HandleDelivery acks a processed message. Malformed or failed messages are
// rejected without requeue so they land in the dead letter queue.
func (w *Worker) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	var event entity.LeadEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.Log.Error().Err(err).Str("message_id", d.MessageId).Msg("invalid event payload")
		_ = d.Nack(false, false)
		return
	}

	log := w.Log.With().Str("event", string(event.Type)).Str("lead_id", event.LeadID).Logger()

	if err := w.process(ctx, event); err != nil {
		log.Error().Err(err).Msg("event processing failed")
		_ = d.Nack(false, false)
		return
	}

	log.Debug().Msg("event processed")
	_ = d.Ack(false)
}

func (w *Worker) process(ctx context.Context, event entity.LeadEvent) error {
	switch event.Type {
	case entity.LeadSubmitted:
		var errs []error
		if w.Mailer != nil {
			if err := w.Mailer.SendNewLeadNotification(ctx, event); err != nil {
				middleware.RecordIntegrationError("mail")
				errs = append(errs, fmt.Errorf("admin notification: %w", err))
			}
			if err := w.Mailer.SendLeadConfirmation(ctx, event); err != nil {
				middleware.RecordIntegrationError("mail")
				errs = append(errs, fmt.Errorf("confirmation: %w", err))
			}
		}
		if w.CRM != nil {
			if err := w.CRM.CreateLead(ctx, event); err != nil {
				middleware.RecordIntegrationError("crm")
				errs = append(errs, fmt.Errorf("crm sync: %w", err))
			}
		}
		return errors.Join(errs...)

	case entity.LeadStatusChanged:
		w.Log.Info().Str("lead_id", event.LeadID).Str("status", string(event.Status)).Msg("lead status changed")
		return nil

	default:
		// Nobody handles it; ack so it does not sit in the queue.
		w.Log.Warn().Str("event", string(event.Type)).Msg("unknown event type")
		return nil
	}
}
