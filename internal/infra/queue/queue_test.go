package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/visa-leads/internal/entity"
	"github.com/xavierca1/visa-leads/internal/infra/queue"
)

type fakeChannel struct {
	exchanges []string
	queues    map[string]amqp.Table
	bindings  []string

	published []amqp.Publishing
	keys      []string
	publishErr error

	deliveries chan amqp.Delivery
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{queues: map[string]amqp.Table{}, deliveries: make(chan amqp.Delivery, 10)}
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.exchanges = append(f.exchanges, name)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	f.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	f.bindings = append(f.bindings, exchange+"/"+key+"->"+name)
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

type fakeAcknowledger struct {
	acked, nacked, requeued int
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error { a.acked++; return nil }

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked++
	if requeue {
		a.requeued++
	}
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendNewLeadNotification(ctx context.Context, event entity.LeadEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockMailer) SendLeadConfirmation(ctx context.Context, event entity.LeadEvent) error {
	return m.Called(ctx, event).Error(0)
}

type mockCRM struct{ mock.Mock }

func (m *mockCRM) CreateLead(ctx context.Context, event entity.LeadEvent) error {
	return m.Called(ctx, event).Error(0)
}

func submittedEvent() entity.LeadEvent {
	return entity.NewLeadEvent(entity.LeadSubmitted, entity.Lead{
		ID:              "lead-1",
		FirstName:       "Ana",
		LastName:        "Lee",
		Email:           "ana@x.com",
		Status:          entity.StatusPending,
		VisasOfInterest: []entity.VisaType{entity.VisaO1},
		Country:         entity.UnknownCountry,
	}, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func delivery(t *testing.T, event entity.LeadEvent, ack *fakeAcknowledger) amqp.Delivery {
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body, DeliveryTag: 1}
}

func TestSetupTopology(t *testing.T) {
	ch := newFakeChannel()
	require.NoError(t, queue.SetupTopology(ch))

	assert.ElementsMatch(t, []string{queue.DLXName, queue.ExchangeName}, ch.exchanges)
	assert.Equal(t, queue.DLXName, ch.queues[queue.QueueName]["x-dead-letter-exchange"])
	assert.Contains(t, ch.queues, queue.DLQName)
	assert.ElementsMatch(t, []string{
		"ex.leads.dlx/lead.dead->q.lead-notifications.dlq",
		"ex.leads/lead.submitted->q.lead-notifications",
		"ex.leads/lead.status_changed->q.lead-notifications",
	}, ch.bindings)
}

func TestProducerPublishesByEventType(t *testing.T) {
	ch := newFakeChannel()
	producer := queue.NewProducer(ch)

	event := submittedEvent()
	require.NoError(t, producer.PublishLeadEvent(context.Background(), event))

	require.Len(t, ch.published, 1)
	assert.Equal(t, []string{"ex.leads/lead.submitted"}, ch.keys)
	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.NotEmpty(t, msg.MessageId)

	var decoded entity.LeadEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, event, decoded)
}

func TestProducerReportsPublishFailure(t *testing.T) {
	ch := newFakeChannel()
	ch.publishErr = errors.New("channel closed")

	err := queue.NewProducer(ch).PublishLeadEvent(context.Background(), submittedEvent())
	assert.ErrorContains(t, err, "channel closed")
}

func TestWorkerHandlesSubmittedLead(t *testing.T) {
	event := submittedEvent()
	mailer := new(mockMailer)
	mailer.On("SendNewLeadNotification", mock.Anything, event).Return(nil).Once()
	mailer.On("SendLeadConfirmation", mock.Anything, event).Return(nil).Once()
	crm := new(mockCRM)
	crm.On("CreateLead", mock.Anything, event).Return(nil).Once()

	w := queue.NewWorker(newFakeChannel(), mailer, crm, zerolog.Nop())
	ack := &fakeAcknowledger{}
	w.HandleDelivery(context.Background(), delivery(t, event, ack))

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 0, ack.nacked)
	mailer.AssertExpectations(t)
	crm.AssertExpectations(t)
}

func TestWorkerDeadLettersFailedIntegration(t *testing.T) {
	event := submittedEvent()
	mailer := new(mockMailer)
	mailer.On("SendNewLeadNotification", mock.Anything, mock.Anything).Return(nil)
	mailer.On("SendLeadConfirmation", mock.Anything, mock.Anything).Return(nil)
	crm := new(mockCRM)
	crm.On("CreateLead", mock.Anything, mock.Anything).Return(errors.New("crm down"))

	w := queue.NewWorker(newFakeChannel(), mailer, crm, zerolog.Nop())
	ack := &fakeAcknowledger{}
	w.HandleDelivery(context.Background(), delivery(t, event, ack))

	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.Equal(t, 0, ack.requeued)
}

func TestWorkerRejectsMalformedPayload(t *testing.T) {
	w := queue.NewWorker(newFakeChannel(), nil, nil, zerolog.Nop())
	ack := &fakeAcknowledger{}
	w.HandleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")})

	assert.Equal(t, 1, ack.nacked)
	assert.Equal(t, 0, ack.requeued)
}

func TestWorkerAcksStatusChangesAndUnknownEvents(t *testing.T) {
	mailer := new(mockMailer)
	w := queue.NewWorker(newFakeChannel(), mailer, nil, zerolog.Nop())

	changed := submittedEvent()
	changed.Type = entity.LeadStatusChanged
	unknown := submittedEvent()
	unknown.Type = "lead.archived"

	ack := &fakeAcknowledger{}
	w.HandleDelivery(context.Background(), delivery(t, changed, ack))
	w.HandleDelivery(context.Background(), delivery(t, unknown, ack))

	assert.Equal(t, 2, ack.acked)
	mailer.AssertNotCalled(t, "SendNewLeadNotification", mock.Anything, mock.Anything)
}

func TestWorkerStartStopsWithContext(t *testing.T) {
	ch := newFakeChannel()
	processed := make(chan struct{})
	mailer := new(mockMailer)
	mailer.On("SendNewLeadNotification", mock.Anything, mock.Anything).Return(nil)
	mailer.On("SendLeadConfirmation", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { close(processed) }).
		Return(nil).Once()
	w := queue.NewWorker(ch, mailer, nil, zerolog.Nop())

	ack := &fakeAcknowledger{}
	ch.deliveries <- delivery(t, submittedEvent(), ack)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, queue.QueueName) }()

	select {
	case <-processed:
	case <-time.After(time.Second):
		t.Fatal("delivery not processed")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
