package events

import (
	"context"
	"time"

	"carrygo/pkg/kafka"
	"carrygo/pkg/logger"
	"carrygo/pkg/model"
)

// Event types emitted on the transaction-events topic.
const (
	TypeCreated   = "transaction.created"
	TypeConfirmed = "transaction.confirmed"
	TypePickedUp  = "transaction.picked_up"
	TypeDelivered = "transaction.delivered"
	TypeCompleted = "transaction.completed"
	TypeDisputed  = "transaction.disputed"
	TypeCanceled  = "transaction.canceled"
)

const schemaVersion = "1"

// TransactionEvent is the payload published on every lifecycle transition.
// Both parties' phones are included so the notification consumer needs no
// further lookups. The security code is never part of the payload.
type TransactionEvent struct {
	TransactionID string    `json:"transaction_id"`
	ShipmentID    string    `json:"shipment_id"`
	TripID        string    `json:"trip_id"`
	SenderPhone   string    `json:"sender_phone"`
	TravelerPhone string    `json:"traveler_phone"`
	Status        string    `json:"status"`
	AgreedPrice   float64   `json:"agreed_price"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// MessagePublisher is the subset of the Kafka producer the event publisher
// needs. Satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Publisher turns transaction transitions into keyed Kafka messages.
// Messages are keyed by transaction id, so all transitions of one
// transaction land on the same partition in order.
type Publisher struct {
	producer MessagePublisher
	source   string
	log      *logger.Logger
}

func NewPublisher(producer MessagePublisher, source string, log *logger.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

// PublishTransition emits one event for a completed transition. Publish
// failures are logged and swallowed: the state change is already committed,
// and the producer's DLQ path has had its chance.
func (p *Publisher) PublishTransition(ctx context.Context, eventType string, tx *model.Transaction) {
	event := TransactionEvent{
		TransactionID: tx.ID,
		ShipmentID:    tx.ShipmentID,
		TripID:        tx.TripID,
		SenderPhone:   tx.SenderPhone,
		TravelerPhone: tx.TravelerPhone,
		Status:        tx.Status,
		AgreedPrice:   tx.AgreedPrice,
		Currency:      tx.Currency,
		OccurredAt:    time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(tx.ID).
		WithValue(event).
		WithEventType(eventType).
		WithSchemaVersion(schemaVersion).
		WithSource(p.source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish transaction event",
			"event_type", eventType,
			"transaction_id", tx.ID,
			"error", err,
		)
		return
	}

	p.log.Debug("Transaction event published",
		"event_type", eventType,
		"transaction_id", tx.ID,
	)
}
