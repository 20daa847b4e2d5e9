// Package notifications fans transaction events out to both parties as
// structured log notifications. Nothing is persisted: the Kafka topic is the
// source of truth and failed deliveries go through the consumer's retry and
// DLQ path.
package notifications

import (
	"context"
	"fmt"
	"time"

	"carrygo/internal/transactions/events"
	"carrygo/pkg/kafka"
	"carrygo/pkg/locale"
	"carrygo/pkg/logger"
)

type recipientMessages struct {
	sender   string
	traveler string
}

var templates = map[string]recipientMessages{
	events.TypeCreated: {
		sender:   "Your match request was created. Share the security code only at delivery.",
		traveler: "A sender wants you to carry their package. Review and confirm the request.",
	},
	events.TypeConfirmed: {
		sender:   "The traveler confirmed your package. Arrange the handoff before departure.",
		traveler: "You confirmed the package. It now counts against your trip's capacity.",
	},
	events.TypePickedUp: {
		sender:   "Your package was picked up and is on its way.",
		traveler: "Pickup recorded. Ask the sender for the security code at delivery.",
	},
	events.TypeDelivered: {
		sender:   "Delivery confirmed with your security code.",
		traveler: "Delivery confirmed. The payment can now be completed.",
	},
	events.TypeCompleted: {
		sender:   "The transaction is complete. Thanks for shipping with us.",
		traveler: "Payment captured. The transaction is complete.",
	},
	events.TypeDisputed: {
		sender:   "A dispute was opened on your transaction. Support will contact you.",
		traveler: "A dispute was opened on your transaction. Support will contact you.",
	},
	events.TypeCanceled: {
		sender:   "Your transaction was canceled. The shipment is open for matching again.",
		traveler: "The transaction was canceled and no longer counts against your trip.",
	},
}

// Dispatcher turns consumed transaction events into per-recipient
// notifications. Implements kafka.MessageHandler via Handle.
type Dispatcher struct {
	log *logger.Logger
}

func NewDispatcher(log *logger.Logger) *Dispatcher {
	return &Dispatcher{log: log}
}

func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.TransactionEvent
	if err := msg.DecodeValue(&event); err != nil {
		// Malformed payloads will never decode on retry.
		return kafka.NewPermanentError("failed to decode transaction event", err)
	}

	eventType := msg.GetEventType()
	messages, known := templates[eventType]
	if !known {
		return kafka.NewPermanentError(fmt.Sprintf("unknown event type [%s]", eventType), nil)
	}

	d.notify(event.SenderPhone, messages.sender, eventType, &event)
	d.notify(event.TravelerPhone, messages.traveler, eventType, &event)
	return nil
}

// notify emits one structured notification. The recipient's timezone is
// inferred from their phone prefix so a downstream delivery channel can pick
// a sensible send window.
func (d *Dispatcher) notify(phone, message, eventType string, event *events.TransactionEvent) {
	tz := locale.InferTimezoneFromPhone(phone)
	localTime := event.OccurredAt
	if loc, err := time.LoadLocation(tz); err == nil {
		localTime = event.OccurredAt.In(loc)
	}

	d.log.Info("notification dispatched",
		"recipient", phone,
		"event_type", eventType,
		"transaction_id", event.TransactionID,
		"message", message,
		"timezone", tz,
		"local_time", localTime.Format(time.RFC3339),
	)
}
