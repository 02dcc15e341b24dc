package messaging

import (
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/developerGoalsGuild/questbound-forge-sub001/internal/platform/logging"
)

// wireEvent is Event flattened to a JSON-safe shape for the exchange.
type wireEvent struct {
	Key     string   `json:"key"`
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
	Code    string   `json:"code,omitempty"`
	Detail  string   `json:"detail,omitempty"`
}

// Bus fans a Hub's local publishes out across processes over a RabbitMQ
// fanout exchange, replacing the single-process placeholder named in §4.10's
// Design Notes ("pending a shared, multi-process bus").
type Bus struct {
	Channel  *amqp.Channel
	Exchange string
	Hub      *Hub
	Logger   logging.Logger

	queueName string
}

// NewBus declares the fanout exchange and an exclusive queue bound to it,
// the same topology the teacher's common/mrabbitmq producers/consumers use
// for broadcast-style messages.
func NewBus(ch *amqp.Channel, exchange string, hub *Hub, logger logging.Logger) (*Bus, error) {
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, err
	}

	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return nil, err
	}

	return &Bus{Channel: ch, Exchange: exchange, Hub: hub, Logger: logger, queueName: q.Name}, nil
}

// Publish broadcasts evt to every process bound to the exchange, this one
// included. Callers use Hub.Publish for local delivery and Bus.Publish for
// the cross-process leg; because this process's own queue also receives the
// broadcast, Consume replays it onto the local Hub a second time, so local
// subscribers can see the same event twice.
func (b *Bus) Publish(key string, evt Event) error {
	payload, err := json.Marshal(wireEvent{Key: key, Type: evt.Type, Message: evt.Message, Code: evt.Code, Detail: evt.Detail})
	if err != nil {
		return err
	}

	return b.Channel.Publish(b.Exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        payload,
	})
}

// Consume runs until the channel closes, replaying every event received from
// the exchange (including this process's own publishes) onto the local Hub so
// WebSocket subscribers on this process see it too. It returns nil once the
// delivery channel is closed.
func (b *Bus) Consume() error {
	msgs, err := b.Channel.Consume(b.queueName, "", true, true, false, false, nil)
	if err != nil {
		return err
	}

	for d := range msgs {
		var we wireEvent
		if err := json.Unmarshal(d.Body, &we); err != nil {
			if b.Logger != nil {
				b.Logger.Errorf("discarding malformed chat bus message: %v", err)
			}

			continue
		}

		b.Hub.Publish(we.Key, Event{Type: we.Type, Message: we.Message, Code: we.Code, Detail: we.Detail})
	}

	return nil
}
