// Package service publishes domain events to RabbitMQ. Errors are
// logged and swallowed so a broker outage never interrupts the main
// request flow.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/snooker-house-api/internal/model"
	"github.com/iliyamo/snooker-house-api/internal/queue"
)

// QueuePublisher publishes events to the broker. A fresh connection is
// dialed per publish; session completions are rare enough that the
// simplicity wins over connection pooling.
type QueuePublisher struct {
	URL string
}

func NewQueuePublisher(url string) *QueuePublisher { return &QueuePublisher{URL: url} }

// PublishSessionCompleted announces a settled session on the
// session.completed queue. Best effort: failures are logged and the
// caller is never blocked for long.
func (p *QueuePublisher) PublishSessionCompleted(s *model.Session) {
	ev := queue.SessionCompletedEvent{
		SessionID:     s.ID,
		VenueID:       s.VenueID,
		TableID:       s.TableID,
		OpenedBy:      s.OpenedBy,
		PricingMethod: s.PricingMethod,
		StartTime:     s.StartTime.UTC().Format(time.RFC3339),
		GameCost:      s.GameCost,
		ItemsRevenue:  s.ItemsRevenue,
		TotalCost:     s.TotalCost,
		TotalPaid:     s.TotalPaid,
		PaymentStatus: s.PaymentStatus,
		CompletedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if s.CustomerName != nil {
		ev.CustomerName = *s.CustomerName
	}
	if s.EndTime != nil {
		ev.EndTime = s.EndTime.UTC().Format(time.RFC3339)
	}
	if err := p.publish(ev); err != nil {
		log.Printf("rabbitmq: publish session.completed failed: %v", err)
	}
}

func (p *QueuePublisher) publish(ev queue.SessionCompletedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare. Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare("session.completed", true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(ctx,
		"",                  // default exchange
		"session.completed", // routing key = queue name
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}
