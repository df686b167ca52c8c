package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gr8terthings/signup-proxy/internal/entity"
)

type Worker struct {
	Channel *amqp.Channel
	Store   entity.FailureRepositoryInterface
	Logger  *log.Logger
}

func NewWorker(ch *amqp.Channel, store entity.FailureRepositoryInterface, logger *log.Logger) *Worker {
	return &Worker{
		Channel: ch,
		Store:   store,
		Logger:  logger,
	}
}

// Start consumes until ctx is cancelled or the delivery channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Logger.Printf(" [*] worker waiting on '%s'", queueName)

	for {
		select {
		case <-ctx.Done():
			w.Logger.Println("⚠️ worker stopping")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if err := w.handle(ctx, d.Body); err != nil {
				w.Logger.Printf("❌ [WORKER] %v", err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}

func (w *Worker) handle(ctx context.Context, body []byte) error {
	var f entity.SideEffectFailure
	if err := json.Unmarshal(body, &f); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if f.ID == "" || f.Kind == "" {
		return fmt.Errorf("incomplete failure message: %s", string(body))
	}

	if err := w.Store.Save(ctx, f); err != nil {
		return fmt.Errorf("save failure %s: %w", f.ID, err)
	}

	w.Logger.Printf("✅ [WORKER] recorded %s failure for %s", f.Kind, f.Email)
	return nil
}
