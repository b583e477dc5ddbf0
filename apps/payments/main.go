package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/net/kafka"
	"gitlab.com/creatorhub/commission_api/service"
)

// ErrInvalidEvent marks a message that can never be processed
var ErrInvalidEvent = errors.New("INVALID_PAYMENT_EVENT")

// Processor is the part of the service fed by payment events
type Processor interface {
	ProcessPayment(ctx context.Context, event model.EarningEvent) (*model.CommissionResult, error)
	DistributeEarning(ctx context.Context, event model.EarningEvent) (*model.CommissionResult, error)
}

// App consumes the payments topic. An offset is committed once its message
// was processed or rejected for good, so a crash replays the message and the
// event id keeps the replay from paying twice.
type App struct {
	processor  Processor
	consumer   kafka.KafkaConsumer
	backoffMin time.Duration
	backoffMax time.Duration
}

// NewApp creates the payments consumer
func NewApp(processor Processor, consumer kafka.KafkaConsumer) *App {
	return &App{
		processor:  processor,
		consumer:   consumer,
		backoffMin: 100 * time.Millisecond,
		backoffMax: 10 * time.Second,
	}
}

// Process a new kafka message
func (app *App) Process(ctx context.Context, msg kafka.Message) (*model.CommissionResult, error) {
	event := Event{}
	if err := event.FromBinary(msg.Value); err != nil {
		return nil, errors.Wrap(ErrInvalidEvent, err.Error())
	}
	switch event.Event {
	case EventType_PaymentCompleted:
		return app.processor.ProcessPayment(ctx, event.Earning())
	case EventType_CreatorEarning:
		return app.processor.DistributeEarning(ctx, event.Earning())
	default:
		return nil, errors.Wrap(ErrInvalidEvent, fmt.Sprintf("unknown event type %q", event.Event))
	}
}

// Run reads messages until the context is cancelled
func (app *App) Run(ctx context.Context) error {
	log.Info().Str("section", "payments").Str("action", "start").Msg("Payments consumer started")
	defer func() {
		if err := app.consumer.Close(); err != nil {
			log.Error().Err(err).Str("section", "payments").Msg("Unable to close consumer")
		}
		log.Info().Str("section", "payments").Str("action", "stop").Msg("Payments consumer stopped")
	}()

	for {
		msg, err := app.consumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := app.handle(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := app.consumer.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// handle processes msg until it succeeds or fails permanently. Only a
// cancelled context makes it return an error.
func (app *App) handle(ctx context.Context, msg kafka.Message) error {
	backoff := app.backoffMin
	for {
		result, err := app.Process(ctx, msg)
		switch {
		case err == nil:
			log.Debug().Str("section", "payments").
				Str("event_id", result.EventID).
				Int64("offset", msg.Offset).
				Bool("replayed", result.Replayed).
				Msg("Payment event handled")
			return nil
		case errors.Is(err, ErrInvalidEvent) || service.IsPermanent(err):
			log.Error().Err(err).Str("section", "payments").
				Int64("offset", msg.Offset).
				Int("partition", msg.Partition).
				Msg("Dropping payment event that cannot be processed")
			return nil
		}

		log.Warn().Err(err).Str("section", "payments").
			Int64("offset", msg.Offset).
			Dur("backoff", backoff).
			Msg("Payment event failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > app.backoffMax {
			backoff = app.backoffMax
		}
	}
}
