package payments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/net/kafka"
	"gitlab.com/creatorhub/commission_api/service"
)

type fakeConsumer struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	closed    bool
	cancel    context.CancelFunc
}

func (c *fakeConsumer) FetchMessage(ctx context.Context) (kafka.Message, error) {
	c.mu.Lock()
	if len(c.messages) == 0 {
		c.mu.Unlock()
		c.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := c.messages[0]
	c.messages = c.messages[1:]
	c.mu.Unlock()
	return msg, nil
}

func (c *fakeConsumer) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, msg := range msgs {
		c.committed = append(c.committed, msg.Offset)
	}
	return nil
}

func (c *fakeConsumer) Close() error {
	c.closed = true
	return nil
}

type fakeProcessor struct {
	payments  []model.EarningEvent
	earnings  []model.EarningEvent
	transient int
	permanent bool
}

func (p *fakeProcessor) result(event model.EarningEvent) (*model.CommissionResult, error) {
	if p.permanent {
		return nil, service.ErrCreatorNotFound
	}
	if p.transient > 0 {
		p.transient--
		return nil, errors.New("connection reset")
	}
	return &model.CommissionResult{EventID: event.EventID}, nil
}

func (p *fakeProcessor) ProcessPayment(_ context.Context, event model.EarningEvent) (*model.CommissionResult, error) {
	p.payments = append(p.payments, event)
	return p.result(event)
}

func (p *fakeProcessor) DistributeEarning(_ context.Context, event model.EarningEvent) (*model.CommissionResult, error) {
	p.earnings = append(p.earnings, event)
	return p.result(event)
}

func message(offset int64, payload string) kafka.Message {
	return kafka.Message{Offset: offset, Value: []byte(payload)}
}

func run(processor *fakeProcessor, messages ...kafka.Message) *fakeConsumer {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	consumer := &fakeConsumer{messages: messages, cancel: cancel}
	app := NewApp(processor, consumer)
	app.backoffMin = time.Millisecond
	app.backoffMax = 2 * time.Millisecond
	So(app.Run(ctx), ShouldBeNil)
	return consumer
}

func TestPaymentsConsumer(t *testing.T) {
	Convey("Given a payments consumer", t, func() {
		processor := &fakeProcessor{}

		Convey("Payments and earnings are routed and committed", func() {
			consumer := run(processor,
				message(1, `{"event":"payment_completed","event_id":"pay-1","payee_creator_id":"c1","gross_amount":10000,"payer_user_id":"fan"}`),
				message(2, `{"event":"creator_earning","event_id":"pay-2","payee_creator_id":"c1","gross_amount":500}`),
			)
			So(len(processor.payments), ShouldEqual, 1)
			So(processor.payments[0].GrossAmount, ShouldEqual, 10000)
			So(processor.payments[0].PayerUserID, ShouldEqual, "fan")
			So(len(processor.earnings), ShouldEqual, 1)
			So(processor.earnings[0].EventID, ShouldEqual, "pay-2")
			So(consumer.committed, ShouldResemble, []int64{1, 2})
			So(consumer.closed, ShouldBeTrue)
		})

		Convey("Malformed messages are committed without processing", func() {
			consumer := run(processor,
				message(7, `not json`),
				message(8, `{"event":"refund","event_id":"x"}`),
			)
			So(processor.payments, ShouldBeEmpty)
			So(processor.earnings, ShouldBeEmpty)
			So(consumer.committed, ShouldResemble, []int64{7, 8})
		})

		Convey("Transient failures are retried before the commit", func() {
			processor.transient = 2
			consumer := run(processor,
				message(3, `{"event":"payment_completed","event_id":"pay-3","payee_creator_id":"c1","gross_amount":100}`),
			)
			So(len(processor.payments), ShouldEqual, 3)
			So(consumer.committed, ShouldResemble, []int64{3})
		})

		Convey("Permanent failures are committed once", func() {
			processor.permanent = true
			consumer := run(processor,
				message(4, `{"event":"payment_completed","event_id":"pay-4","payee_creator_id":"ghost","gross_amount":100}`),
			)
			So(len(processor.payments), ShouldEqual, 1)
			So(consumer.committed, ShouldResemble, []int64{4})
		})
	})
}
