package payments

import (
	"github.com/segmentio/encoding/json"
	"gitlab.com/creatorhub/commission_api/model"
)

type EventType string

const (
	// EventType_PaymentCompleted carries the gross amount of a payment; the
	// service splits it between creator, upline and platform
	EventType_PaymentCompleted EventType = "payment_completed"
	// EventType_CreatorEarning is sent by producers that already paid the
	// creator share and only need the upline commissions
	EventType_CreatorEarning EventType = "creator_earning"
)

// Event is the payload of a message on the payments topic
type Event struct {
	Event          EventType `json:"event"`
	EventID        string    `json:"event_id"`
	PayeeCreatorID string    `json:"payee_creator_id"`
	GrossAmount    int64     `json:"gross_amount"`
	PayerUserID    string    `json:"payer_user_id"`
}

func (e *Event) FromBinary(msg []byte) error {
	return json.Unmarshal(msg, e)
}

func (e *Event) ToBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Event) Earning() model.EarningEvent {
	return model.EarningEvent{
		EventID:        e.EventID,
		PayeeCreatorID: e.PayeeCreatorID,
		GrossAmount:    e.GrossAmount,
		PayerUserID:    e.PayerUserID,
	}
}
