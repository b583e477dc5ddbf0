package model

import "time"

type PaymentEventKind string

const (
	PaymentEventKind_Commission PaymentEventKind = "commission"
	PaymentEventKind_Payment    PaymentEventKind = "payment"
)

// PaymentEvent records that a payment was processed, keyed by the external
// event id so redelivered webhooks are recognised.
type PaymentEvent struct {
	EventID         string           `gorm:"column:event_id;primaryKey" json:"event_id"`
	Kind            PaymentEventKind `gorm:"column:kind" json:"kind"`
	PayeeCreatorID  string           `gorm:"column:payee_creator_id" json:"payee_creator_id"`
	PayerUserID     string           `gorm:"column:payer_user_id" json:"payer_user_id"`
	GrossAmount     int64            `gorm:"column:gross_amount" json:"gross_amount"`
	CreatorShare    int64            `gorm:"column:creator_share" json:"creator_share"`
	CommissionTotal int64            `gorm:"column:commission_total" json:"commission_total"`
	PlatformAmount  int64            `gorm:"column:platform_amount" json:"platform_amount"`
	ProcessedAt     time.Time        `gorm:"column:processed_at" json:"processed_at"`
}

func (PaymentEvent) TableName() string {
	return "payment_events"
}

// EarningEvent is the input of the commission engine: creator PayeeCreatorID
// received GrossAmount from PayerUserID.
type EarningEvent struct {
	EventID        string `json:"event_id" form:"event_id"`
	PayeeCreatorID string `json:"payee_creator_id" form:"payee_creator_id"`
	GrossAmount    int64  `json:"gross_amount" form:"gross_amount"`
	PayerUserID    string `json:"payer_user_id" form:"payer_user_id"`
}

// Payout is one commission paid to an ancestor
type Payout struct {
	Level         int    `json:"level"`
	CreatorID     string `json:"creator_id"`
	Username      string `json:"username"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transaction_id"`
}

// CommissionResult reports what a payment event distributed. The platform
// remainder is GrossAmount - CreatorShare - TotalCommission.
type CommissionResult struct {
	EventID         string   `json:"event_id"`
	GrossAmount     int64    `json:"gross_amount"`
	CreatorShare    int64    `json:"creator_share"`
	TotalCommission int64    `json:"total_commission"`
	PlatformAmount  int64    `json:"platform_amount"`
	Payouts         []Payout `json:"payouts"`
	Replayed        bool     `json:"replayed"`
}
