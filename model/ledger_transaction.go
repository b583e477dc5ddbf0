package model

import (
	"fmt"
	"time"

	gouuid "github.com/nu7hatch/gouuid"
)

type TransactionType string

const (
	TransactionType_Subscription     TransactionType = "subscription"
	TransactionType_CommissionLevel1 TransactionType = "commission_level_1"
	TransactionType_CommissionLevel2 TransactionType = "commission_level_2"
	TransactionType_CommissionLevel3 TransactionType = "commission_level_3"
	TransactionType_CommissionLevel4 TransactionType = "commission_level_4"
	TransactionType_Withdrawal       TransactionType = "withdrawal"
	TransactionType_PlatformRevenue  TransactionType = "platform_revenue"
)

// CommissionType returns the ledger type for a commission paid at the given
// level (1 = direct referrer)
func CommissionType(level int) TransactionType {
	return TransactionType(fmt.Sprintf("commission_level_%d", level))
}

func (t TransactionType) IsCommission() bool {
	switch t {
	case TransactionType_CommissionLevel1, TransactionType_CommissionLevel2,
		TransactionType_CommissionLevel3, TransactionType_CommissionLevel4:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatus_Completed TransactionStatus = "completed"
	TransactionStatus_Pending   TransactionStatus = "pending"
	TransactionStatus_Failed    TransactionStatus = "failed"
)

// Transaction is an append-only ledger entry. CreatorID is the beneficiary.
type Transaction struct {
	ID                     string            `gorm:"column:id;primaryKey" json:"id"`
	CreatorID              string            `gorm:"column:creator_id" json:"creator_id"`
	Type                   TransactionType   `gorm:"column:type" json:"type"`
	Amount                 int64             `gorm:"column:amount" json:"amount"`
	Description            string            `gorm:"column:description" json:"description"`
	Status                 TransactionStatus `gorm:"column:status" json:"status"`
	FromUserID             string            `gorm:"column:from_user_id" json:"from_user_id"`
	RelatedCreatorID       string            `gorm:"column:related_creator_id" json:"related_creator_id,omitempty"`
	RelatedCreatorUsername string            `gorm:"column:related_creator_username" json:"related_creator_username,omitempty"`
	EventID                string            `gorm:"column:event_id" json:"event_id,omitempty"`
	Level                  int               `gorm:"column:level" json:"level,omitempty"`
	CreatedAt              time.Time         `gorm:"column:created_at" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// NewTransaction creates a completed ledger entry with a fresh id
func NewTransaction(creatorID string, txType TransactionType, amount int64, description string) *Transaction {
	id, _ := gouuid.NewV4()
	return &Transaction{
		ID:          id.String(),
		CreatorID:   creatorID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		Status:      TransactionStatus_Completed,
	}
}

// TransactionList godoc
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Meta         PagingMeta    `json:"meta"`
}
