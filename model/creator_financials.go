package model

import "time"

// CreatorFinancials is the cached balance snapshot of a creator. Amounts are in
// the smallest currency unit.
type CreatorFinancials struct {
	CreatorID        string    `gorm:"column:creator_id;primaryKey" json:"creator_id"`
	AvailableBalance int64     `gorm:"column:available_balance" json:"available_balance"`
	TotalEarnings    int64     `gorm:"column:total_earnings" json:"total_earnings"`
	MonthlyRevenue   int64     `gorm:"column:monthly_revenue" json:"monthly_revenue"`
	DirectEarnings   int64     `gorm:"column:direct_earnings" json:"direct_earnings"`
	NetworkEarnings  int64     `gorm:"column:network_earnings" json:"network_earnings"`
	TotalWithdrawals int64     `gorm:"column:total_withdrawals" json:"total_withdrawals"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (CreatorFinancials) TableName() string {
	return "creator_financials"
}

// CreditBucket selects which earnings column a credit lands in
type CreditBucket string

const (
	CreditBucket_Direct  CreditBucket = "direct"
	CreditBucket_Network CreditBucket = "network"
)

// FinancialsDelta is applied to a snapshot as one atomic increment
type FinancialsDelta struct {
	Available   int64
	Total       int64
	Monthly     int64
	Direct      int64
	Network     int64
	Withdrawals int64
}

// CreditDelta builds the delta of a credit to the given bucket
func CreditDelta(bucket CreditBucket, amount int64) FinancialsDelta {
	d := FinancialsDelta{Available: amount, Total: amount, Monthly: amount}
	if bucket == CreditBucket_Direct {
		d.Direct = amount
	} else {
		d.Network = amount
	}
	return d
}

// Apply adds the delta to the snapshot in place
func (f *CreatorFinancials) Apply(d FinancialsDelta) {
	f.AvailableBalance += d.Available
	f.TotalEarnings += d.Total
	f.MonthlyRevenue += d.Monthly
	f.DirectEarnings += d.Direct
	f.NetworkEarnings += d.Network
	f.TotalWithdrawals += d.Withdrawals
}

// LedgerTotals are the sums derived from the transaction log of one creator
type LedgerTotals struct {
	Direct          int64 `gorm:"column:direct"`
	Network         int64 `gorm:"column:network"`
	Withdrawals     int64 `gorm:"column:withdrawals"`
	Monthly         int64 `gorm:"column:monthly"`
	SubscriberCount int64 `gorm:"column:subscriber_count"`
}

// Financials turns ledger totals into the snapshot they imply
func (lt LedgerTotals) Financials(creatorID string) CreatorFinancials {
	total := lt.Direct + lt.Network
	return CreatorFinancials{
		CreatorID:        creatorID,
		AvailableBalance: total - lt.Withdrawals,
		TotalEarnings:    total,
		MonthlyRevenue:   lt.Monthly,
		DirectEarnings:   lt.Direct,
		NetworkEarnings:  lt.Network,
		TotalWithdrawals: lt.Withdrawals,
	}
}
