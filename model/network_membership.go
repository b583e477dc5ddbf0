package model

import (
	"time"

	"github.com/lib/pq"
)

// MaxCommissionDepth is the number of upline levels that earn from a creator
const MaxCommissionDepth = 4

// NetworkMembership is the position of a creator in the referral forest.
// Creators without a row are forest roots.
type NetworkMembership struct {
	CreatorID          string `gorm:"column:creator_id;primaryKey" json:"creator_id"`
	CreatorUsername    string `gorm:"column:creator_username" json:"creator_username"`
	ReferredByID       string `gorm:"column:referred_by_id" json:"referred_by_id"`
	ReferredByUsername string `gorm:"column:referred_by_username" json:"referred_by_username"`
	ReferralCodeUsed   string `gorm:"column:referral_code_used" json:"referral_code_used"`
	// AncestorIDs holds up to MaxCommissionDepth upline ids, nearest first
	AncestorIDs pq.StringArray `gorm:"column:ancestor_ids;type:text[]" json:"ancestor_ids"`
	Level       int            `gorm:"column:level" json:"level"`
	JoinedAt    time.Time      `gorm:"column:joined_at" json:"joined_at"`
	IsActive    bool           `gorm:"column:is_active" json:"is_active"`

	// display aggregates, the ledger is the source of truth
	TotalEarnings   int64     `gorm:"column:total_earnings" json:"total_earnings"`
	MonthlyEarnings int64     `gorm:"column:monthly_earnings" json:"monthly_earnings"`
	SubscriberCount int64     `gorm:"column:subscriber_count" json:"subscriber_count"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (NetworkMembership) TableName() string {
	return "creator_network"
}

// Clone returns a copy that does not share the ancestor slice
func (m NetworkMembership) Clone() NetworkMembership {
	if m.AncestorIDs != nil {
		m.AncestorIDs = append(pq.StringArray{}, m.AncestorIDs...)
	}
	return m
}

// TreeNode is one member of a rendered referral tree
type TreeNode struct {
	Membership NetworkMembership `json:"membership"`
	Children   []*TreeNode       `json:"children"`
}

// Ancestor is one creator in the upline of another one. Distance 1 is the
// direct referrer. Membership is nil for a forest root.
type Ancestor struct {
	CreatorID  string             `json:"creator_id"`
	Username   string             `json:"username"`
	Distance   int                `json:"distance"`
	Membership *NetworkMembership `json:"membership,omitempty"`
}
