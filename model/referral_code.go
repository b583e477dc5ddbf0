package model

import (
	"strings"
	"time"
)

type ReferralCode struct {
	Code           string    `gorm:"column:code;primaryKey" json:"code"`
	OwnerCreatorID string    `gorm:"column:owner_creator_id" json:"owner_creator_id"`
	OwnerUsername  string    `gorm:"column:owner_username" json:"owner_username"`
	Active         bool      `gorm:"column:active" json:"active"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ReferralCode) TableName() string {
	return "referral_codes"
}

func (rc *ReferralCode) Owner() CreatorRef {
	return CreatorRef{ID: rc.OwnerCreatorID, Username: rc.OwnerUsername}
}

// ReferralCodeResponse is what a creator gets back to share with recruits
type ReferralCodeResponse struct {
	Code string `json:"code"`
	Link string `json:"link"`
}

// NormalizeReferralCode uppercases a code for storage and lookup
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ReferralCodePrefix keeps the ascii letters and digits of the username,
// uppercased and truncated to n characters
func ReferralCodePrefix(username string, n int) string {
	b := strings.Builder{}
	for _, r := range strings.ToUpper(username) {
		if b.Len() >= n {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewReferralCode builds an active code for the creator from the username
// prefix and the given random suffix
func NewReferralCode(owner *Creator, prefixLength int, suffix string) *ReferralCode {
	return &ReferralCode{
		Code:           NormalizeReferralCode(ReferralCodePrefix(owner.Username, prefixLength) + suffix),
		OwnerCreatorID: owner.ID,
		OwnerUsername:  owner.Username,
		Active:         true,
	}
}
