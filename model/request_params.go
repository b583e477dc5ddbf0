package model

// RegisterCreatorRequest godoc
type RegisterCreatorRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
}

// MembershipRequest places a creator under the owner of a referral code
type MembershipRequest struct {
	CreatorID       string `json:"creator_id" form:"creator_id" binding:"required"`
	CreatorUsername string `json:"creator_username" form:"creator_username"`
	ReferralCode    string `json:"referral_code" form:"referral_code" binding:"required"`
}

// WithdrawalRequest carries the amount as a decimal string such as "50.00"
type WithdrawalRequest struct {
	Amount    string `json:"amount" form:"amount" binding:"required"`
	RequestID string `json:"request_id" form:"request_id"`
}
