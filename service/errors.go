package service

import "github.com/pkg/errors"

var ErrInvalidReferralCode = errors.New("INVALID_REFERRAL_CODE")
var ErrDuplicateMembership = errors.New("DUPLICATE_MEMBERSHIP")
var ErrReferralCycle = errors.New("REFERRAL_CYCLE")
var ErrBrokenReferralChain = errors.New("BROKEN_REFERRAL_CHAIN")
var ErrConcurrentBalanceUpdateConflict = errors.New("CONCURRENT_BALANCE_UPDATE_CONFLICT")
var ErrCodeGenerationExhausted = errors.New("CODE_GENERATION_EXHAUSTED")
var ErrCreatorNotFound = errors.New("CREATOR_NOT_FOUND")
var ErrUsernameTaken = errors.New("USERNAME_TAKEN")
var ErrInvalidAmount = errors.New("INVALID_AMOUNT")
var ErrInsufficientFunds = errors.New("INSUFFICIENT_FUNDS")
var ErrMissingEventID = errors.New("MISSING_EVENT_ID")

// IsPermanent reports whether retrying the same request can never succeed
func IsPermanent(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidReferralCode),
		errors.Is(err, ErrDuplicateMembership),
		errors.Is(err, ErrReferralCycle),
		errors.Is(err, ErrCreatorNotFound),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrMissingEventID):
		return true
	}
	return false
}
