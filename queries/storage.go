package queries

import (
	"context"
	"time"

	"gitlab.com/creatorhub/commission_api/model"
)

// Storage is the persistence contract of the commission service. Every method
// is a single atomic statement; Transaction groups several of them.
type Storage interface {
	// Transaction runs fn in one unit of work. Calls made on tx inside fn are
	// committed together or not at all.
	Transaction(ctx context.Context, fn func(tx Storage) error) error

	UpsertCreator(ctx context.Context, creator *model.Creator) error
	GetCreatorByID(ctx context.Context, id string) (*model.Creator, error)
	GetCreatorByUsername(ctx context.Context, username string) (*model.Creator, error)
	GetCreatorsByIDs(ctx context.Context, ids []string) (map[string]model.Creator, error)

	GetReferralCode(ctx context.Context, code string) (*model.ReferralCode, error)
	GetActiveReferralCodeByOwner(ctx context.Context, creatorID string) (*model.ReferralCode, error)
	CreateReferralCode(ctx context.Context, rc *model.ReferralCode) error
	SetReferralCodeActive(ctx context.Context, code string, active bool) error

	GetMembership(ctx context.Context, creatorID string) (*model.NetworkMembership, error)
	CreateMembership(ctx context.Context, m *model.NetworkMembership) error
	GetDirectDownline(ctx context.Context, creatorID string) ([]model.NetworkMembership, error)
	UpdateMembershipAggregates(ctx context.Context, creatorID string, total, monthly, subscribers int64) error
	UpdateMembershipUpline(ctx context.Context, creatorID string, level int, ancestorIDs []string) error

	GetPaymentEvent(ctx context.Context, eventID string) (*model.PaymentEvent, error)
	CreatePaymentEvent(ctx context.Context, ev *model.PaymentEvent) error

	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransactions(ctx context.Context, creatorID string, limit int) ([]model.Transaction, error)
	GetTransactionsByEvent(ctx context.Context, eventID string) ([]model.Transaction, error)
	GetLedgerTotals(ctx context.Context, creatorID string, monthStart time.Time) (*model.LedgerTotals, error)

	GetFinancials(ctx context.Context, creatorID string) (*model.CreatorFinancials, error)
	// LockFinancials holds the snapshot row of the creator until the enclosing
	// transaction ends
	LockFinancials(ctx context.Context, creatorID string) error
	EnsureFinancials(ctx context.Context, creatorID string) error
	IncrementFinancials(ctx context.Context, creatorID string, delta model.FinancialsDelta) error
	DebitAvailableBalance(ctx context.Context, creatorID string, amount int64) (bool, error)
	SaveFinancials(ctx context.Context, f *model.CreatorFinancials) error
	ListFinancialsCreatorIDs(ctx context.Context) ([]string, error)
}
