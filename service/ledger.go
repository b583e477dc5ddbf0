package service

import (
	"context"
	"time"

	gouuid "github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/queries"
)

const (
	defaultTransactionsLimit = 20
	maxTransactionsLimit     = 100
)

// AppendTransaction writes a ledger entry and returns its id. The creation
// time is always assigned here.
func (service *Service) AppendTransaction(ctx context.Context, tx *model.Transaction) (string, error) {
	if err := service.appendTransaction(ctx, service.repo, tx); err != nil {
		return "", err
	}
	return tx.ID, nil
}

func (service *Service) appendTransaction(ctx context.Context, repo queries.Storage, tx *model.Transaction) error {
	if tx.CreatorID == "" || tx.Type == "" {
		return errors.New("transaction requires a creator and a type")
	}
	if tx.Amount < 0 {
		return ErrInvalidAmount
	}
	if tx.ID == "" {
		id, err := gouuid.NewV4()
		if err != nil {
			return err
		}
		tx.ID = id.String()
	}
	if tx.Status == "" {
		tx.Status = model.TransactionStatus_Completed
	}
	tx.CreatedAt = service.now()
	return repo.CreateTransaction(ctx, tx)
}

// GetTransactions returns the latest ledger entries of the creator, most
// recent first
func (service *Service) GetTransactions(ctx context.Context, creatorID string, limit int) (*model.TransactionList, error) {
	if limit <= 0 {
		limit = defaultTransactionsLimit
	}
	if limit > maxTransactionsLimit {
		limit = maxTransactionsLimit
	}
	list, err := service.repo.GetTransactions(ctx, creatorID, limit)
	if err != nil {
		return nil, err
	}
	return &model.TransactionList{
		Transactions: list,
		Meta: model.PagingMeta{
			Page:   1,
			Count:  int64(len(list)),
			Limit:  limit,
			Order:  "created_at DESC",
			Filter: make(map[string]interface{}),
		},
	}, nil
}

// GetFinancials returns the balance snapshot of the creator, materializing a
// zero one on first read
func (service *Service) GetFinancials(ctx context.Context, creatorID string) (*model.CreatorFinancials, error) {
	f, err := service.repo.GetFinancials(ctx, creatorID)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, queries.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := service.getCreator(ctx, service.repo, creatorID); err != nil {
		return nil, err
	}
	if err := service.repo.EnsureFinancials(ctx, creatorID); err != nil {
		return nil, err
	}
	return service.repo.GetFinancials(ctx, creatorID)
}

// ApplyCredit adds amount to the balance of the creator in one atomic increment
func (service *Service) ApplyCredit(ctx context.Context, creatorID string, bucket model.CreditBucket, amount int64) error {
	return service.applyCredit(ctx, service.repo, creatorID, bucket, amount)
}

func (service *Service) applyCredit(ctx context.Context, repo queries.Storage, creatorID string, bucket model.CreditBucket, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if err := repo.EnsureFinancials(ctx, creatorID); err != nil {
		return err
	}
	return repo.IncrementFinancials(ctx, creatorID, model.CreditDelta(bucket, amount))
}

// RequestWithdrawal debits the available balance and records the withdrawal.
// A request id makes the call safe to repeat.
func (service *Service) RequestWithdrawal(ctx context.Context, creatorID string, amount int64, requestID string) (*model.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := service.getCreator(ctx, service.repo, creatorID); err != nil {
		return nil, err
	}
	eventID := ""
	if requestID != "" {
		eventID = "withdrawal:" + requestID
	}

	var withdrawal *model.Transaction
	err := service.withRetry(ctx, "request_withdrawal", func() error {
		return service.repo.Transaction(ctx, func(tx queries.Storage) error {
			if eventID != "" {
				existing, err := tx.GetTransactionsByEvent(ctx, eventID)
				if err != nil {
					return err
				}
				for i := range existing {
					if existing[i].CreatorID == creatorID && existing[i].Type == model.TransactionType_Withdrawal {
						withdrawal = &existing[i]
						return nil
					}
				}
			}
			if err := tx.EnsureFinancials(ctx, creatorID); err != nil {
				return err
			}
			ok, err := tx.DebitAvailableBalance(ctx, creatorID, amount)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientFunds
			}
			withdrawal = model.NewTransaction(creatorID, model.TransactionType_Withdrawal, amount, "Withdrawal")
			withdrawal.EventID = eventID
			return service.appendTransaction(ctx, tx, withdrawal)
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("section", "service").Str("action", "request_withdrawal").
		Str("creator_id", creatorID).Int64("amount", amount).Str("transaction_id", withdrawal.ID).
		Msg("Withdrawal recorded")
	return withdrawal, nil
}

// RecomputeFinancials rebuilds the snapshot of the creator from the ledger and
// refreshes the display aggregates of the membership
func (service *Service) RecomputeFinancials(ctx context.Context, creatorID string, now time.Time) (*model.CreatorFinancials, error) {
	var derived model.CreatorFinancials
	var upline []string
	err := service.repo.Transaction(ctx, func(tx queries.Storage) error {
		// credits and withdrawals wait until the snapshot is rewritten
		if err := tx.LockFinancials(ctx, creatorID); err != nil && !errors.Is(err, queries.ErrRecordNotFound) {
			return err
		}
		totals, err := tx.GetLedgerTotals(ctx, creatorID, monthStart(now))
		if err != nil {
			return err
		}
		derived = totals.Financials(creatorID)

		cached, err := tx.GetFinancials(ctx, creatorID)
		if err != nil && !errors.Is(err, queries.ErrRecordNotFound) {
			return err
		}
		if cached != nil && (cached.AvailableBalance != derived.AvailableBalance || cached.TotalEarnings != derived.TotalEarnings) {
			log.Warn().Str("section", "service").Str("action", "recompute_financials").
				Str("creator_id", creatorID).
				Int64("cached_available", cached.AvailableBalance).
				Int64("ledger_available", derived.AvailableBalance).
				Int64("cached_total", cached.TotalEarnings).
				Int64("ledger_total", derived.TotalEarnings).
				Msg("Financials drifted from the ledger")
		}
		if err := tx.SaveFinancials(ctx, &derived); err != nil {
			return err
		}
		if err := tx.UpdateMembershipAggregates(ctx, creatorID, derived.TotalEarnings, derived.MonthlyRevenue, totals.SubscriberCount); err != nil {
			return err
		}
		m, err := tx.GetMembership(ctx, creatorID)
		if err == nil {
			upline = m.AncestorIDs
		} else if !errors.Is(err, queries.ErrRecordNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// the aggregates show up in the trees of the upline
	service.trees.Invalidate(ctx, upline...)
	return &derived, nil
}

// RecomputeAllFinancials runs RecomputeFinancials for every creator with a
// snapshot and returns how many were rebuilt
func (service *Service) RecomputeAllFinancials(ctx context.Context, now time.Time) (int, error) {
	ids, err := service.repo.ListFinancialsCreatorIDs(ctx)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if _, err := service.RecomputeFinancials(ctx, id, now); err != nil {
			log.Error().Err(err).Str("section", "service").Str("action", "recompute_financials").
				Str("creator_id", id).Msg("Unable to recompute financials")
			continue
		}
		done++
	}
	return done, nil
}

func monthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
