package queries

import (
	"context"
	"time"

	"gitlab.com/creatorhub/commission_api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ledgerTotalsQuery = `SELECT
	COALESCE(SUM(CASE WHEN type = 'subscription' THEN amount ELSE 0 END), 0) AS direct,
	COALESCE(SUM(CASE WHEN type LIKE 'commission_level_%' THEN amount ELSE 0 END), 0) AS network,
	COALESCE(SUM(CASE WHEN type = 'withdrawal' THEN amount ELSE 0 END), 0) AS withdrawals,
	COALESCE(SUM(CASE WHEN (type = 'subscription' OR type LIKE 'commission_level_%') AND created_at >= ? THEN amount ELSE 0 END), 0) AS monthly,
	COUNT(DISTINCT CASE WHEN type = 'subscription' AND created_at >= ? THEN from_user_id END) AS subscriber_count
FROM transactions
WHERE creator_id = ? AND status = 'completed'`

func (repo *Repo) GetPaymentEvent(ctx context.Context, eventID string) (*model.PaymentEvent, error) {
	ev := model.PaymentEvent{}
	if err := repo.Conn.WithContext(ctx).Where("event_id = ?", eventID).First(&ev).Error; err != nil {
		return nil, mapError(err)
	}
	return &ev, nil
}

func (repo *Repo) CreatePaymentEvent(ctx context.Context, ev *model.PaymentEvent) error {
	return mapError(repo.Conn.WithContext(ctx).Create(ev).Error)
}

func (repo *Repo) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	return mapError(repo.Conn.WithContext(ctx).Create(tx).Error)
}

func (repo *Repo) GetTransactions(ctx context.Context, creatorID string, limit int) ([]model.Transaction, error) {
	list := []model.Transaction{}
	err := repo.ConnReader.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, mapError(err)
	}
	return list, nil
}

func (repo *Repo) GetTransactionsByEvent(ctx context.Context, eventID string) ([]model.Transaction, error) {
	list := []model.Transaction{}
	err := repo.Conn.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("level ASC").
		Find(&list).Error
	if err != nil {
		return nil, mapError(err)
	}
	return list, nil
}

func (repo *Repo) GetLedgerTotals(ctx context.Context, creatorID string, monthStart time.Time) (*model.LedgerTotals, error) {
	totals := model.LedgerTotals{}
	err := repo.Conn.WithContext(ctx).
		Raw(ledgerTotalsQuery, monthStart, monthStart, creatorID).
		Scan(&totals).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &totals, nil
}

func (repo *Repo) GetFinancials(ctx context.Context, creatorID string) (*model.CreatorFinancials, error) {
	f := model.CreatorFinancials{}
	if err := repo.Conn.WithContext(ctx).Where("creator_id = ?", creatorID).First(&f).Error; err != nil {
		return nil, mapError(err)
	}
	return &f, nil
}

// EnsureFinancials materializes an all-zero snapshot if the creator has none
func (repo *Repo) EnsureFinancials(ctx context.Context, creatorID string) error {
	err := repo.Conn.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CreatorFinancials{CreatorID: creatorID, UpdatedAt: time.Now()}).Error
	return mapError(err)
}

// IncrementFinancials applies the delta in a single UPDATE so concurrent
// credits to the same creator never overwrite each other
func (repo *Repo) IncrementFinancials(ctx context.Context, creatorID string, d model.FinancialsDelta) error {
	db := repo.Conn.WithContext(ctx).
		Model(&model.CreatorFinancials{}).
		Where("creator_id = ?", creatorID).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("available_balance + ?", d.Available),
			"total_earnings":    gorm.Expr("total_earnings + ?", d.Total),
			"monthly_revenue":   gorm.Expr("monthly_revenue + ?", d.Monthly),
			"direct_earnings":   gorm.Expr("direct_earnings + ?", d.Direct),
			"network_earnings":  gorm.Expr("network_earnings + ?", d.Network),
			"total_withdrawals": gorm.Expr("total_withdrawals + ?", d.Withdrawals),
			"updated_at":        time.Now(),
		})
	if db.Error != nil {
		return mapError(db.Error)
	}
	if db.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DebitAvailableBalance moves amount from the available balance to the
// withdrawals total. It reports false when the balance is too low.
func (repo *Repo) DebitAvailableBalance(ctx context.Context, creatorID string, amount int64) (bool, error) {
	db := repo.Conn.WithContext(ctx).
		Model(&model.CreatorFinancials{}).
		Where("creator_id = ? AND available_balance >= ?", creatorID, amount).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("available_balance - ?", amount),
			"total_withdrawals": gorm.Expr("total_withdrawals + ?", amount),
			"updated_at":        time.Now(),
		})
	if db.Error != nil {
		return false, mapError(db.Error)
	}
	return db.RowsAffected == 1, nil
}

func (repo *Repo) LockFinancials(ctx context.Context, creatorID string) error {
	f := model.CreatorFinancials{}
	err := repo.Conn.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("creator_id = ?", creatorID).
		First(&f).Error
	return mapError(err)
}

func (repo *Repo) SaveFinancials(ctx context.Context, f *model.CreatorFinancials) error {
	f.UpdatedAt = time.Now()
	err := repo.Conn.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(f).Error
	return mapError(err)
}

func (repo *Repo) ListFinancialsCreatorIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := repo.Conn.WithContext(ctx).
		Model(&model.CreatorFinancials{}).
		Order("creator_id").
		Pluck("creator_id", &ids).Error
	if err != nil {
		return nil, mapError(err)
	}
	return ids, nil
}
