package queries

import (
	"context"
	"time"

	"github.com/lib/pq"
	"gitlab.com/creatorhub/commission_api/model"
)

func (repo *Repo) GetMembership(ctx context.Context, creatorID string) (*model.NetworkMembership, error) {
	m := model.NetworkMembership{}
	if err := repo.Conn.WithContext(ctx).Where("creator_id = ?", creatorID).First(&m).Error; err != nil {
		return nil, mapError(err)
	}
	return &m, nil
}

// CreateMembership fails with ErrDuplicateKey when the creator already has a
// position in the forest
func (repo *Repo) CreateMembership(ctx context.Context, m *model.NetworkMembership) error {
	return mapError(repo.Conn.WithContext(ctx).Create(m).Error)
}

func (repo *Repo) GetDirectDownline(ctx context.Context, creatorID string) ([]model.NetworkMembership, error) {
	list := []model.NetworkMembership{}
	err := repo.ConnReader.WithContext(ctx).
		Where("referred_by_id = ?", creatorID).
		Order("joined_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, mapError(err)
	}
	return list, nil
}

func (repo *Repo) UpdateMembershipAggregates(ctx context.Context, creatorID string, total, monthly, subscribers int64) error {
	err := repo.Conn.WithContext(ctx).
		Model(&model.NetworkMembership{}).
		Where("creator_id = ?", creatorID).
		Updates(map[string]interface{}{
			"total_earnings":   total,
			"monthly_earnings": monthly,
			"subscriber_count": subscribers,
			"updated_at":       time.Now(),
		}).Error
	return mapError(err)
}

// UpdateMembershipUpline rewrites the depth and the denormalized upline of a
// member after its subtree moved under a new referrer
func (repo *Repo) UpdateMembershipUpline(ctx context.Context, creatorID string, level int, ancestorIDs []string) error {
	db := repo.Conn.WithContext(ctx).
		Model(&model.NetworkMembership{}).
		Where("creator_id = ?", creatorID).
		Updates(map[string]interface{}{
			"level":        level,
			"ancestor_ids": pq.StringArray(ancestorIDs),
			"updated_at":   time.Now(),
		})
	if db.Error != nil {
		return mapError(db.Error)
	}
	if db.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
