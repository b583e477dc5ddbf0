package queries

import (
	"context"

	"gitlab.com/creatorhub/commission_api/model"
)

func (repo *Repo) GetReferralCode(ctx context.Context, code string) (*model.ReferralCode, error) {
	rc := model.ReferralCode{}
	if err := repo.Conn.WithContext(ctx).Where("code = ?", code).First(&rc).Error; err != nil {
		return nil, mapError(err)
	}
	return &rc, nil
}

func (repo *Repo) GetActiveReferralCodeByOwner(ctx context.Context, creatorID string) (*model.ReferralCode, error) {
	rc := model.ReferralCode{}
	err := repo.Conn.WithContext(ctx).
		Where("owner_creator_id = ? AND active = ?", creatorID, true).
		First(&rc).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &rc, nil
}

// CreateReferralCode inserts a new code. Both a taken code and a second active
// code for the same owner fail with ErrDuplicateKey.
func (repo *Repo) CreateReferralCode(ctx context.Context, rc *model.ReferralCode) error {
	return mapError(repo.Conn.WithContext(ctx).Create(rc).Error)
}

func (repo *Repo) SetReferralCodeActive(ctx context.Context, code string, active bool) error {
	db := repo.Conn.WithContext(ctx).
		Model(&model.ReferralCode{}).
		Where("code = ?", code).
		Update("active", active)
	if db.Error != nil {
		return mapError(db.Error)
	}
	if db.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
