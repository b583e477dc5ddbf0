package queries

import (
	"context"
	"time"

	"gitlab.com/creatorhub/commission_api/model"
	"gorm.io/gorm/clause"
)

func (repo *Repo) UpsertCreator(ctx context.Context, creator *model.Creator) error {
	now := time.Now()
	if creator.CreatedAt.IsZero() {
		creator.CreatedAt = now
	}
	creator.UpdatedAt = now
	err := repo.Conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "updated_at"}),
		}).
		Create(creator).Error
	return mapError(err)
}

func (repo *Repo) GetCreatorByID(ctx context.Context, id string) (*model.Creator, error) {
	creator := model.Creator{}
	err := repo.Conn.WithContext(ctx).Where("id = ?", id).First(&creator).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &creator, nil
}

func (repo *Repo) GetCreatorByUsername(ctx context.Context, username string) (*model.Creator, error) {
	creator := model.Creator{}
	err := repo.Conn.WithContext(ctx).Where("lower(username) = lower(?)", username).First(&creator).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &creator, nil
}

func (repo *Repo) GetCreatorsByIDs(ctx context.Context, ids []string) (map[string]model.Creator, error) {
	creators := make(map[string]model.Creator, len(ids))
	if len(ids) == 0 {
		return creators, nil
	}
	list := []model.Creator{}
	if err := repo.Conn.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, mapError(err)
	}
	for _, c := range list {
		creators[c.ID] = c
	}
	return creators, nil
}
