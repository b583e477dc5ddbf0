package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/queries"
)

// RegisterCreator adds or renames a creator in the directory
func (service *Service) RegisterCreator(ctx context.Context, creatorID, username string) (*model.Creator, error) {
	creatorID = strings.TrimSpace(creatorID)
	username = strings.TrimSpace(username)
	if creatorID == "" || username == "" || creatorID == model.PlatformCreatorID {
		return nil, ErrCreatorNotFound
	}
	creator := &model.Creator{ID: creatorID, Username: username}
	if err := service.repo.UpsertCreator(ctx, creator); err != nil {
		if errors.Is(err, queries.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, errors.Wrap(err, "upsert creator")
	}
	log.Debug().Str("section", "service").Str("action", "register_creator").
		Str("creator_id", creatorID).Str("username", username).
		Msg("Creator registered")
	return creator, nil
}

// GetCreator returns the directory entry of the creator
func (service *Service) GetCreator(ctx context.Context, creatorID string) (*model.Creator, error) {
	return service.getCreator(ctx, service.repo, creatorID)
}
