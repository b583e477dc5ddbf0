package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/monitor"
	"gitlab.com/creatorhub/commission_api/queries"
)

// maxCycleCheckHops bounds the upline walk done before a membership is inserted
const maxCycleCheckHops = 10

// AddMembership places the creator in the referral forest under the owner of
// the given code. Unknown creators are added to the directory with the given
// username.
func (service *Service) AddMembership(ctx context.Context, creatorID, creatorUsername, code string) (*model.NetworkMembership, error) {
	var membership *model.NetworkMembership
	var moved []string
	err := service.repo.Transaction(ctx, func(tx queries.Storage) error {
		rc, err := service.getActiveCode(ctx, tx, code)
		if err != nil {
			return err
		}
		if rc.OwnerCreatorID == creatorID {
			return ErrReferralCycle
		}

		if _, err := tx.GetMembership(ctx, creatorID); err == nil {
			return ErrDuplicateMembership
		} else if !errors.Is(err, queries.ErrRecordNotFound) {
			return err
		}

		creator, err := tx.GetCreatorByID(ctx, creatorID)
		if errors.Is(err, queries.ErrRecordNotFound) {
			if creatorUsername == "" {
				return ErrCreatorNotFound
			}
			creator = &model.Creator{ID: creatorID, Username: creatorUsername}
			if err := tx.UpsertCreator(ctx, creator); err != nil {
				if errors.Is(err, queries.ErrDuplicateKey) {
					return ErrUsernameTaken
				}
				return err
			}
		} else if err != nil {
			return err
		}

		owner := rc.Owner()
		if c, err := tx.GetCreatorByID(ctx, owner.ID); err == nil {
			owner.Username = c.Username
		}

		ownerLevel := 0
		ancestors := []string{owner.ID}
		ownerMembership, err := tx.GetMembership(ctx, owner.ID)
		switch {
		case err == nil:
			ownerLevel = ownerMembership.Level
			ancestors = uplineBelow(ownerMembership)
			if err := service.checkCycle(ctx, tx, creatorID, ownerMembership); err != nil {
				return err
			}
		case !errors.Is(err, queries.ErrRecordNotFound):
			return err
		}

		now := service.now()
		membership = &model.NetworkMembership{
			CreatorID:          creator.ID,
			CreatorUsername:    creator.Username,
			ReferredByID:       owner.ID,
			ReferredByUsername: owner.Username,
			ReferralCodeUsed:   rc.Code,
			AncestorIDs:        ancestors,
			Level:              ownerLevel + 1,
			JoinedAt:           now,
			IsActive:           true,
			UpdatedAt:          now,
		}
		if err := tx.CreateMembership(ctx, membership); err != nil {
			if errors.Is(err, queries.ErrDuplicateKey) {
				return ErrDuplicateMembership
			}
			return err
		}
		// a former root brings its downline along
		if moved, err = service.relinkDownline(ctx, tx, membership); err != nil {
			return err
		}
		return tx.EnsureFinancials(ctx, creator.ID)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateMembership) || errors.Is(err, ErrReferralCycle) {
			log.Error().Err(err).Str("section", "service").Str("action", "add_membership").
				Str("creator_id", creatorID).Str("code", code).
				Msg("Membership rejected")
		}
		return nil, err
	}

	service.trees.Invalidate(ctx, membership.AncestorIDs...)
	if len(moved) > 0 {
		service.trees.Invalidate(ctx, append(moved, membership.CreatorID)...)
	}
	monitor.MembershipsCreated.Inc()
	log.Info().Str("section", "service").Str("action", "add_membership").
		Str("creator_id", membership.CreatorID).
		Str("referred_by_id", membership.ReferredByID).
		Int("level", membership.Level).
		Int("relinked", len(moved)).
		Msg("Creator joined the network")
	return membership, nil
}

// relinkDownline rewrites the level and upline of every member below m. Only
// a creator that was a forest root until now has a downline when it joins.
func (service *Service) relinkDownline(ctx context.Context, tx queries.Storage, m *model.NetworkMembership) ([]string, error) {
	moved := []string{}
	seen := map[string]bool{m.CreatorID: true}
	queue := []*model.NetworkMembership{m}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		children, err := tx.GetDirectDownline(ctx, parent.CreatorID)
		if err != nil {
			return nil, err
		}
		for i := range children {
			child := children[i]
			if seen[child.CreatorID] {
				continue
			}
			seen[child.CreatorID] = true
			child.Level = parent.Level + 1
			child.AncestorIDs = uplineBelow(parent)
			if err := tx.UpdateMembershipUpline(ctx, child.CreatorID, child.Level, child.AncestorIDs); err != nil {
				return nil, err
			}
			moved = append(moved, child.CreatorID)
			queue = append(queue, &child)
		}
	}
	return moved, nil
}

// uplineBelow is the denormalized upline of a direct recruit of parent
func uplineBelow(parent *model.NetworkMembership) []string {
	ids := append([]string{parent.CreatorID}, parent.AncestorIDs...)
	if len(ids) > model.MaxCommissionDepth {
		ids = ids[:model.MaxCommissionDepth]
	}
	return ids
}

// checkCycle walks the upline of the future referrer and fails if the new
// member is already part of it
func (service *Service) checkCycle(ctx context.Context, repo queries.Storage, creatorID string, referrer *model.NetworkMembership) error {
	current := referrer
	for hop := 0; hop < maxCycleCheckHops && current != nil; hop++ {
		if current.CreatorID == creatorID || current.ReferredByID == creatorID {
			return ErrReferralCycle
		}
		if current.ReferredByID == "" {
			return nil
		}
		next, err := repo.GetMembership(ctx, current.ReferredByID)
		if errors.Is(err, queries.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

// GetDirectDownline returns the creators directly referred by username
func (service *Service) GetDirectDownline(ctx context.Context, username string) ([]model.NetworkMembership, error) {
	creator, err := service.getCreatorByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return service.repo.GetDirectDownline(ctx, creator.ID)
}

// GetAncestorChain returns up to maxDepth ancestors of the creator, nearest
// first. The last element may be a forest root without membership.
func (service *Service) GetAncestorChain(ctx context.Context, username string, maxDepth int) ([]model.Ancestor, error) {
	creator, err := service.getCreatorByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	membership, err := service.repo.GetMembership(ctx, creator.ID)
	if errors.Is(err, queries.ErrRecordNotFound) {
		return []model.Ancestor{}, nil
	}
	if err != nil {
		return nil, err
	}
	return service.resolveAncestors(ctx, service.repo, membership, clampDepth(maxDepth))
}

// resolveAncestors follows the referred_by links of a membership upward for at
// most depth hops. The walk ends at a forest root and stops early at the first
// ancestor missing from the directory or seen twice.
func (service *Service) resolveAncestors(ctx context.Context, repo queries.Storage, m *model.NetworkMembership, depth int) ([]model.Ancestor, error) {
	chain := make([]model.Ancestor, 0, depth)
	seen := map[string]bool{m.CreatorID: true}
	next := m.ReferredByID
	for distance := 1; distance <= depth && next != ""; distance++ {
		if seen[next] {
			log.Warn().Err(ErrReferralCycle).
				Str("section", "service").
				Str("creator_id", m.CreatorID).
				Str("ancestor_id", next).
				Msg("Referral chain loops, stopping the walk")
			break
		}
		seen[next] = true

		creator, err := repo.GetCreatorByID(ctx, next)
		if errors.Is(err, queries.ErrRecordNotFound) {
			log.Warn().Err(ErrBrokenReferralChain).
				Str("section", "service").
				Str("creator_id", m.CreatorID).
				Str("ancestor_id", next).
				Int("level", distance).
				Msg("Referral chain is broken, stopping the walk")
			break
		}
		if err != nil {
			return nil, err
		}

		ancestor := model.Ancestor{CreatorID: next, Username: creator.Username, Distance: distance}
		membership, err := repo.GetMembership(ctx, next)
		switch {
		case err == nil:
			ancestor.Membership = membership
			next = membership.ReferredByID
		case errors.Is(err, queries.ErrRecordNotFound):
			next = ""
		default:
			return nil, err
		}
		chain = append(chain, ancestor)
	}
	return chain, nil
}

func clampDepth(depth int) int {
	if depth < 1 || depth > model.MaxCommissionDepth {
		return model.MaxCommissionDepth
	}
	return depth
}
