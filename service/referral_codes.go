package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/monitor"
	"gitlab.com/creatorhub/commission_api/queries"
)

// IssueOrGetReferralCode returns the active code of the creator and the link to
// share it, creating the code on first use
func (service *Service) IssueOrGetReferralCode(ctx context.Context, creatorID string) (*model.ReferralCodeResponse, error) {
	creator, err := service.getCreator(ctx, service.repo, creatorID)
	if err != nil {
		return nil, err
	}
	attempts := service.cfg.Referral.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		// a concurrent request may have issued the code in the meantime
		rc, err := service.repo.GetActiveReferralCodeByOwner(ctx, creator.ID)
		if err == nil {
			return service.codeResponse(rc), nil
		}
		if !errors.Is(err, queries.ErrRecordNotFound) {
			return nil, errors.Wrap(err, "get active referral code")
		}

		rc = model.NewReferralCode(creator, service.cfg.Referral.PrefixLength, service.suffix(service.cfg.Referral.SuffixLength))
		err = service.repo.CreateReferralCode(ctx, rc)
		if err == nil {
			monitor.ReferralCodesIssued.Inc()
			log.Info().Str("section", "service").Str("action", "issue_referral_code").
				Str("creator_id", creator.ID).Str("code", rc.Code).
				Msg("Referral code issued")
			return service.codeResponse(rc), nil
		}
		if !errors.Is(err, queries.ErrDuplicateKey) {
			return nil, errors.Wrap(err, "create referral code")
		}
		log.Debug().Err(err).Str("section", "service").Str("action", "issue_referral_code").
			Str("creator_id", creator.ID).Int("attempt", attempt).
			Msg("Referral code collision")
	}
	log.Error().Str("section", "service").Str("action", "issue_referral_code").
		Str("creator_id", creator.ID).Int("attempts", attempts).
		Msg("Unable to generate a unique referral code")
	return nil, ErrCodeGenerationExhausted
}

// ValidateReferralCode resolves an active code to its owner
func (service *Service) ValidateReferralCode(ctx context.Context, code string) (*model.CreatorRef, error) {
	rc, err := service.getActiveCode(ctx, service.repo, code)
	if err != nil {
		return nil, err
	}
	owner := rc.Owner()
	creator, err := service.repo.GetCreatorByID(ctx, owner.ID)
	switch {
	case err == nil:
		owner.Username = creator.Username
	case !errors.Is(err, queries.ErrRecordNotFound):
		return nil, errors.Wrap(err, "get code owner")
	}
	return &owner, nil
}

// DeactivateReferralCode makes the code fail validation from now on
func (service *Service) DeactivateReferralCode(ctx context.Context, code string) error {
	err := service.repo.SetReferralCodeActive(ctx, model.NormalizeReferralCode(code), false)
	if errors.Is(err, queries.ErrRecordNotFound) {
		return ErrInvalidReferralCode
	}
	return err
}

func (service *Service) getActiveCode(ctx context.Context, repo queries.Storage, code string) (*model.ReferralCode, error) {
	code = model.NormalizeReferralCode(code)
	if code == "" {
		return nil, ErrInvalidReferralCode
	}
	rc, err := repo.GetReferralCode(ctx, code)
	if errors.Is(err, queries.ErrRecordNotFound) {
		return nil, ErrInvalidReferralCode
	}
	if err != nil {
		return nil, errors.Wrap(err, "get referral code")
	}
	if !rc.Active {
		return nil, ErrInvalidReferralCode
	}
	return rc, nil
}

func (service *Service) codeResponse(rc *model.ReferralCode) *model.ReferralCodeResponse {
	return &model.ReferralCodeResponse{
		Code: rc.Code,
		Link: strings.TrimRight(service.cfg.Referral.BaseURL, "/") + "/convite/" + rc.Code,
	}
}
