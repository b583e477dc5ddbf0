package service

import (
	"context"
	"fmt"

	"gitlab.com/creatorhub/commission_api/conv"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/queries"
)

// ProcessPayment splits a completed payment between the payee, its upline and
// the platform. The payee keeps the creator share, commissions are taken from
// the gross amount and the platform keeps what is left, truncation remainders
// included.
func (service *Service) ProcessPayment(ctx context.Context, event model.EarningEvent) (*model.CommissionResult, error) {
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	return service.processEvent(ctx, event, model.PaymentEventKind_Payment, func(tx queries.Storage, result *model.CommissionResult) error {
		payee, err := service.getCreator(ctx, tx, event.PayeeCreatorID)
		if err != nil {
			return err
		}

		share := conv.ApplyRate(event.GrossAmount, service.creatorShare)
		direct := model.NewTransaction(payee.ID, model.TransactionType_Subscription, share, fmt.Sprintf("Subscription payment from %s", event.PayerUserID))
		direct.FromUserID = event.PayerUserID
		direct.EventID = event.EventID
		if err := service.appendTransaction(ctx, tx, direct); err != nil {
			return err
		}
		if err := service.applyCredit(ctx, tx, payee.ID, model.CreditBucket_Direct, share); err != nil {
			return err
		}
		result.CreatorShare = share

		if err := service.distribute(ctx, tx, event, result); err != nil {
			return err
		}

		result.PlatformAmount = event.GrossAmount - share - result.TotalCommission
		if result.PlatformAmount < 0 {
			// rates misconfigured above 100%
			return ErrInvalidAmount
		}
		platform := model.NewTransaction(model.PlatformCreatorID, model.TransactionType_PlatformRevenue, result.PlatformAmount,
			fmt.Sprintf("Platform share of payment to %s", payee.Username))
		platform.FromUserID = event.PayerUserID
		platform.RelatedCreatorID = payee.ID
		platform.RelatedCreatorUsername = payee.Username
		platform.EventID = event.EventID
		return service.appendTransaction(ctx, tx, platform)
	})
}
