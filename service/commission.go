package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/creatorhub/commission_api/conv"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/monitor"
	"gitlab.com/creatorhub/commission_api/queries"
)

// DistributeEarning pays the upline of the payee its commission on a gross
// payment. All payouts of an event are written in one unit of work and a
// repeated event id returns the stored result without paying again.
func (service *Service) DistributeEarning(ctx context.Context, event model.EarningEvent) (*model.CommissionResult, error) {
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	return service.processEvent(ctx, event, model.PaymentEventKind_Commission, func(tx queries.Storage, result *model.CommissionResult) error {
		return service.distribute(ctx, tx, event, result)
	})
}

func validateEvent(event model.EarningEvent) error {
	if event.EventID == "" {
		return ErrMissingEventID
	}
	if event.PayeeCreatorID == "" {
		return ErrCreatorNotFound
	}
	if event.GrossAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// processEvent runs apply once per event id inside a transaction and records
// the event. Conflicting concurrent units of work are retried, and a retry
// that finds the event recorded returns the stored result.
func (service *Service) processEvent(
	ctx context.Context,
	event model.EarningEvent,
	kind model.PaymentEventKind,
	apply func(tx queries.Storage, result *model.CommissionResult) error,
) (*model.CommissionResult, error) {
	var result *model.CommissionResult
	err := service.withRetry(ctx, "process_"+string(kind), func() error {
		return service.repo.Transaction(ctx, func(tx queries.Storage) error {
			stored, err := tx.GetPaymentEvent(ctx, event.EventID)
			if err == nil {
				result, err = service.storedResult(ctx, tx, stored)
				return err
			}
			if !errors.Is(err, queries.ErrRecordNotFound) {
				return err
			}

			r := &model.CommissionResult{
				EventID:     event.EventID,
				GrossAmount: event.GrossAmount,
				Payouts:     []model.Payout{},
			}
			if err := apply(tx, r); err != nil {
				return err
			}
			err = tx.CreatePaymentEvent(ctx, &model.PaymentEvent{
				EventID:         event.EventID,
				Kind:            kind,
				PayeeCreatorID:  event.PayeeCreatorID,
				PayerUserID:     event.PayerUserID,
				GrossAmount:     event.GrossAmount,
				CreatorShare:    r.CreatorShare,
				CommissionTotal: r.TotalCommission,
				PlatformAmount:  r.PlatformAmount,
				ProcessedAt:     service.now(),
			})
			if err != nil {
				return err
			}
			result = r
			return nil
		})
	})
	if err != nil {
		monitor.PaymentEvents.WithLabelValues("failed").Inc()
		log.Error().Err(err).
			Str("section", "service").
			Str("action", "process_"+string(kind)).
			Str("event_id", event.EventID).
			Str("creator_id", event.PayeeCreatorID).
			Msg("Unable to process payment event")
		return nil, err
	}

	if result.Replayed {
		monitor.PaymentEvents.WithLabelValues("replayed").Inc()
		log.Info().Str("section", "service").Str("event_id", event.EventID).Msg("Payment event already processed")
		return result, nil
	}
	monitor.PaymentEvents.WithLabelValues("processed").Inc()
	for _, p := range result.Payouts {
		level := strconv.Itoa(p.Level)
		monitor.CommissionPayouts.WithLabelValues(level).Inc()
		monitor.CommissionAmount.WithLabelValues(level).Add(float64(p.Amount))
	}
	log.Info().
		Str("section", "service").
		Str("action", "process_"+string(kind)).
		Str("event_id", event.EventID).
		Str("creator_id", event.PayeeCreatorID).
		Int64("gross", result.GrossAmount).
		Int64("commission", result.TotalCommission).
		Int("payouts", len(result.Payouts)).
		Msg("Payment event processed")
	return result, nil
}

// distribute walks the upline of the payee and credits each ancestor its
// truncated share of the gross amount
func (service *Service) distribute(ctx context.Context, tx queries.Storage, event model.EarningEvent, result *model.CommissionResult) error {
	membership, err := tx.GetMembership(ctx, event.PayeeCreatorID)
	if errors.Is(err, queries.ErrRecordNotFound) {
		// forest roots owe nothing upwards
		return nil
	}
	if err != nil {
		return err
	}

	depth := model.MaxCommissionDepth
	if len(service.rates) < depth {
		depth = len(service.rates)
	}
	chain, err := service.resolveAncestors(ctx, tx, membership, depth)
	if err != nil {
		return err
	}
	for _, ancestor := range chain {
		level := ancestor.Distance
		amount := conv.ApplyRate(event.GrossAmount, service.rates[level-1])

		t := model.NewTransaction(
			ancestor.CreatorID,
			model.CommissionType(level),
			amount,
			fmt.Sprintf("Level %d commission from %s", level, membership.CreatorUsername),
		)
		t.FromUserID = event.PayerUserID
		t.RelatedCreatorID = membership.CreatorID
		t.RelatedCreatorUsername = membership.CreatorUsername
		t.EventID = event.EventID
		t.Level = level
		if err := service.appendTransaction(ctx, tx, t); err != nil {
			return err
		}
		if err := service.applyCredit(ctx, tx, ancestor.CreatorID, model.CreditBucket_Network, amount); err != nil {
			return err
		}

		result.Payouts = append(result.Payouts, model.Payout{
			Level:         level,
			CreatorID:     ancestor.CreatorID,
			Username:      ancestor.Username,
			Amount:        amount,
			TransactionID: t.ID,
		})
		result.TotalCommission += amount
	}
	return nil
}

// storedResult rebuilds the result of an event that was already processed
func (service *Service) storedResult(ctx context.Context, tx queries.Storage, ev *model.PaymentEvent) (*model.CommissionResult, error) {
	txs, err := tx.GetTransactionsByEvent(ctx, ev.EventID)
	if err != nil {
		return nil, err
	}
	result := &model.CommissionResult{
		EventID:         ev.EventID,
		GrossAmount:     ev.GrossAmount,
		CreatorShare:    ev.CreatorShare,
		TotalCommission: ev.CommissionTotal,
		PlatformAmount:  ev.PlatformAmount,
		Payouts:         []model.Payout{},
		Replayed:        true,
	}
	ids := []string{}
	for _, t := range txs {
		if t.Type.IsCommission() {
			ids = append(ids, t.CreatorID)
		}
	}
	creators, err := tx.GetCreatorsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range txs {
		if !t.Type.IsCommission() {
			continue
		}
		result.Payouts = append(result.Payouts, model.Payout{
			Level:         t.Level,
			CreatorID:     t.CreatorID,
			Username:      creators[t.CreatorID].Username,
			Amount:        t.Amount,
			TransactionID: t.ID,
		})
	}
	return result, nil
}
