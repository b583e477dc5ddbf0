package crons

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/creatorhub/commission_api/service"
)

// CronRecomputeFinancials rebuilds every financials snapshot from the ledger
func CronRecomputeFinancials(srv *service.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	done, err := srv.RecomputeAllFinancials(ctx, start)
	if err != nil {
		log.Error().Err(err).Str("section", "crons").Str("cron", "recompute_financials").
			Int("done", done).Msg("Unable to recompute financials")
		return
	}
	log.Info().Str("section", "crons").Str("cron", "recompute_financials").
		Int("done", done).Dur("took", time.Since(start)).Msg("Financials recomputed")
}
