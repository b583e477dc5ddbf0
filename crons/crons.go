package crons

import (
	"github.com/robfig/cron"
	"github.com/rs/zerolog/log"
	"gitlab.com/creatorhub/commission_api/config"
	"gitlab.com/creatorhub/commission_api/service"
)

var cronService *cron.Cron

// Start Initiate the crons based on the given configuration file
func Start(crons config.Crons, srv *service.Service) {
	cronService = cron.New()
	for id, schedule := range crons {
		callback := GetCronByID(id, srv)
		if callback == nil {
			log.Warn().Str("section", "crons").Str("cron", id).Msg("Unknown cron id, skipping")
			continue
		}
		if err := cronService.AddFunc(schedule, callback); err != nil {
			log.Error().Err(err).Str("section", "crons").Str("cron", id).Str("schedule", schedule).Msg("Unable to schedule cron")
		}
	}
	cronService.Start()
}

// GetCronByID get a function to execute based on the id
func GetCronByID(id string, srv *service.Service) func() {
	switch id {
	case "recompute_financials":
		return func() {
			CronRecomputeFinancials(srv)
		}
	}
	return nil
}

// Close godoc
func Close() {
	if cronService != nil {
		cronService.Stop()
	}
}
