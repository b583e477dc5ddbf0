package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gitlab.com/creatorhub/commission_api/config"
	"gitlab.com/creatorhub/commission_api/queries"
	"gitlab.com/creatorhub/commission_api/service"
)

var recomputeCreatorID string

func init() {
	recomputeCmd.Flags().StringVar(&recomputeCreatorID, "creator", "", "only rebuild the financials of this creator id")
	rootCmd.AddCommand(recomputeCmd)
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild the financials snapshots from the ledger",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig(viper.GetViper())
		repo, err := queries.NewRepo(cfg.DatabaseCluster)
		if err != nil {
			log.Fatal().Err(err).Str("section", "recompute").Msg("Unable to connect to database")
		}
		defer queries.Close()

		srv := service.NewService(cfg, repo, nil)
		ctx := context.Background()
		now := time.Now()

		if recomputeCreatorID != "" {
			f, err := srv.RecomputeFinancials(ctx, recomputeCreatorID, now)
			if err != nil {
				log.Fatal().Err(err).Str("section", "recompute").Str("creator_id", recomputeCreatorID).Msg("Unable to recompute financials")
			}
			log.Info().Str("section", "recompute").Str("creator_id", f.CreatorID).
				Int64("available_balance", f.AvailableBalance).Msg("Financials recomputed")
			return
		}

		done, err := srv.RecomputeAllFinancials(ctx, now)
		if err != nil {
			log.Fatal().Err(err).Str("section", "recompute").Int("done", done).Msg("Unable to recompute financials")
		}
		log.Info().Str("section", "recompute").Int("done", done).Msg("Financials recomputed")
	},
}
