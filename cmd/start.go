package cmd

import (
	"github.com/rs/zerolog/log"

	"gitlab.com/creatorhub/commission_api/cmd/commands"
	"gitlab.com/creatorhub/commission_api/config"
	"gitlab.com/creatorhub/commission_api/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API and the payments consumer",
	Long:  `Serve the referral and ledger API and consume payment events from the configured kafka topic`,
	Run: func(cmd *cobra.Command, args []string) {
		// load server configuration from server
		log.Debug().Msg("Loading server configuration")
		cfg := config.LoadConfig(viper.GetViper())
		if cfg.Storage.Driver != config.StorageDriver_Memory {
			log.Debug().Msg("Running migrations")
			commands.Migrate(cfg)
		}

		// start a new server
		log.Debug().Str("section", "init").Msg("Starting new server instance")
		srv := server.NewServer(cfg)
		// listen for new messages
		log.Info().Str("section", "init").Msg("Listening for incoming events")
		srv.Listen()
	},
}
