package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gitlab.com/creatorhub/commission_api/cmd/commands"
	"gitlab.com/creatorhub/commission_api/config"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database migrations and exit",
	Run: func(cmd *cobra.Command, args []string) {
		commands.Migrate(config.LoadConfig(viper.GetViper()))
	},
}
