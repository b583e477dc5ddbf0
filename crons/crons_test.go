package crons

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gitlab.com/creatorhub/commission_api/config"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/queries/memory"
	"gitlab.com/creatorhub/commission_api/service"
)

func TestRecomputeFinancialsCron(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	cfg := config.LoadConfig(v)
	store := memory.New()
	srv := service.NewService(cfg, store, nil)
	ctx := context.Background()

	_, err := srv.RegisterCreator(ctx, "id-a", "a")
	require.NoError(t, err)
	_, err = srv.AppendTransaction(ctx, model.NewTransaction("id-a", model.TransactionType_Subscription, 900, "sub"))
	require.NoError(t, err)
	// the credit was never applied, so the snapshot is still empty
	f, err := srv.GetFinancials(ctx, "id-a")
	require.NoError(t, err)
	require.Equal(t, int64(0), f.AvailableBalance)

	require.Nil(t, GetCronByID("unknown", srv))
	callback := GetCronByID("recompute_financials", srv)
	require.NotNil(t, callback)
	callback()

	f, err = srv.GetFinancials(ctx, "id-a")
	require.NoError(t, err)
	require.Equal(t, int64(900), f.AvailableBalance)
	require.Equal(t, int64(900), f.DirectEarnings)
}
