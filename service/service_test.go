package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gitlab.com/creatorhub/commission_api/config"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/queries/memory"
)

func testConfig() config.Config {
	v := viper.New()
	config.SetDefaults(v)
	return config.LoadConfig(v)
}

func newTestService(t testing.TB) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewService(testConfig(), store, nil), store
}

// steppingClock returns a clock that moves one second forward on each call
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func creatorID(username string) string {
	return "id-" + username
}

// buildChain registers the first username as a forest root and makes every
// following one join with the referral code of the previous one
func buildChain(t testing.TB, service *Service, usernames ...string) {
	t.Helper()
	ctx := context.Background()
	if _, err := service.RegisterCreator(ctx, creatorID(usernames[0]), usernames[0]); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(usernames); i++ {
		code, err := service.IssueOrGetReferralCode(ctx, creatorID(usernames[i-1]))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := service.AddMembership(ctx, creatorID(usernames[i]), usernames[i], code.Code); err != nil {
			t.Fatal(fmt.Errorf("join %s: %w", usernames[i], err))
		}
	}
}

func balanceOf(t testing.TB, service *Service, username string) model.CreatorFinancials {
	t.Helper()
	f, err := service.GetFinancials(context.Background(), creatorID(username))
	if err != nil {
		t.Fatal(err)
	}
	return *f
}

func earning(eventID, username string, gross int64) model.EarningEvent {
	return model.EarningEvent{
		EventID:        eventID,
		PayeeCreatorID: creatorID(username),
		GrossAmount:    gross,
		PayerUserID:    "fan-1",
	}
}
