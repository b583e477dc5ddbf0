package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/require"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/queries"
)

func TestDistributeEarning(t *testing.T) {
	Convey("Given the chain a <- b <- c <- d", t, func() {
		ctx := context.Background()
		service, _ := newTestService(t)
		buildChain(t, service, "a", "b", "c", "d")

		Convey("A payment of 10000 to d pays c, b and a", func() {
			result, err := service.DistributeEarning(ctx, earning("evt-1", "d", 10000))
			So(err, ShouldBeNil)
			So(result.TotalCommission, ShouldEqual, 1800)
			So(len(result.Payouts), ShouldEqual, 3)
			So(result.Payouts[0].CreatorID, ShouldEqual, creatorID("c"))
			So(result.Payouts[0].Amount, ShouldEqual, 1000)
			So(result.Payouts[1].Amount, ShouldEqual, 500)
			So(result.Payouts[2].Amount, ShouldEqual, 300)
			So(result.Payouts[2].Username, ShouldEqual, "a")

			c := balanceOf(t, service, "c")
			So(c.NetworkEarnings, ShouldEqual, 1000)
			So(c.AvailableBalance, ShouldEqual, 1000)
			So(c.TotalEarnings, ShouldEqual, c.DirectEarnings+c.NetworkEarnings)
			So(balanceOf(t, service, "a").AvailableBalance, ShouldEqual, 300)
			So(balanceOf(t, service, "d").AvailableBalance, ShouldEqual, 0)

			list, err := service.GetTransactions(ctx, creatorID("c"), 10)
			So(err, ShouldBeNil)
			So(len(list.Transactions), ShouldEqual, 1)
			tx := list.Transactions[0]
			So(tx.Type, ShouldEqual, model.TransactionType_CommissionLevel1)
			So(tx.Description, ShouldContainSubstring, "d")
			So(tx.RelatedCreatorUsername, ShouldEqual, "d")
			So(tx.FromUserID, ShouldEqual, "fan-1")
			So(tx.EventID, ShouldEqual, "evt-1")

			list, err = service.GetTransactions(ctx, creatorID("a"), 10)
			So(err, ShouldBeNil)
			So(list.Transactions[0].Type, ShouldEqual, model.TransactionType_CommissionLevel3)
		})

		Convey("Commissions are truncated to whole minor units", func() {
			result, err := service.DistributeEarning(ctx, earning("evt-1", "d", 333))
			So(err, ShouldBeNil)
			So(result.Payouts[0].Amount, ShouldEqual, 33)
			So(result.Payouts[1].Amount, ShouldEqual, 16)
			So(result.Payouts[2].Amount, ShouldEqual, 9)
			So(result.TotalCommission, ShouldEqual, 58)
		})

		Convey("A short chain only pays the ancestors it has", func() {
			result, err := service.DistributeEarning(ctx, earning("evt-1", "c", 10000))
			So(err, ShouldBeNil)
			So(len(result.Payouts), ShouldEqual, 2)
			So(result.TotalCommission, ShouldEqual, 1500)
		})

		Convey("A root pays no commission", func() {
			result, err := service.DistributeEarning(ctx, earning("evt-1", "a", 10000))
			So(err, ShouldBeNil)
			So(result.TotalCommission, ShouldEqual, 0)
			So(result.Payouts, ShouldBeEmpty)
			for _, name := range []string{"a", "b", "c", "d"} {
				list, err := service.GetTransactions(ctx, creatorID(name), 10)
				So(err, ShouldBeNil)
				So(list.Transactions, ShouldBeEmpty)
			}
		})

		Convey("Replaying an event pays nothing twice", func() {
			first, err := service.DistributeEarning(ctx, earning("evt-1", "d", 10000))
			So(err, ShouldBeNil)
			So(first.Replayed, ShouldBeFalse)

			second, err := service.DistributeEarning(ctx, earning("evt-1", "d", 10000))
			So(err, ShouldBeNil)
			So(second.Replayed, ShouldBeTrue)
			So(second.TotalCommission, ShouldEqual, 1800)
			So(len(second.Payouts), ShouldEqual, 3)
			So(second.Payouts[0].TransactionID, ShouldEqual, first.Payouts[0].TransactionID)
			So(second.Payouts[0].Username, ShouldEqual, "c")

			So(balanceOf(t, service, "c").AvailableBalance, ShouldEqual, 1000)
			list, err := service.GetTransactions(ctx, creatorID("c"), 10)
			So(err, ShouldBeNil)
			So(len(list.Transactions), ShouldEqual, 1)
		})

		Convey("An event needs an id and a non negative amount", func() {
			_, err := service.DistributeEarning(ctx, earning("", "d", 10000))
			So(errors.Is(err, ErrMissingEventID), ShouldBeTrue)
			_, err = service.DistributeEarning(ctx, earning("evt-1", "d", -1))
			So(errors.Is(err, ErrInvalidAmount), ShouldBeTrue)
		})
	})

	Convey("Given a chain deeper than four levels", t, func() {
		ctx := context.Background()
		service, _ := newTestService(t)
		buildChain(t, service, "a", "b", "c", "d", "e", "f")

		Convey("Only four ancestors are paid", func() {
			result, err := service.DistributeEarning(ctx, earning("evt-1", "f", 10000))
			So(err, ShouldBeNil)
			So(len(result.Payouts), ShouldEqual, 4)
			So(result.TotalCommission, ShouldEqual, 2000)
			So(result.Payouts[3].CreatorID, ShouldEqual, creatorID("b"))
			So(result.Payouts[3].Amount, ShouldEqual, 200)
			So(balanceOf(t, service, "a").AvailableBalance, ShouldEqual, 0)
		})
	})

	Convey("Given an upline with a creator missing from the directory", t, func() {
		ctx := context.Background()
		service, store := newTestService(t)
		for _, name := range []string{"a", "c", "d"} {
			_, err := service.RegisterCreator(ctx, creatorID(name), name)
			So(err, ShouldBeNil)
		}
		So(store.CreateMembership(ctx, &model.NetworkMembership{
			CreatorID:       creatorID("c"),
			CreatorUsername: "c",
			ReferredByID:    "ghost",
			AncestorIDs:     pq.StringArray{"ghost", creatorID("a")},
			Level:           2,
		}), ShouldBeNil)
		So(store.CreateMembership(ctx, &model.NetworkMembership{
			CreatorID:       creatorID("d"),
			CreatorUsername: "d",
			ReferredByID:    creatorID("c"),
			AncestorIDs:     pq.StringArray{creatorID("c"), "ghost", creatorID("a")},
			Level:           3,
		}), ShouldBeNil)

		Convey("The walk stops at the break", func() {
			result, err := service.DistributeEarning(ctx, earning("evt-1", "d", 10000))
			So(err, ShouldBeNil)
			So(len(result.Payouts), ShouldEqual, 1)
			So(result.TotalCommission, ShouldEqual, 1000)
			So(balanceOf(t, service, "a").AvailableBalance, ShouldEqual, 0)
		})
	})

	Convey("Given a root that joined a referrer after building its downline", t, func() {
		ctx := context.Background()
		service, _ := newTestService(t)
		buildChain(t, service, "a", "b", "c", "d")
		_, err := service.RegisterCreator(ctx, creatorID("x"), "x")
		So(err, ShouldBeNil)
		code, err := service.IssueOrGetReferralCode(ctx, creatorID("x"))
		So(err, ShouldBeNil)
		_, err = service.AddMembership(ctx, creatorID("a"), "a", code.Code)
		So(err, ShouldBeNil)

		Convey("The new referrer is paid as the fourth level", func() {
			result, err := service.DistributeEarning(ctx, earning("evt-1", "d", 10000))
			So(err, ShouldBeNil)
			So(len(result.Payouts), ShouldEqual, 4)
			So(result.TotalCommission, ShouldEqual, 2000)
			So(result.Payouts[3].CreatorID, ShouldEqual, creatorID("x"))
			So(result.Payouts[3].Level, ShouldEqual, 4)
			So(balanceOf(t, service, "x").NetworkEarnings, ShouldEqual, 200)
		})

		Convey("A payment to its old root now reaches the new referrer", func() {
			result, err := service.DistributeEarning(ctx, earning("evt-2", "a", 10000))
			So(err, ShouldBeNil)
			So(len(result.Payouts), ShouldEqual, 1)
			So(result.Payouts[0].CreatorID, ShouldEqual, creatorID("x"))
			So(result.TotalCommission, ShouldEqual, 1000)
		})
	})
}

func TestDistributeEarningFollowsReferrerLinks(t *testing.T) {
	Convey("Given a member whose stored upline is out of date", t, func() {
		ctx := context.Background()
		service, store := newTestService(t)
		for _, name := range []string{"a", "b", "c"} {
			_, err := service.RegisterCreator(ctx, creatorID(name), name)
			So(err, ShouldBeNil)
		}
		So(store.CreateMembership(ctx, &model.NetworkMembership{
			CreatorID: creatorID("b"), CreatorUsername: "b",
			ReferredByID: creatorID("a"), AncestorIDs: pq.StringArray{creatorID("a")}, Level: 1,
		}), ShouldBeNil)
		So(store.CreateMembership(ctx, &model.NetworkMembership{
			CreatorID: creatorID("c"), CreatorUsername: "c",
			ReferredByID: creatorID("b"), AncestorIDs: pq.StringArray{creatorID("b")}, Level: 2,
		}), ShouldBeNil)

		Convey("The walk follows the referrer of each ancestor", func() {
			result, err := service.DistributeEarning(ctx, earning("evt-1", "c", 10000))
			So(err, ShouldBeNil)
			So(len(result.Payouts), ShouldEqual, 2)
			So(result.Payouts[1].CreatorID, ShouldEqual, creatorID("a"))
			So(result.TotalCommission, ShouldEqual, 1500)
		})
	})
}

func TestDistributeEarningConcurrently(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	buildChain(t, service, "a", "b", "c", "d")

	const workers = 40
	wg := sync.WaitGroup{}
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := service.DistributeEarning(ctx, earning(fmt.Sprintf("evt-%d", i), "d", 1000+int64(i)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var want int64
	for i := 0; i < workers; i++ {
		want += (1000 + int64(i)) / 10
	}
	c := balanceOf(t, service, "c")
	require.Equal(t, want, c.AvailableBalance)
	require.Equal(t, want, c.NetworkEarnings)

	rebuilt, err := service.RecomputeFinancials(ctx, creatorID("c"), service.now())
	require.NoError(t, err)
	require.Equal(t, c.AvailableBalance, rebuilt.AvailableBalance)
}

func TestDistributeEarningReplayedConcurrently(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	buildChain(t, service, "a", "b", "c", "d")

	const workers = 10
	wg := sync.WaitGroup{}
	results := make(chan *model.CommissionResult, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := service.DistributeEarning(ctx, earning("evt-same", "d", 10000))
			if err != nil {
				errs <- err
				return
			}
			results <- result
		}()
	}
	wg.Wait()
	close(results)
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	fresh := 0
	for result := range results {
		require.Equal(t, int64(1800), result.TotalCommission)
		if !result.Replayed {
			fresh++
		}
	}
	require.Equal(t, 1, fresh)
	require.Equal(t, int64(1000), balanceOf(t, service, "c").AvailableBalance)
}

// conflictingStore fails the first failures units of work with a
// serialization error
type conflictingStore struct {
	queries.Storage
	mu       sync.Mutex
	failures int
	calls    int
}

func (s *conflictingStore) Transaction(ctx context.Context, fn func(tx queries.Storage) error) error {
	s.mu.Lock()
	s.calls++
	fail := s.calls <= s.failures
	s.mu.Unlock()
	if fail {
		return queries.ErrSerialization
	}
	return s.Storage.Transaction(ctx, fn)
}

func TestDistributeEarningRetries(t *testing.T) {
	Convey("Given a storage reporting concurrent updates", t, func() {
		ctx := context.Background()
		service, store := newTestService(t)
		buildChain(t, service, "a", "b")

		Convey("A transient conflict is retried", func() {
			conflicts := &conflictingStore{Storage: store, failures: 1}
			service.repo = conflicts
			result, err := service.DistributeEarning(ctx, earning("evt-1", "b", 10000))
			So(err, ShouldBeNil)
			So(result.TotalCommission, ShouldEqual, 1000)
			So(conflicts.calls, ShouldEqual, 2)
		})

		Convey("Exhausted retries surface a conflict and write nothing", func() {
			conflicts := &conflictingStore{Storage: store, failures: 100}
			service.repo = conflicts
			_, err := service.DistributeEarning(ctx, earning("evt-1", "b", 10000))
			So(errors.Is(err, ErrConcurrentBalanceUpdateConflict), ShouldBeTrue)
			So(conflicts.calls, ShouldEqual, service.cfg.Commission.MaxAttempts)

			_, err = store.GetPaymentEvent(ctx, "evt-1")
			So(errors.Is(err, queries.ErrRecordNotFound), ShouldBeTrue)
		})
	})
}
