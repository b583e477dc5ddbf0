package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/ericlagergren/decimal"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/creatorhub/commission_api/config"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/monitor"
	"gitlab.com/creatorhub/commission_api/queries"
)

// TreeCache stores rendered network trees by root creator id and depth
type TreeCache interface {
	Get(ctx context.Context, creatorID string, depth int) ([]*model.TreeNode, bool)
	Set(ctx context.Context, creatorID string, depth int, tree []*model.TreeNode)
	Invalidate(ctx context.Context, creatorIDs ...string)
}

type noopTreeCache struct{}

func (noopTreeCache) Get(context.Context, string, int) ([]*model.TreeNode, bool) { return nil, false }
func (noopTreeCache) Set(context.Context, string, int, []*model.TreeNode)        {}
func (noopTreeCache) Invalidate(context.Context, ...string)                      {}

// Service structure
type Service struct {
	cfg          config.Config
	repo         queries.Storage
	trees        TreeCache
	rates        []*decimal.Big
	creatorShare *decimal.Big
	now          func() time.Time
	suffix       func(n int) string
}

// NewService constructor. trees may be nil when no cache is configured.
func NewService(cfg config.Config, repo queries.Storage, trees TreeCache) *Service {
	if trees == nil {
		trees = noopTreeCache{}
	}
	return &Service{
		cfg:          cfg,
		repo:         repo,
		trees:        trees,
		rates:        cfg.Commission.Rates(),
		creatorShare: cfg.Commission.CreatorShareRate(),
		now:          time.Now,
		suffix:       randSeq,
	}
}

// GetRepo returns the storage the service works on
func (service *Service) GetRepo() queries.Storage {
	return service.repo
}

func randSeq(n int) string {
	var letters = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

func isRetryable(err error) bool {
	return errors.Is(err, queries.ErrSerialization) || errors.Is(err, queries.ErrDuplicateKey)
}

// withRetry runs fn until it succeeds, fails with a non retryable error or
// the commission attempts are used up
func (service *Service) withRetry(ctx context.Context, action string, fn func() error) error {
	attempts := service.cfg.Commission.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil || !isRetryable(err) {
			return err
		}
		monitor.BalanceUpdateConflicts.Inc()
		log.Warn().Err(err).
			Str("section", "service").
			Str("action", action).
			Int("attempt", attempt).
			Msg("Concurrent update detected, retrying unit of work")
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*10) * time.Millisecond):
		}
	}
	return errors.Wrap(ErrConcurrentBalanceUpdateConflict, err.Error())
}

func (service *Service) getCreator(ctx context.Context, repo queries.Storage, creatorID string) (*model.Creator, error) {
	creator, err := repo.GetCreatorByID(ctx, creatorID)
	if errors.Is(err, queries.ErrRecordNotFound) {
		return nil, ErrCreatorNotFound
	}
	return creator, err
}

func (service *Service) getCreatorByUsername(ctx context.Context, username string) (*model.Creator, error) {
	creator, err := service.repo.GetCreatorByUsername(ctx, username)
	if errors.Is(err, queries.ErrRecordNotFound) {
		return nil, ErrCreatorNotFound
	}
	return creator, err
}
