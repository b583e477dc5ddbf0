// Package networktree caches rendered referral trees in redis
package networktree

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/encoding/json"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/net/redis"
)

// Executor runs a redis command, see redis.Client
type Executor interface {
	Exec(rcv interface{}, cmd, key string, args ...interface{}) error
}

var _ Executor = (*redis.Client)(nil)

// Cache godoc
type Cache struct {
	client Executor
	ttl    time.Duration
}

// New creates a cache storing trees for ttl
func New(client Executor, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func key(creatorID string, depth int) string {
	return fmt.Sprintf("network_tree__%s__%d", creatorID, depth)
}

func (c *Cache) Get(_ context.Context, creatorID string, depth int) ([]*model.TreeNode, bool) {
	var payload []byte
	if err := c.client.Exec(&payload, "GET", key(creatorID, depth)); err != nil {
		log.Warn().Err(err).Str("section", "networktree").Str("creator_id", creatorID).Msg("Unable to read cached tree")
		return nil, false
	}
	if len(payload) == 0 {
		return nil, false
	}
	tree := []*model.TreeNode{}
	if err := json.Unmarshal(payload, &tree); err != nil {
		log.Warn().Err(err).Str("section", "networktree").Str("creator_id", creatorID).Msg("Dropping unreadable cached tree")
		return nil, false
	}
	return tree, true
}

func (c *Cache) Set(_ context.Context, creatorID string, depth int, tree []*model.TreeNode) {
	payload, err := json.Marshal(tree)
	if err != nil {
		return
	}
	err = c.client.Exec(nil, "SET", key(creatorID, depth), payload, "EX", int(c.ttl.Seconds()))
	if err != nil {
		log.Warn().Err(err).Str("section", "networktree").Str("creator_id", creatorID).Msg("Unable to cache tree")
	}
}

// Invalidate drops the trees of every depth rendered for the given creators
func (c *Cache) Invalidate(_ context.Context, creatorIDs ...string) {
	for _, id := range creatorIDs {
		for depth := 1; depth <= model.MaxCommissionDepth; depth++ {
			if err := c.client.Exec(nil, "DEL", key(id, depth)); err != nil {
				log.Warn().Err(err).Str("section", "networktree").Str("creator_id", id).Msg("Unable to invalidate cached tree")
			}
		}
	}
}
