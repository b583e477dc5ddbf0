package redis

import (
	"sync"

	"github.com/mediocregopher/radix/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrNotConnected = errors.New("REDIS_NOT_CONNECTED")

// Client is a small wrapper over a radix connection pool
type Client struct {
	addr     string
	poolSize int
	lock     sync.RWMutex
	pool     *radix.Pool
}

// NewClient creates a client. Connect must be called before use.
func NewClient(addr string, poolSize int) *Client {
	if poolSize < 1 {
		poolSize = 1
	}
	return &Client{addr: addr, poolSize: poolSize}
}

func (c *Client) Connect() error {
	pool, err := radix.NewPool("tcp", c.addr, c.poolSize)
	if err != nil {
		log.Error().Err(err).Str("section", "redis").Str("addr", c.addr).Msg("Unable to connect to redis")
		return err
	}
	c.lock.Lock()
	c.pool = pool
	c.lock.Unlock()
	return nil
}

func (c *Client) Disconnect() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.pool == nil {
		return nil
	}
	err := c.pool.Close()
	c.pool = nil
	return err
}

// Exec runs a command on key and decodes the reply into rcv. A nil rcv
// discards it.
func (c *Client) Exec(rcv interface{}, cmd, key string, args ...interface{}) error {
	c.lock.RLock()
	pool := c.pool
	c.lock.RUnlock()
	if pool == nil {
		return ErrNotConnected
	}
	return pool.Do(radix.FlatCmd(rcv, cmd, key, args...))
}
