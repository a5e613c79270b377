package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  -1, // blocking pops manage their own deadline
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// checks redis connectivity

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Push enqueues a payload at the head of the list.
func (c *Client) Push(ctx context.Context, key string, payload []byte) error {
	return c.redisdb.LPush(ctx, key, payload).Err()
}

// PopBlocking waits up to timeout for a payload from the tail of the list.
// A quiet queue returns redis.Nil.
func (c *Client) PopBlocking(ctx context.Context, key string, timeout time.Duration) ([]byte, error) {
	res, err := c.redisdb.BRPop(ctx, timeout, key).Result()

	if err != nil {
		return nil, err
	}

	// BRPop returns [key, value]
	if len(res) != 2 {
		return nil, redis.Nil
	}

	return []byte(res[1]), nil
}
