package redis

import (
	"context"
	"time"
)

// ==================== Strings ====================

// Set stores value at key; expiration 0 keeps it forever
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	start := time.Now()
	err := c.rdb.Set(ctx, key, value, expiration).Err()
	if err != nil {
		c.logFailure("set", key, err, start)
	}
	return err
}

// Get returns ErrNil when key is missing
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil && !IsNil(err) {
		c.logFailure("get", key, err, start)
	}
	return val, err
}

func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	start := time.Now()
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		c.logFailure("del", firstKey(keys), err, start)
	}
	return n, err
}

func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	start := time.Now()
	n, err := c.rdb.Exists(ctx, keys...).Result()
	if err != nil {
		c.logFailure("exists", firstKey(keys), err, start)
	}
	return n, err
}

// ==================== Hashes ====================

func (c *Client) HSet(ctx context.Context, key string, values ...interface{}) (int64, error) {
	start := time.Now()
	n, err := c.rdb.HSet(ctx, key, values...).Result()
	if err != nil {
		c.logFailure("hset", key, err, start)
	}
	return n, err
}

// HSetNX sets field only when absent; reports whether it was written
func (c *Client) HSetNX(ctx context.Context, key, field string, value interface{}) (bool, error) {
	start := time.Now()
	ok, err := c.rdb.HSetNX(ctx, key, field, value).Result()
	if err != nil {
		c.logFailure("hsetnx", key, err, start)
	}
	return ok, err
}

func (c *Client) HGet(ctx context.Context, key, field string) (string, error) {
	start := time.Now()
	val, err := c.rdb.HGet(ctx, key, field).Result()
	if err != nil && !IsNil(err) {
		c.logFailure("hget", key, err, start)
	}
	return val, err
}

func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	start := time.Now()
	vals, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		c.logFailure("hgetall", key, err, start)
	}
	return vals, err
}

// ==================== Lists ====================

func (c *Client) LPush(ctx context.Context, key string, values ...interface{}) (int64, error) {
	start := time.Now()
	n, err := c.rdb.LPush(ctx, key, values...).Result()
	if err != nil {
		c.logFailure("lpush", key, err, start)
	}
	return n, err
}

// RPop returns ErrNil on an empty list
func (c *Client) RPop(ctx context.Context, key string) (string, error) {
	start := time.Now()
	val, err := c.rdb.RPop(ctx, key).Result()
	if err != nil && !IsNil(err) {
		c.logFailure("rpop", key, err, start)
	}
	return val, err
}

func (c *Client) LLen(ctx context.Context, key string) (int64, error) {
	start := time.Now()
	n, err := c.rdb.LLen(ctx, key).Result()
	if err != nil {
		c.logFailure("llen", key, err, start)
	}
	return n, err
}

// ==================== Sets ====================

func (c *Client) SAdd(ctx context.Context, key string, members ...interface{}) (int64, error) {
	start := time.Now()
	n, err := c.rdb.SAdd(ctx, key, members...).Result()
	if err != nil {
		c.logFailure("sadd", key, err, start)
	}
	return n, err
}

func (c *Client) SRem(ctx context.Context, key string, members ...interface{}) (int64, error) {
	start := time.Now()
	n, err := c.rdb.SRem(ctx, key, members...).Result()
	if err != nil {
		c.logFailure("srem", key, err, start)
	}
	return n, err
}

func (c *Client) SCard(ctx context.Context, key string) (int64, error) {
	start := time.Now()
	n, err := c.rdb.SCard(ctx, key).Result()
	if err != nil {
		c.logFailure("scard", key, err, start)
	}
	return n, err
}

func firstKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
