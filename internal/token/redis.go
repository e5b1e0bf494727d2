package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "token:v1:"

// transferScript spends the allowance in KEYS[1] and moves ARGV[1] from the
// balance in KEYS[2] to the balance in KEYS[3]. The allowance keeps its TTL.
var transferScript = redis.NewScript(`
local amount = tonumber(ARGV[1])
local granted = tonumber(redis.call('GET', KEYS[1]) or '0')
if granted < amount then
  return -1
end
local held = tonumber(redis.call('GET', KEYS[2]) or '0')
if held < amount then
  return -2
end
local credited = tonumber(redis.call('GET', KEYS[3]) or '0')
if credited + amount > tonumber(ARGV[2]) then
  return -3
end
if granted == amount then
  redis.call('DEL', KEYS[1])
else
  local ttl = redis.call('PTTL', KEYS[1])
  redis.call('DECRBY', KEYS[1], amount)
  if ttl > 0 then
    redis.call('PEXPIRE', KEYS[1], ttl)
  end
end
redis.call('DECRBY', KEYS[2], amount)
redis.call('INCRBY', KEYS[3], amount)
return 1
`)

// mintScript credits ARGV[1] to KEYS[1] unless that would pass ARGV[2].
var mintScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current + tonumber(ARGV[1]) > tonumber(ARGV[2]) then
  return -3
end
return redis.call('INCRBY', KEYS[1], ARGV[1])
`)

const maxBalance = "4294967295"

// Redis is a value-transfer service backed by Redis. Allowance expiry is
// delegated to key TTLs.
type Redis struct {
	client  *redis.Client
	spender string
	now     func() time.Time
}

// NewRedis builds a Redis-backed service whose transfers are executed by spender.
func NewRedis(client *redis.Client, spender string) *Redis {
	return &Redis{client: client, spender: spender, now: time.Now}
}

// WithClock replaces the time source used to turn expiry instants into TTLs.
func (r *Redis) WithClock(now func() time.Time) *Redis {
	r.now = now
	return r
}

func balanceRedisKey(addr string) string {
	return keyPrefix + "balance:" + addr
}

func allowanceRedisKey(owner, spender string) string {
	return keyPrefix + "allowance:" + owner + ":" + spender
}

// Mint creates amount of value for to.
func (r *Redis) Mint(ctx context.Context, to string, amount uint32) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	res, err := mintScript.Run(ctx, r.client, []string{balanceRedisKey(to)}, amount, maxBalance).Int64()
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	if res < 0 {
		return ErrBalanceOverflow
	}
	return nil
}

// BalanceOf returns the value held by addr.
func (r *Redis) BalanceOf(ctx context.Context, addr string) (uint32, error) {
	return r.getAmount(ctx, balanceRedisKey(addr))
}

// Allowance returns the unexpired amount owner has delegated to spender.
func (r *Redis) Allowance(ctx context.Context, owner, spender string) (uint32, error) {
	return r.getAmount(ctx, allowanceRedisKey(owner, spender))
}

// Approve replaces the allowance owner grants spender, expiring at expiresAt.
func (r *Redis) Approve(ctx context.Context, owner, spender string, amount uint32, expiresAt time.Time) error {
	key := allowanceRedisKey(owner, spender)
	ttl := expiresAt.Sub(r.now())
	if amount == 0 || ttl <= 0 {
		return r.client.Del(ctx, key).Err()
	}
	if err := r.client.Set(ctx, key, amount, ttl).Err(); err != nil {
		return fmt.Errorf("approve: %w", err)
	}
	return nil
}

// Transfer moves amount from from to to, spending from's allowance to the bound spender.
func (r *Redis) Transfer(ctx context.Context, from, to string, amount uint32) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	keys := []string{allowanceRedisKey(from, r.spender), balanceRedisKey(from), balanceRedisKey(to)}
	res, err := transferScript.Run(ctx, r.client, keys, amount, maxBalance).Int64()
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	switch res {
	case -1:
		return ErrInsufficientAllowance
	case -2:
		return ErrInsufficientFunds
	case -3:
		return ErrBalanceOverflow
	}
	return nil
}

func (r *Redis) getAmount(ctx context.Context, key string) (uint32, error) {
	raw, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return uint32(v), nil
}
