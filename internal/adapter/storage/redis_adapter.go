package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

const (
	DefaultStockKeyPrefix = "stock:"
	DefaultLogKey         = "ledger:log"
	scanBatchSize         = 100
)

// RedisAdapter mirrors ledger quantities into "<prefix><item>" keys and
// keeps the mutation log as a Redis list.
type RedisAdapter struct {
	client      *redis.Client
	stockPrefix string
	logKey      string
}

func NewRedisAdapter(client *redis.Client, stockPrefix, logKey string) *RedisAdapter {
	if stockPrefix == "" {
		stockPrefix = DefaultStockKeyPrefix
	}
	if logKey == "" {
		logKey = DefaultLogKey
	}
	return &RedisAdapter{client: client, stockPrefix: stockPrefix, logKey: logKey}
}

// Stock reads a mirrored quantity back. The boolean is false when the item
// is not mirrored.
func (r *RedisAdapter) Stock(ctx context.Context, item string) (domain.Quantity, bool, error) {
	val, err := r.client.Get(ctx, r.stockPrefix+item).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Quantity{}, false, nil
	}
	if err != nil {
		return domain.Quantity{}, false, err
	}
	q, err := domain.ParseQuantity(val)
	if err != nil {
		return domain.Quantity{}, false, err
	}
	return q, true, nil
}

// Replace swaps every mirrored key for the contents of snap in one
// transaction.
func (r *RedisAdapter) Replace(ctx context.Context, snap domain.Snapshot) error {
	var stale []string
	iter := r.client.Scan(ctx, 0, r.stockPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		stale = append(stale, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(stale) > 0 {
			pipe.Del(ctx, stale...)
		}
		for _, e := range snap {
			pipe.Set(ctx, r.stockPrefix+e.Item, e.Quantity.String(), 0)
		}
		return nil
	})
	return err
}

func (r *RedisAdapter) Append(ctx context.Context, event domain.MutationEvent) error {
	return r.client.RPush(ctx, r.logKey, event.String()).Err()
}

// Entries returns the whole mutation log, oldest first.
func (r *RedisAdapter) Entries(ctx context.Context) ([]string, error) {
	return r.client.LRange(ctx, r.logKey, 0, -1).Result()
}
