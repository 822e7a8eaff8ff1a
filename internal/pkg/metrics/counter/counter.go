// Package counter buffers listing view increments in Redis and applies them to
// the database in batches.
package counter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/celumarket/celumarket/internal/pkg/metrics"
)

const listingViewsKey = "listing:counters:views"

// Store executes the batched increment statement.
type Store interface {
	Exec(sql string, args ...interface{}) error
	// IntegerType is the signed 64-bit type the dialect accepts in CAST.
	IntegerType() string
}

type gormStore struct {
	db *gorm.DB
}

// GormStore adapts a gorm handle to Store.
func GormStore(db *gorm.DB) Store {
	return gormStore{db: db}
}

func (s gormStore) Exec(sql string, args ...interface{}) error {
	return s.db.Exec(sql, args...).Error
}

func (s gormStore) IntegerType() string {
	if s.db.Dialector.Name() == "mysql" {
		return "SIGNED"
	}
	return "BIGINT"
}

type ViewCounter struct {
	client *redis.Client
	store  Store
}

func NewViewCounter(client *redis.Client, store Store) *ViewCounter {
	return &ViewCounter{client: client, store: store}
}

// AddListingView increments the pending view counter for a listing in Redis
func (c *ViewCounter) AddListingView(ctx context.Context, listingID uint) error {
	field := strconv.FormatUint(uint64(listingID), 10)
	return c.client.HIncrBy(ctx, listingViewsKey, field, 1).Err()
}

// Pending returns views recorded in Redis but not yet flushed for a listing.
func (c *ViewCounter) Pending(ctx context.Context, listingID uint) int64 {
	field := strconv.FormatUint(uint64(listingID), 10)
	n, err := c.client.HGet(ctx, listingViewsKey, field).Int64()
	if err != nil {
		return 0
	}
	return n
}

// Flush drains the pending hash and applies it to listings.views. The hash is
// renamed to a temporary key first so increments arriving during the flush land
// in a fresh hash.
func (c *ViewCounter) Flush(ctx context.Context) (int64, error) {
	tmpKey := fmt.Sprintf("%s:tmp:%d", listingViewsKey, time.Now().UnixNano())
	if err := c.client.Rename(ctx, listingViewsKey, tmpKey).Err(); err != nil {
		if errors.Is(err, redis.Nil) || strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return 0, nil
		}
		return 0, err
	}
	defer c.client.Del(ctx, tmpKey)

	data, err := c.client.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return 0, err
	}

	sql, args, total := buildIncrementSQL("listings", "views", c.store.IntegerType(), data)
	if sql == "" {
		return 0, nil
	}
	if err := c.store.Exec(sql, args...); err != nil {
		// put the drained counts back so the next flush retries them
		pipe := c.client.Pipeline()
		for field, v := range data {
			if inc, perr := strconv.ParseInt(v, 10, 64); perr == nil {
				pipe.HIncrBy(ctx, listingViewsKey, field, inc)
			}
		}
		_, _ = pipe.Exec(ctx)
		return 0, err
	}

	metrics.ViewsFlushed.Add(float64(total))
	return total, nil
}

// buildIncrementSQL composes
// UPDATE <table> SET <column> = <column> + CASE id WHEN ? THEN CAST(? AS <intType>) ... ELSE 0 END WHERE id IN (...)
// from a hash of id -> increment. Malformed and zero entries are skipped.
// The increments are cast because postgres cannot infer a type for bare CASE results.
func buildIncrementSQL(table, column, intType string, data map[string]string) (string, []interface{}, int64) {
	type pair struct {
		id  uint64
		inc int64
	}
	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		id, perr := strconv.ParseUint(k, 10, 64)
		if perr != nil {
			continue
		}
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, pair{id: id, inc: inc})
	}
	if len(pairs) == 0 {
		return "", nil, 0
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })

	var total int64
	var builder strings.Builder
	args := make([]interface{}, 0, len(pairs)*3)
	builder.WriteString("UPDATE ")
	builder.WriteString(table)
	builder.WriteString(" SET ")
	builder.WriteString(column)
	builder.WriteString(" = ")
	builder.WriteString(column)
	builder.WriteString(" + CASE id")
	for _, p := range pairs {
		builder.WriteString(" WHEN ? THEN CAST(? AS ")
		builder.WriteString(intType)
		builder.WriteString(")")
		args = append(args, p.id, p.inc)
		total += p.inc
	}
	builder.WriteString(" ELSE 0 END WHERE id IN (")
	for i, p := range pairs {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("?")
		args = append(args, p.id)
	}
	builder.WriteString(")")

	return builder.String(), args, total
}
