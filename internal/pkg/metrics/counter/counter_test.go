package counter

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type recordingStore struct {
	sql  string
	args []interface{}
	err  error
}

func (s *recordingStore) Exec(sql string, args ...interface{}) error {
	s.sql = sql
	s.args = args
	return s.err
}

func (s *recordingStore) IntegerType() string { return "BIGINT" }

func newCounter(t *testing.T, store Store) (*ViewCounter, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewViewCounter(client, store), client
}

func TestBuildIncrementSQL(t *testing.T) {
	data := map[string]string{
		"12":  "3",
		"4":   "1",
		"abc": "9",
		"7":   "0",
	}

	tests := []struct {
		intType string
		want    string
	}{
		{"BIGINT", "UPDATE listings SET views = views + CASE id WHEN ? THEN CAST(? AS BIGINT) WHEN ? THEN CAST(? AS BIGINT) ELSE 0 END WHERE id IN (?,?)"},
		{"SIGNED", "UPDATE listings SET views = views + CASE id WHEN ? THEN CAST(? AS SIGNED) WHEN ? THEN CAST(? AS SIGNED) ELSE 0 END WHERE id IN (?,?)"},
	}
	for _, tt := range tests {
		t.Run(tt.intType, func(t *testing.T) {
			sql, args, total := buildIncrementSQL("listings", "views", tt.intType, data)
			assert.Equal(t, tt.want, sql)
			assert.Equal(t, []interface{}{uint64(4), int64(1), uint64(12), int64(3), uint64(4), uint64(12)}, args)
			assert.Equal(t, int64(4), total)
		})
	}
}

func TestGormStoreIntegerType(t *testing.T) {
	pg, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=celumarket dbname=celumarket sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	assert.Equal(t, "BIGINT", GormStore(pg).IntegerType())

	my, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "celumarket:secret@tcp(127.0.0.1:3306)/celumarket?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	assert.Equal(t, "SIGNED", GormStore(my).IntegerType())
}

func TestBuildIncrementSQL_Empty(t *testing.T) {
	sql, args, total := buildIncrementSQL("listings", "views", "BIGINT", map[string]string{"x": "1"})
	assert.Empty(t, sql)
	assert.Nil(t, args)
	assert.Zero(t, total)
}

func TestViewCounter_Flush(t *testing.T) {
	store := &recordingStore{}
	c, client := newCounter(t, store)
	ctx := context.Background()

	require.NoError(t, c.AddListingView(ctx, 5))
	require.NoError(t, c.AddListingView(ctx, 5))
	require.NoError(t, c.AddListingView(ctx, 9))
	assert.Equal(t, int64(2), c.Pending(ctx, 5))

	flushed, err := c.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), flushed)
	assert.Contains(t, store.sql, "UPDATE listings SET views")
	assert.Contains(t, store.sql, "THEN CAST(? AS BIGINT)")
	assert.Zero(t, c.Pending(ctx, 5))

	keys, err := client.Keys(ctx, listingViewsKey+"*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestViewCounter_FlushNothingPending(t *testing.T) {
	store := &recordingStore{}
	c, _ := newCounter(t, store)

	flushed, err := c.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, flushed)
	assert.Empty(t, store.sql)
}

func TestViewCounter_FlushRestoresOnStoreError(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	c, _ := newCounter(t, store)
	ctx := context.Background()

	require.NoError(t, c.AddListingView(ctx, 3))
	_, err := c.Flush(ctx)
	assert.EqualError(t, err, "db down")
	assert.Equal(t, int64(1), c.Pending(ctx, 3))
}
