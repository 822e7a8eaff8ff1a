package repository

import (
	"sync"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Factory builds the repositories once from the process wide handles and hands
// them out to the services that need them.
type Factory struct {
	db    *gorm.DB
	redis *redis.Client
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB, redisClient *redis.Client) *Factory {
	return &Factory{
		db:    db,
		redis: redisClient,
	}
}

// GetRepositories returns the shared repositories instance
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		var queue QueueRepository
		if f.redis != nil {
			queue = NewQueueRepository(f.redis)
		}
		f.repos = NewRepositories(f.db, queue)
	})
	return f.repos
}

func (f *Factory) DB() *gorm.DB {
	return f.db
}
