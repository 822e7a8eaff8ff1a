// Package statistics builds the admin dashboard and keeps it in the cache.
package statistics

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/access"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/celumarket/celumarket/internal/pkg/cache"
)

const (
	CacheKeyDashboard = "statistics:admin:dashboard"
	CacheExpiration   = 5 * time.Minute
	DailyStatsDays    = 7
)

// Dashboard is the admin overview: totals plus creation counts per day.
type Dashboard struct {
	Counts        models.DashboardCounts `json:"counts"`
	ListingsDaily []models.DailyStats    `json:"listings_daily"`
	UsersDaily    []models.DailyStats    `json:"users_daily"`
	GeneratedAt   time.Time              `json:"generated_at"`
}

type Service struct {
	guard    *access.Guard
	users    repository.UserRepository
	listings repository.ListingRepository
	reports  repository.ReportRepository
	cache    *cache.Cache
	now      func() time.Time
}

// NewService wires the dashboard. A nil cache computes on every request.
func NewService(repos *repository.Repositories, guard *access.Guard, c *cache.Cache) *Service {
	return &Service{
		guard:    guard,
		users:    repos.User,
		listings: repos.Listing,
		reports:  repos.Report,
		cache:    c,
		now:      time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Dashboard returns the cached overview, rebuilding it when the cache is cold.
func (s *Service) Dashboard(ctx context.Context, identity string) (*Dashboard, error) {
	if _, err := s.guard.RequireAdmin(identity); err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached Dashboard
		err := s.cache.GetJSON(ctx, CacheKeyDashboard, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			log.Warnf("[Statistics] cache read failed: %v", err)
		}
	}

	dashboard, err := s.build()
	if err != nil {
		return nil, apperror.Wrap(apperror.Unexpected, "failed to build dashboard", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, CacheKeyDashboard, dashboard, CacheExpiration); err != nil {
			log.Warnf("[Statistics] cache write failed: %v", err)
		}
	}
	return dashboard, nil
}

// Invalidate drops the cached overview so the next read recomputes it.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, CacheKeyDashboard); err != nil {
		log.Warnf("[Statistics] cache invalidation failed: %v", err)
	}
}

func (s *Service) build() (*Dashboard, error) {
	var counts models.DashboardCounts
	var err error

	if counts.Users, err = s.users.Count(); err != nil {
		return nil, err
	}
	if counts.BannedUsers, err = s.users.CountByStatus(models.STATUS_BANNED); err != nil {
		return nil, err
	}
	if counts.Listings, err = s.listings.Count(); err != nil {
		return nil, err
	}
	if counts.PendingListings, err = s.listings.CountByModerationStatus(models.ModerationPending); err != nil {
		return nil, err
	}
	if counts.RejectedListings, err = s.listings.CountByModerationStatus(models.ModerationRejected); err != nil {
		return nil, err
	}
	if counts.Reports, err = s.reports.Count(); err != nil {
		return nil, err
	}
	if counts.UnvalidatedReports, err = s.reports.CountUnvalidated(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -DailyStatsDays)

	listingsDaily, err := s.listings.GetDailyStats(start, end)
	if err != nil {
		return nil, err
	}
	usersDaily, err := s.users.GetDailyStats(start, end)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Counts:        counts,
		ListingsDaily: fillDays(listingsDaily, start, DailyStatsDays),
		UsersDaily:    fillDays(usersDaily, start, DailyStatsDays),
		GeneratedAt:   now,
	}, nil
}

// fillDays returns one entry per day starting at start, with zero counts for
// days the store reported nothing for.
func fillDays(stats []models.DailyStats, start time.Time, days int) []models.DailyStats {
	byDate := make(map[string]int, len(stats))
	for _, s := range stats {
		byDate[s.Date] = s.Count
	}
	out := make([]models.DailyStats, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, models.DailyStats{Date: date, Count: byDate[date]})
	}
	return out
}
