package repotest

import (
	"sort"
	"time"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"gorm.io/gorm"
)

type Users struct{ s *Store }

func (r *Users) Create(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID, user.CreatedAt = r.s.id()
	r.s.users[user.ID] = *user
	return nil
}

func (r *Users) GetByID(id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, errNotFound
	}
	return &u, nil
}

func (r *Users) GetByEmail(email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, errNotFound
}

func (r *Users) Update(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *Users) Modify(id uint, fn func(user *models.User) error) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, errNotFound
	}
	if err := fn(&u); err != nil {
		return nil, err
	}
	r.s.users[id] = u
	return &u, nil
}

func (r *Users) UpdateLastLogin(id uint, at time.Time) error {
	_, err := r.Modify(id, func(u *models.User) error {
		u.LastLoginAt = &at
		return nil
	})
	return err
}

func (r *Users) List(filter repository.UserFilter) ([]models.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var out []models.User
	for _, u := range r.s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !contains(u.Name, filter.Search) && !contains(u.Email, filter.Search) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Pagination), int64(len(out)), nil
}

func (r *Users) GetStatsByUserID(userID uint) (*repository.UserStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var stats repository.UserStats
	for _, l := range r.s.listings {
		if l.UserID == userID {
			stats.ListingCount++
		}
	}
	for _, rep := range r.s.reports {
		if rep.UserID == userID {
			stats.ReportCount++
		}
	}
	for _, c := range r.s.conversations {
		if c.HasParty(userID) {
			stats.ConversationCount++
		}
	}
	for _, t := range r.s.transactions {
		if t.BuyerID == userID || t.SellerID == userID {
			stats.TransactionCount++
		}
	}
	return &stats, nil
}

func (r *Users) Count() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), r.s.Err
}

func (r *Users) CountByStatus(status string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.Status == status {
			n++
		}
	}
	return n, r.s.Err
}

func (r *Users) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var dates []time.Time
	for _, u := range r.s.users {
		dates = append(dates, u.CreatedAt)
	}
	return bucket(dates, startDate, endDate), r.s.Err
}

func bucket(dates []time.Time, startDate, endDate time.Time) []models.DailyStats {
	counts := map[string]int{}
	for _, d := range dates {
		if d.Before(startDate) || d.After(endDate) {
			continue
		}
		counts[d.Format("2006-01-02")]++
	}
	out := make([]models.DailyStats, 0, len(counts))
	for date, n := range counts {
		out = append(out, models.DailyStats{Date: date, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
