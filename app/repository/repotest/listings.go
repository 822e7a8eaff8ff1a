package repotest

import (
	"sort"
	"time"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
)

type Listings struct{ s *Store }

func (r *Listings) Create(listing *models.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	listing.ID, listing.CreatedAt = r.s.id()
	r.s.listings[listing.ID] = *listing
	return nil
}

func (r *Listings) GetByID(id uint) (*models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	l, ok := r.s.listings[id]
	if !ok {
		return nil, errNotFound
	}
	v := r.s.listingView(l)
	return &v, nil
}

func (r *Listings) List(filter repository.ListingFilter) ([]models.Listing, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var out []models.Listing
	for _, l := range r.s.listings {
		v := r.s.listingView(l)
		if filter.ModerationStatus != "" && v.ModerationStatus != filter.ModerationStatus {
			continue
		}
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.Search != "" &&
			!contains(v.Device.Model, filter.Search) &&
			!contains(v.User.Name, filter.Search) &&
			!contains(v.Location, filter.Search) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].ModerationStatus == models.ModerationPending, out[j].ModerationStatus == models.ModerationPending
		if pi != pj {
			return pi
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Pagination), int64(len(out)), nil
}

func (r *Listings) GetByUserID(userID uint, offset, limit int) ([]models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []models.Listing
	for _, l := range r.s.listings {
		if l.UserID == userID {
			v := r.s.listingView(l)
			v.User = models.User{}
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, offset, limit), nil
}

func (r *Listings) Moderate(id uint, fn func(listing *models.Listing) error) (*models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	l, ok := r.s.listings[id]
	if !ok {
		return nil, errNotFound
	}
	if err := fn(&l); err != nil {
		return nil, err
	}
	l.Device, l.User = models.Device{}, models.User{}
	r.s.listings[id] = l
	v := r.s.listingView(l)
	return &v, nil
}

func (r *Listings) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.listings[id]; !ok {
		return errNotFound
	}
	for cid, c := range r.s.conversations {
		if c.ListingID != id {
			continue
		}
		for mid, m := range r.s.messages {
			if m.ConversationID == cid {
				delete(r.s.messages, mid)
			}
		}
		delete(r.s.conversations, cid)
	}
	for tid, t := range r.s.transactions {
		if t.ListingID == id {
			delete(r.s.transactions, tid)
		}
	}
	delete(r.s.listings, id)
	return nil
}

func (r *Listings) Count() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.listings)), r.s.Err
}

func (r *Listings) CountByModerationStatus(status string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, l := range r.s.listings {
		if l.ModerationStatus == status {
			n++
		}
	}
	return n, r.s.Err
}

func (r *Listings) CountByUserID(userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, l := range r.s.listings {
		if l.UserID == userID {
			n++
		}
	}
	return n, r.s.Err
}

func (r *Listings) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var dates []time.Time
	for _, l := range r.s.listings {
		dates = append(dates, l.CreatedAt)
	}
	return bucket(dates, startDate, endDate), r.s.Err
}
