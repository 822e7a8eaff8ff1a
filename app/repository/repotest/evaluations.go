package repotest

import (
	"sort"

	"github.com/celumarket/celumarket/app/models"
)

type Evaluations struct{ s *Store }

func (r *Evaluations) Create(evaluation *models.Evaluation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	evaluation.ID, evaluation.CreatedAt = r.s.id()
	r.s.evaluations[evaluation.ID] = *evaluation
	return nil
}

func (r *Evaluations) GetByUserID(userID uint, offset, limit int) ([]models.Evaluation, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var out []models.Evaluation
	for _, e := range r.s.evaluations {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, offset, limit), int64(len(out)), nil
}

type Notifications struct{ s *Store }

func (r *Notifications) Create(notification *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	notification.ID, notification.CreatedAt = r.s.id()
	r.s.notifications[notification.ID] = *notification
	return nil
}

func (r *Notifications) GetByUserID(userID uint, offset, limit int) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []models.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, offset, limit), nil
}

func (r *Notifications) CountUnread(userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, no := range r.s.notifications {
		if no.UserID == userID && !no.IsRead {
			n++
		}
	}
	return n, r.s.Err
}

func (r *Notifications) MarkAllRead(userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for id, n := range r.s.notifications {
		if n.UserID == userID {
			n.IsRead = true
			r.s.notifications[id] = n
		}
	}
	return nil
}
