package repotest

import (
	"sort"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
)

type Reports struct{ s *Store }

func (r *Reports) Create(report *models.TechnicalReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	report.ID, report.CreatedAt = r.s.id()
	r.s.reports[report.ID] = *report
	return nil
}

func (r *Reports) GetByID(id uint) (*models.TechnicalReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	rep, ok := r.s.reports[id]
	if !ok {
		return nil, errNotFound
	}
	v := r.s.reportView(rep)
	return &v, nil
}

func (r *Reports) List(filter repository.ReportFilter) ([]models.TechnicalReport, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var out []models.TechnicalReport
	for _, rep := range r.s.reports {
		v := r.s.reportView(rep)
		if filter.ReportType != "" && v.ReportType != filter.ReportType {
			continue
		}
		if filter.IsValidated != nil && v.IsValidated != *filter.IsValidated {
			continue
		}
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.Search != "" &&
			!contains(v.DeviceModel, filter.Search) &&
			!contains(v.ReportNumber, filter.Search) &&
			!contains(v.User.Name, filter.Search) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsValidated != out[j].IsValidated {
			return !out[i].IsValidated
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Pagination), int64(len(out)), nil
}

func (r *Reports) GetByUserID(userID uint, offset, limit int) ([]models.TechnicalReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []models.TechnicalReport
	for _, rep := range r.s.reports {
		if rep.UserID == userID {
			out = append(out, rep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, offset, limit), nil
}

func (r *Reports) Moderate(id uint, fn func(report *models.TechnicalReport) error) (*models.TechnicalReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	rep, ok := r.s.reports[id]
	if !ok {
		return nil, errNotFound
	}
	if err := fn(&rep); err != nil {
		return nil, err
	}
	rep.User = models.User{}
	r.s.reports[id] = rep
	v := r.s.reportView(rep)
	return &v, nil
}

func (r *Reports) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.reports[id]; !ok {
		return errNotFound
	}
	delete(r.s.reports, id)
	return nil
}

func (r *Reports) Count() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.reports)), r.s.Err
}

func (r *Reports) CountUnvalidated() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, rep := range r.s.reports {
		if !rep.IsValidated {
			n++
		}
	}
	return n, r.s.Err
}

func (r *Reports) CountByUserID(userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, rep := range r.s.reports {
		if rep.UserID == userID {
			n++
		}
	}
	return n, r.s.Err
}
