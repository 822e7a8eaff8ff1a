// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"gorm.io/gorm"
)

// Store holds every entity in memory. Set Err to make all operations fail.
type Store struct {
	mu  sync.Mutex
	Err error

	nextID        uint
	clock         time.Time
	users         map[uint]models.User
	devices       map[uint]models.Device
	listings      map[uint]models.Listing
	reports       map[uint]models.TechnicalReport
	conversations map[uint]models.Conversation
	messages      map[uint]models.Message
	transactions  map[uint]models.Transaction
	evaluations   map[uint]models.Evaluation
	notifications map[uint]models.Notification
}

func NewStore() *Store {
	return &Store{
		clock:         time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		users:         map[uint]models.User{},
		devices:       map[uint]models.Device{},
		listings:      map[uint]models.Listing{},
		reports:       map[uint]models.TechnicalReport{},
		conversations: map[uint]models.Conversation{},
		messages:      map[uint]models.Message{},
		transactions:  map[uint]models.Transaction{},
		evaluations:   map[uint]models.Evaluation{},
		notifications: map[uint]models.Notification{},
	}
}

// Repositories returns repository views over the store.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:         &Users{s},
		Listing:      &Listings{s},
		Report:       &Reports{s},
		Conversation: &Conversations{s},
		Evaluation:   &Evaluations{s},
		Notification: &Notifications{s},
	}
}

// id returns a new identifier and advances the fake clock by one minute so that
// creation order is reflected in CreatedAt.
func (s *Store) id() (uint, time.Time) {
	s.nextID++
	s.clock = s.clock.Add(time.Minute)
	return s.nextID, s.clock
}

// AddUser inserts a user and returns it with its assigned id.
func (s *Store) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID, u.CreatedAt = s.id()
	}
	if u.Role == "" {
		u.Role = models.ROLE_USER
	}
	if u.Status == "" {
		u.Status = models.STATUS_ACTIVE
	}
	s.users[u.ID] = u
	return u
}

func (s *Store) AddDevice(d models.Device) models.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == 0 {
		d.ID, d.CreatedAt = s.id()
	}
	s.devices[d.ID] = d
	return d
}

func (s *Store) AddListing(l models.Listing) models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		var created time.Time
		l.ID, created = s.id()
		if l.CreatedAt.IsZero() {
			l.CreatedAt = created
		}
	}
	if l.Status == "" {
		l.Status = models.ListingStatusActive
	}
	if l.ModerationStatus == "" {
		l.ModerationStatus = models.ModerationPending
	}
	l.Device, l.User = models.Device{}, models.User{}
	s.listings[l.ID] = l
	return s.listingView(l)
}

func (s *Store) AddReport(r models.TechnicalReport) models.TechnicalReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		var created time.Time
		r.ID, created = s.id()
		if r.CreatedAt.IsZero() {
			r.CreatedAt = created
		}
	}
	if r.ReportNumber == "" {
		r.ReportNumber = fmt.Sprintf("TR-TEST-%04d", r.ID)
	}
	if r.Status == "" {
		r.Status = models.ReportStatusPending
	}
	if r.ReportType == "" {
		r.ReportType = models.ReportTypeBasic
	}
	r.User = models.User{}
	s.reports[r.ID] = r
	return s.reportView(r)
}

func (s *Store) AddConversation(c models.Conversation) models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID, c.CreatedAt = s.id()
		c.UpdatedAt = c.CreatedAt
	}
	c.Messages = nil
	s.conversations[c.ID] = c
	return c
}

func (s *Store) AddMessage(m models.Message) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == 0 {
		var created time.Time
		m.ID, created = s.id()
		if m.CreatedAt.IsZero() {
			m.CreatedAt = created
		}
	}
	s.messages[m.ID] = m
	return m
}

func (s *Store) AddTransaction(t models.Transaction) models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID, t.CreatedAt = s.id()
	}
	s.transactions[t.ID] = t
	return t
}

func (s *Store) AddEvaluation(e models.Evaluation) models.Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID, e.CreatedAt = s.id()
	}
	s.evaluations[e.ID] = e
	return e
}

// Listing returns the stored listing without relations.
func (s *Store) Listing(id uint) (models.Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	return l, ok
}

func (s *Store) Report(id uint) (models.TechnicalReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	return r, ok
}

func (s *Store) User(id uint) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) Message(id uint) (models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	return m, ok
}

func (s *Store) ConversationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

func (s *Store) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Notifications returns every stored notification for userID, oldest first.
func (s *Store) NotificationsFor(userID uint) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) listingView(l models.Listing) models.Listing {
	l.Device = s.devices[l.DeviceID]
	l.User = s.users[l.UserID]
	return l
}

func (s *Store) reportView(r models.TechnicalReport) models.TechnicalReport {
	r.User = s.users[r.UserID]
	return r
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func page[T any](items []T, p repository.Pagination) []T {
	n := p.Normalize()
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+n.Limit, len(items))
	return items[start:end]
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 {
		end = min(offset+limit, len(items))
	}
	return items[offset:end]
}

var errNotFound = gorm.ErrRecordNotFound

var (
	_ repository.UserRepository         = (*Users)(nil)
	_ repository.ListingRepository      = (*Listings)(nil)
	_ repository.ReportRepository       = (*Reports)(nil)
	_ repository.ConversationRepository = (*Conversations)(nil)
	_ repository.EvaluationRepository   = (*Evaluations)(nil)
	_ repository.NotificationRepository = (*Notifications)(nil)
)
