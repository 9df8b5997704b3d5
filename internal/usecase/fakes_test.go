package usecase_test

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/skillsync/skillsync/internal/domain"
	"github.com/skillsync/skillsync/internal/usecase"
)

// memStore is an in-memory stand-in for the Postgres repositories. It honors
// the same contracts: conditional updates fail with ErrStateConflict when the
// row left the expected state, unique indexes fail with ErrConflict, and Hire
// runs under one lock so concurrent hires serialize like the row lock does.
type memStore struct {
	mu      sync.Mutex
	seq     int
	jobs    map[string]domain.Job
	apps    map[string]domain.Application
	ratings map[string]domain.Rating
	msgs    map[string]domain.Message
	users   map[string]domain.User
}

func newMemStore() *memStore {
	return &memStore{
		jobs:    map[string]domain.Job{},
		apps:    map[string]domain.Application{},
		ratings: map[string]domain.Rating{},
		msgs:    map[string]domain.Message{},
		users:   map[string]domain.User{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) addUser(u domain.User) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = m.nextID("user")
	}
	m.users[u.ID] = u
	return u
}

// JobRepository

func (m *memStore) Create(_ domain.Context, j domain.Job) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j.ID == "" {
		j.ID = m.nextID("job")
	}
	j.Status = domain.JobOpen
	j.CreatedAt = time.Now().UTC()
	m.jobs[j.ID] = j
	return j.ID, nil
}

func (m *memStore) Get(_ domain.Context, id string) (domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	return j, nil
}

func (m *memStore) Update(_ domain.Context, in domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[in.ID]
	if !ok || j.Status != domain.JobOpen {
		return domain.ErrStateConflict
	}
	in.Status = j.Status
	in.ClientID = j.ClientID
	in.HiredDeveloperID = j.HiredDeveloperID
	in.CreatedAt = j.CreatedAt
	m.jobs[in.ID] = in
	return nil
}

func (m *memStore) Cancel(_ domain.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != domain.JobOpen {
		return domain.ErrStateConflict
	}
	j.Status = domain.JobCancelled
	m.jobs[id] = j
	return nil
}

func (m *memStore) Complete(_ domain.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != domain.JobInProgress || j.HiredDeveloperID == nil {
		return "", domain.ErrStateConflict
	}
	j.Status = domain.JobCompleted
	m.jobs[id] = j
	dev := m.users[*j.HiredDeveloperID]
	dev.CompletedProjects++
	m.users[*j.HiredDeveloperID] = dev
	return *j.HiredDeveloperID, nil
}

func (m *memStore) Hire(_ domain.Context, jobID, developerID string) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	if j.Status != domain.JobOpen {
		return domain.Application{}, domain.ErrStateConflict
	}
	var chosen *domain.Application
	for id := range m.apps {
		a := m.apps[id]
		if a.JobID == jobID && a.DeveloperID == developerID && a.Status == domain.ApplicationPending {
			chosen = &a
			break
		}
	}
	if chosen == nil {
		return domain.Application{}, domain.ErrNotFound
	}
	j.Status = domain.JobInProgress
	j.HiredDeveloperID = &chosen.DeveloperID
	m.jobs[jobID] = j
	chosen.Status = domain.ApplicationAccepted
	m.apps[chosen.ID] = *chosen
	for id, a := range m.apps {
		if a.JobID == jobID && a.ID != chosen.ID {
			a.Status = domain.ApplicationRejected
			m.apps[id] = a
		}
	}
	return *chosen, nil
}

func (m *memStore) Delete(_ domain.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.jobs, id)
	for aid, a := range m.apps {
		if a.JobID == id {
			delete(m.apps, aid)
		}
	}
	for rid, r := range m.ratings {
		if r.JobID == id {
			delete(m.ratings, rid)
		}
	}
	for mid, msg := range m.msgs {
		if msg.JobID == id {
			delete(m.msgs, mid)
		}
	}
	return nil
}

func (m *memStore) SetPaymentReleased(_ domain.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != domain.JobCompleted {
		return domain.ErrStateConflict
	}
	j.PaymentReleased = true
	m.jobs[id] = j
	return nil
}

func (m *memStore) List(_ domain.Context, f domain.JobFilter) (domain.Page[domain.Job], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := f.Status
	if status == "" {
		status = domain.JobOpen
	}
	var out []domain.Job
	for _, j := range m.jobs {
		if j.Status != status {
			continue
		}
		if f.Category != "" && j.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return domain.NewPage(out, f.PageRequest.Normalize(), int64(len(out))), nil
}

func (m *memStore) ListByClient(_ domain.Context, clientID string, status domain.JobStatus, pr domain.PageRequest) (domain.Page[domain.Job], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Job
	for _, j := range m.jobs {
		if j.ClientID != clientID {
			continue
		}
		if status != "" && j.Status != status {
			continue
		}
		out = append(out, j)
	}
	return domain.NewPage(out, pr.Normalize(), int64(len(out))), nil
}

// appStore adapts memStore to domain.ApplicationRepository. A separate type
// keeps the duplicate method names (Create/Get/Update) from colliding.
type appStore struct{ s *memStore }

func (a appStore) Create(_ domain.Context, in domain.Application) (string, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for _, existing := range a.s.apps {
		if existing.JobID == in.JobID && existing.DeveloperID == in.DeveloperID {
			return "", domain.ErrConflict
		}
	}
	if in.ID == "" {
		in.ID = a.s.nextID("app")
	}
	in.Status = domain.ApplicationPending
	in.CreatedAt = time.Now().UTC()
	a.s.apps[in.ID] = in
	return in.ID, nil
}

func (a appStore) Get(_ domain.Context, id string) (domain.Application, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	app, ok := a.s.apps[id]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	return app, nil
}

func (a appStore) Update(_ domain.Context, in domain.Application) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	app, ok := a.s.apps[in.ID]
	if !ok || app.Status != domain.ApplicationPending {
		return domain.ErrStateConflict
	}
	in.JobID = app.JobID
	in.DeveloperID = app.DeveloperID
	in.Status = app.Status
	a.s.apps[in.ID] = in
	return nil
}

func (a appStore) Withdraw(_ domain.Context, id string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	app, ok := a.s.apps[id]
	if !ok || app.Status != domain.ApplicationPending {
		return domain.ErrStateConflict
	}
	app.Status = domain.ApplicationWithdrawn
	a.s.apps[id] = app
	return nil
}

func (a appStore) ListByJob(_ domain.Context, jobID string) ([]domain.Application, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var out []domain.Application
	for _, app := range a.s.apps {
		if app.JobID == jobID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	return out, nil
}

func (a appStore) ListByDeveloper(_ domain.Context, developerID string, status domain.ApplicationStatus, pr domain.PageRequest) (domain.Page[domain.Application], error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var out []domain.Application
	for _, app := range a.s.apps {
		if app.DeveloperID != developerID {
			continue
		}
		if status != "" && app.Status != status {
			continue
		}
		out = append(out, app)
	}
	return domain.NewPage(out, pr.Normalize(), int64(len(out))), nil
}

// ratingStore adapts memStore to domain.RatingRepository.
type ratingStore struct{ s *memStore }

func (r ratingStore) Create(_ domain.Context, in domain.Rating) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.ratings {
		if existing.JobID == in.JobID {
			return "", domain.ErrConflict
		}
	}
	if in.ID == "" {
		in.ID = r.s.nextID("rating")
	}
	in.CreatedAt = time.Now().UTC()
	r.s.ratings[in.ID] = in
	return in.ID, nil
}

func (r ratingStore) Get(_ domain.Context, id string) (domain.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.ratings[id]
	if !ok {
		return domain.Rating{}, domain.ErrNotFound
	}
	return rt, nil
}

func (r ratingStore) GetByJob(_ domain.Context, jobID string) (domain.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rt := range r.s.ratings {
		if rt.JobID == jobID {
			return rt, nil
		}
	}
	return domain.Rating{}, domain.ErrNotFound
}

func (r ratingStore) Update(_ domain.Context, in domain.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.ratings[in.ID]
	if !ok {
		return domain.ErrNotFound
	}
	in.JobID = rt.JobID
	in.ClientID = rt.ClientID
	in.DeveloperID = rt.DeveloperID
	r.s.ratings[in.ID] = in
	return nil
}

func (r ratingStore) Delete(_ domain.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ratings[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.ratings, id)
	return nil
}

func (r ratingStore) ListByDeveloper(_ domain.Context, developerID string, pr domain.PageRequest) (domain.Page[domain.Rating], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Rating
	for _, rt := range r.s.ratings {
		if rt.DeveloperID == developerID {
			out = append(out, rt)
		}
	}
	return domain.NewPage(out, pr.Normalize(), int64(len(out))), nil
}

func (r ratingStore) RecomputeAggregate(_ domain.Context, developerID string) (domain.DeveloperRatingStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum float64
	var count int64
	for _, rt := range r.s.ratings {
		if rt.DeveloperID == developerID {
			sum += float64(rt.Score)
			count++
		}
	}
	var avg float64
	if count > 0 {
		avg = math.Round(sum/float64(count)*10) / 10
	}
	u := r.s.users[developerID]
	u.Rating = avg
	u.TotalRatings = count
	r.s.users[developerID] = u
	return domain.DeveloperRatingStats{Average: avg, Count: count}, nil
}

// msgStore adapts memStore to domain.MessageRepository.
type msgStore struct{ s *memStore }

func (m msgStore) Create(_ domain.Context, in domain.Message) (string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if in.ID == "" {
		in.ID = m.s.nextID("msg")
	}
	in.CreatedAt = time.Now().UTC()
	m.s.msgs[in.ID] = in
	return in.ID, nil
}

func (m msgStore) ListByJob(_ domain.Context, jobID, readerID string, pr domain.PageRequest) (domain.Page[domain.Message], error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	now := time.Now().UTC()
	var out []domain.Message
	for id, msg := range m.s.msgs {
		if msg.JobID != jobID {
			continue
		}
		if msg.RecipientID == readerID && !msg.IsRead {
			msg.IsRead = true
			msg.ReadAt = &now
			m.s.msgs[id] = msg
		}
		out = append(out, msg)
	}
	return domain.NewPage(out, pr.Normalize(), int64(len(out))), nil
}

func (m msgStore) MarkRead(_ domain.Context, messageID, recipientID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	msg, ok := m.s.msgs[messageID]
	if !ok || msg.RecipientID != recipientID {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	msg.IsRead = true
	msg.ReadAt = &now
	m.s.msgs[messageID] = msg
	return nil
}

func (m msgStore) UnreadCount(_ domain.Context, recipientID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, msg := range m.s.msgs {
		if msg.RecipientID == recipientID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

func (m msgStore) DeleteByJob(_ domain.Context, jobID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, msg := range m.s.msgs {
		if msg.JobID == jobID {
			delete(m.s.msgs, id)
		}
	}
	return nil
}

// userStore adapts memStore to domain.UserRepository.
type userStore struct{ s *memStore }

func (u userStore) Get(_ domain.Context, id string) (domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return usr, nil
}

func (u userStore) UpdateProfile(_ domain.Context, in domain.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[in.ID]
	if !ok {
		return domain.ErrNotFound
	}
	in.Role = usr.Role
	in.Email = usr.Email
	in.Rating = usr.Rating
	in.TotalRatings = usr.TotalRatings
	in.CompletedProjects = usr.CompletedProjects
	u.s.users[in.ID] = in
	return nil
}

func (u userStore) ListDevelopers(_ domain.Context, f domain.DeveloperFilter) (domain.Page[domain.User], error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	var out []domain.User
	for _, usr := range u.s.users {
		if usr.Role != domain.RoleDeveloper {
			continue
		}
		if f.MinRating > 0 && usr.Rating < f.MinRating {
			continue
		}
		out = append(out, usr)
	}
	return domain.NewPage(out, f.PageRequest.Normalize(), int64(len(out))), nil
}

// env bundles the fakes with fully wired services for a test scenario.
type env struct {
	store    *memStore
	notifier *capturingNotifier
	cache    *mapCache

	jobs     usecase.JobService
	apps     usecase.ApplicationService
	hire     usecase.HireService
	ratings  usecase.RatingService
	messages usecase.MessageService
	profiles usecase.ProfileService
}

func newEnv() *env {
	s := newMemStore()
	n := &capturingNotifier{}
	c := newMapCache()
	return &env{
		store:    s,
		notifier: n,
		cache:    c,
		jobs:     usecase.NewJobService(s, n),
		apps:     usecase.NewApplicationService(appStore{s}, s, n),
		hire:     usecase.NewHireService(s, n),
		ratings:  usecase.NewRatingService(ratingStore{s}, s, c),
		messages: usecase.NewMessageService(msgStore{s}, s),
		profiles: usecase.NewProfileService(userStore{s}, c),
	}
}

// seedJob inserts a job directly, bypassing service-level validation.
func (e *env) seedJob(j domain.Job) domain.Job {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	if j.ID == "" {
		j.ID = e.store.nextID("job")
	}
	if j.Status == "" {
		j.Status = domain.JobOpen
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	e.store.jobs[j.ID] = j
	return j
}

// seedApplication inserts an application directly.
func (e *env) seedApplication(a domain.Application) domain.Application {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	if a.ID == "" {
		a.ID = e.store.nextID("app")
	}
	if a.Status == "" {
		a.Status = domain.ApplicationPending
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	e.store.apps[a.ID] = a
	return a
}

// capturingNotifier records published events.
type capturingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (n *capturingNotifier) Publish(_ domain.Context, ev domain.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, ev)
	return nil
}

func (n *capturingNotifier) kinds() []domain.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.EventKind, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Kind)
	}
	return out
}

// mapCache is an in-memory domain.ProfileCache.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]domain.User
	gets    int
	hits    int
}

func newMapCache() *mapCache { return &mapCache{entries: map[string]domain.User{}} }

func (c *mapCache) Get(_ domain.Context, id string) (domain.User, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	u, ok := c.entries[id]
	if ok {
		c.hits++
	}
	return u, ok, nil
}

func (c *mapCache) Set(_ domain.Context, u domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[u.ID] = u
	return nil
}

func (c *mapCache) Invalidate(_ domain.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}
