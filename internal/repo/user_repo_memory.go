package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"user-account-service/internal/domain"
	"user-account-service/pkg/utils"
)

// MemoryUserRepo keeps users in insertion order behind a mutex.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	byID  map[string]*domain.User
	order []string
	now   func() time.Time
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byID: map[string]*domain.User{}, now: time.Now}
}

func clone(u *domain.User) *domain.User {
	c := *u
	if u.SessionToken != nil {
		tok := *u.SessionToken
		c.SessionToken = &tok
	}
	return &c
}

func (r *MemoryUserRepo) find(match func(*domain.User) bool) *domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if u := r.byID[id]; match(u) {
			return clone(u)
		}
	}
	return nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email }), nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id string, includeDeleted bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok || (u.IsDeleted && !includeDeleted) {
		return nil, nil
	}
	return clone(u), nil
}

func (r *MemoryUserRepo) FindByToken(_ context.Context, token string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return !u.IsDeleted && u.HasSession(token) }), nil
}

func (r *MemoryUserRepo) emailTaken(email, exceptID string) bool {
	for _, u := range r.byID {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *MemoryUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(u.Email, "") {
		return domain.ErrDuplicateEmail
	}
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	now := r.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.byID[u.ID] = clone(u)
	r.order = append(r.order, u.ID)
	return nil
}

func (r *MemoryUserRepo) Save(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.emailTaken(u.Email, u.ID) {
		return domain.ErrDuplicateEmail
	}
	u.UpdatedAt = r.now().UTC()
	r.byID[u.ID] = clone(u)
	return nil
}

func (r *MemoryUserRepo) Query(_ context.Context, q domain.Query) ([]domain.User, int64, error) {
	r.mu.RLock()
	term := strings.ToLower(strings.TrimSpace(q.Search))
	var matched []domain.User
	for _, id := range r.order {
		u := r.byID[id]
		if u.IsDeleted {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(u.Name), term) &&
			!strings.Contains(strings.ToLower(u.Email), term) {
			continue
		}
		c := *clone(u)
		c.PasswordHash, c.SessionToken = "", nil
		matched = append(matched, c)
	}
	r.mu.RUnlock()

	if less := lessFor(q.SortBy); less != nil {
		sort.SliceStable(matched, func(i, j int) bool { return less(&matched[i], &matched[j]) })
	}

	total := int64(len(matched))
	start := min(max(q.Skip, 0), len(matched))
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(matched))
	}
	return append([]domain.User{}, matched[start:end]...), total, nil
}

func lessFor(f domain.SortField) func(a, b *domain.User) bool {
	switch f {
	case domain.SortName:
		return func(a, b *domain.User) bool { return a.Name < b.Name }
	case domain.SortEmail:
		return func(a, b *domain.User) bool { return a.Email < b.Email }
	case domain.SortCreatedAt:
		return func(a, b *domain.User) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case domain.SortUpdatedAt:
		return func(a, b *domain.User) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case domain.SortID:
		return func(a, b *domain.User) bool { return a.ID < b.ID }
	}
	return nil
}

func (r *MemoryUserRepo) AggregateByEmailDomain(_ context.Context) ([]domain.DomainCount, error) {
	r.mu.RLock()
	counts := map[string]int64{}
	for _, u := range r.byID {
		if !u.IsDeleted {
			counts[domainOf(u.Email)]++
		}
	}
	r.mu.RUnlock()

	out := make([]domain.DomainCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, domain.DomainCount{Domain: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out, nil
}
