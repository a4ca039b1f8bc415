// Package user implements the account lifecycle: registration, session tokens,
// soft-deleted CRUD, the paginated user query and the email-domain report.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"user-account-service/internal/core/auth"
	"user-account-service/internal/core/cache"
	"user-account-service/internal/domain"
	"user-account-service/pkg/utils"
)

const reportCacheKey = "users:report:domains"

type Tokens interface {
	Issue(uid string) (string, error)
	Parse(token string) (*auth.Claims, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type Service struct {
	store     domain.UserStore
	tokens    Tokens
	hasher    PasswordHasher
	cache     *cache.Cache
	reportTTL time.Duration
	log       *zap.Logger
}

type Option func(*Service)

// WithReportCache caches the domain report for ttl; writes invalidate it.
func WithReportCache(c *cache.Cache, ttl time.Duration) Option {
	return func(s *Service) { s.cache, s.reportTTL = c, ttl }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(store domain.UserStore, tokens Tokens, hasher PasswordHasher, opts ...Option) *Service {
	s := &Service{store: store, tokens: tokens, hasher: hasher, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates the user with its first session token already stored.
func (s *Service) Register(ctx context.Context, in RegisterInput) (u *domain.User, token string, err error) {
	defer func() { observe("register", err) }()

	email := strings.TrimSpace(in.Email)
	existing, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return nil, "", domain.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	u = &domain.User{
		ID:           utils.NewID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
	}
	token, err = s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	u.SessionToken = &token

	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}
	s.invalidateReport(ctx)
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return u, token, nil
}

// Login replaces the stored session token. Soft-deleted users cannot log in.
func (s *Service) Login(ctx context.Context, email, password string) (token string, err error) {
	defer func() { observe("login", err) }()

	u, err := s.store.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("find user by email: %w", err)
	}
	if u == nil || u.IsDeleted || !s.hasher.Verify(password, u.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	token, err = s.tokens.Issue(u.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	u.SessionToken = &token
	if err := s.store.Save(ctx, u); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	s.log.Info("user logged in", zap.String("user_id", u.ID))
	return token, nil
}

// Authenticate resolves a bearer token to its user. The token must be the one stored on an
// active user and must still carry a valid signature and expiry for that user's id.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	u, err := s.store.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("find user by token: %w", err)
	}
	if u == nil {
		return nil, domain.ErrInvalidToken
	}
	claims, err := s.tokens.Parse(token)
	if err != nil || claims.UID != u.ID {
		s.log.Debug("stored token rejected", zap.String("user_id", u.ID), zap.Error(err))
		return nil, domain.ErrInvalidToken
	}
	return u, nil
}

func (s *Service) Logout(ctx context.Context, token string) (err error) {
	defer func() { observe("logout", err) }()

	u, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	u.SessionToken = nil
	if err := s.store.Save(ctx, u); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.log.Info("user logged out", zap.String("user_id", u.ID))
	return nil
}

func (s *Service) List(ctx context.Context, q ListQuery) (*domain.Page, error) {
	items, total, err := s.store.Query(ctx, q.StoreQuery())
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	if items == nil {
		items = []domain.User{}
	}
	return &domain.Page{TotalCount: total, Page: q.Page, PageSize: q.PageSize, Items: items}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.store.FindByID(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// Update applies patch to an active user. Password and session are never touched here.
func (s *Service) Update(ctx context.Context, id string, patch domain.UserPatch) (u *domain.User, err error) {
	defer func() { observe("update", err) }()

	u, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(u)
	if err := s.store.Save(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.invalidateReport(ctx)
	return u, nil
}

// Delete flags the user as deleted. Already-deleted users are accepted again.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer func() { observe("delete", err) }()

	u, err := s.store.FindByID(ctx, id, true)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return domain.ErrNotFound
	}
	u.IsDeleted = true
	if err := s.store.Save(ctx, u); err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	s.invalidateReport(ctx)
	s.log.Info("user soft-deleted", zap.String("user_id", u.ID))
	return nil
}

func (s *Service) DomainReport(ctx context.Context) ([]domain.DomainCount, error) {
	out, err := cache.GetOrLoadJSON(s.cache, ctx, reportCacheKey, s.reportTTL, s.store.AggregateByEmailDomain)
	if err != nil {
		return nil, fmt.Errorf("aggregate email domains: %w", err)
	}
	if out == nil {
		out = []domain.DomainCount{}
	}
	return out, nil
}

func (s *Service) invalidateReport(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, reportCacheKey); err != nil {
		s.log.Warn("report cache invalidation failed", zap.Error(err))
	}
}
