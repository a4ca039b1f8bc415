package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"user-account-service/internal/domain"
	"user-account-service/pkg/utils"
)

var sortColumns = map[domain.SortField]string{
	domain.SortName:      "name",
	domain.SortEmail:     "email",
	domain.SortCreatedAt: "created_at",
	domain.SortUpdatedAt: "updated_at",
	domain.SortID:        "id",
}

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) first(ctx context.Context, q *gorm.DB) (*domain.User, error) {
	var u domain.User
	err := q.WithContext(ctx).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, r.db.Where("email = ?", email))
}

func (r *UserRepo) FindByID(ctx context.Context, id string, includeDeleted bool) (*domain.User, error) {
	q := r.db.Where("id = ?", id)
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	return r.first(ctx, q)
}

func (r *UserRepo) FindByToken(ctx context.Context, token string) (*domain.User, error) {
	return r.first(ctx, r.db.Where("session_token = ? AND is_deleted = ?", token, false))
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepo) filtered(ctx context.Context, search string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.User{}).Where("is_deleted = ?", false)
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}
	return q
}

func (r *UserRepo) Query(ctx context.Context, q domain.Query) ([]domain.User, int64, error) {
	var total int64
	if err := r.filtered(ctx, q.Search).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	find := r.filtered(ctx, q.Search).Omit("password_hash", "session_token")
	if col, ok := sortColumns[q.SortBy]; ok {
		find = find.Order(clause.OrderByColumn{Column: clause.Column{Name: col}})
	} else {
		find = find.Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}})
	}
	if q.SortBy != domain.SortID {
		find = find.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}

	users := []domain.User{}
	if err := find.Offset(q.Skip).Limit(q.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) AggregateByEmailDomain(ctx context.Context) ([]domain.DomainCount, error) {
	out := []domain.DomainCount{}
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Select(emailDomainExpr(r.db.Dialector.Name())+" AS domain, COUNT(*) AS count").
		Where("is_deleted = ?", false).
		Group("domain").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func emailDomainExpr(dialect string) string {
	switch dialect {
	case "postgres":
		return "SPLIT_PART(email, '@', 2)"
	case "mysql":
		return "SUBSTRING_INDEX(email, '@', -1)"
	default:
		return "SUBSTR(email, INSTR(email, '@') + 1)"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
