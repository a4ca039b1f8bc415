package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name         string    `gorm:"size:64" bson:"name" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:191" bson:"email" json:"email"`
	PasswordHash string    `gorm:"size:191" bson:"password_hash" json:"-"`
	SessionToken *string   `gorm:"size:512;index" bson:"session_token" json:"-"`
	IsDeleted    bool      `gorm:"not null;default:false;index" bson:"is_deleted" json:"isDeleted"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// HasSession reports whether token is the session currently stored on u.
func (u *User) HasSession(token string) bool {
	return u.SessionToken != nil && *u.SessionToken == token
}

// UserPatch carries the optional fields of a partial update. A nil field is left untouched.
type UserPatch struct {
	Name  *string
	Email *string
}

func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}

// UserStore persists users. Finders return (nil, nil) when nothing matches.
type UserStore interface {
	// FindByEmail matches soft-deleted users too.
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string, includeDeleted bool) (*User, error)
	// FindByToken only matches active users.
	FindByToken(ctx context.Context, token string) (*User, error)
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	Query(ctx context.Context, q Query) ([]User, int64, error)
	AggregateByEmailDomain(ctx context.Context) ([]DomainCount, error)
}
