// Package repo holds the domain.UserStore implementations: gorm (postgres/mysql),
// MongoDB and an in-process store used by tests and the "memory" driver.
package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"user-account-service/internal/domain"
)

var (
	_ domain.UserStore = (*UserRepo)(nil)
	_ domain.UserStore = (*MongoUserRepo)(nil)
	_ domain.UserStore = (*MemoryUserRepo)(nil)
)

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// drivers disagree on error types; match on the message
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func domainOf(email string) string {
	if at := strings.IndexByte(email, '@'); at >= 0 {
		return email[at+1:]
	}
	return ""
}
