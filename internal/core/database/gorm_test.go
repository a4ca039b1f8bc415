package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"user-account-service/internal/domain"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/users?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/users?parseTime=true",
		},
		{
			name: "url form gets defaults",
			in:   "mysql://root:pw@127.0.0.1:3306/users",
			want: "root:pw@tcp(127.0.0.1:3306)/users?charset=utf8mb4&parseTime=true",
		},
		{
			name: "jdbc params translated and overrides applied",
			in:   "jdbc:mysql://db:3306/users?useSSL=false&characterEncoding=utf8&useUnicode=true",
			user: "app",
			pass: "secret",
			want: "app:secret@tcp(db:3306)/users?charset=utf8&parseTime=true&tls=false",
		},
		{
			name: "empty",
			in:   "  ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeMySQLDSN(tt.in, tt.user, tt.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/users", maskDSN("root:pw@tcp(db:3306)/users"))
	assert.Equal(t, "db:3306/users", maskDSN("db:3306/users"))
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedDatabase)
}
