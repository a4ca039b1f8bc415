package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	MaxInFlight       int64
	MaxBodyBytes      int64
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type JWT struct {
	Secret   string
	Issuer   string
	TTLHours int
}

type Redis struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	ReportTTLSec int    `mapstructure:"reportttlsec"`
}

type DB struct {
	Driver             string
	DSN                string
	Database           string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
	ConnectTimeoutSec  int
}

type Auth struct {
	BcryptCost int
}

type Config struct {
	App   App
	Log   Log
	JWT   JWT
	DB    DB
	Auth  Auth
	Redis Redis `mapstructure:"redis"`
}

var (
	ErrMissingDSN    = errors.New("database connection string is required (db.dsn / MONGO_URI / DATABASE_URL)")
	ErrMissingSecret = errors.New("token signing secret is required (jwt.secret / JWT_SECRET)")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "user-account-service")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 10)
	v.SetDefault("app.http.maxinflight", 300)
	v.SetDefault("app.http.maxbodybytes", 1<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 7)
	v.SetDefault("log.file.maxagedays", 30)

	v.SetDefault("jwt.issuer", "user-account-service")
	v.SetDefault("jwt.ttlhours", 7*24)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.database", "users")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("db.connecttimeoutsec", 10)

	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.reportttlsec", 30)
}

// Load reads an optional YAML file, then APP_* environment variables, then the legacy
// MONGO_URI / DATABASE_URL / JWT_SECRET / PORT names.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("db.dsn", "APP_DB_DSN", "DATABASE_URL", "MONGO_URI")
	_ = v.BindEnv("jwt.secret", "APP_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("app.http.port", "APP_APP_HTTP_PORT", "PORT")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DB.Driver != "memory" && strings.TrimSpace(c.DB.DSN) == "" {
		errs = append(errs, ErrMissingDSN)
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, ErrMissingSecret)
	}
	if c.App.HTTP.Port <= 0 || c.App.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid listen port %d", c.App.HTTP.Port))
	}
	return errors.Join(errs...)
}
