package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/designer/pkg/httpx"
	"github.com/aussiebroadwan/designer/pkg/jwtx"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DESIGNER_APP_JWT_KEY
// for app.jwt_key.
const EnvPrefix = "DESIGNER"

type Config struct {
	Env string `mapstructure:"env"` // dev, staging, prod

	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Heartbeat HeartbeatConfig `mapstructure:"heartbeat"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type AppConfig struct {
	DataDir     string        `mapstructure:"data_dir"`     // users.json, sessions.json and the lock file
	LockTimeout time.Duration `mapstructure:"lock_timeout"` // 0 blocks until the lock is free

	JWTKey             string        `mapstructure:"jwt_key"` // HS256 secret, at least 32 bytes
	JWTIssuer          string        `mapstructure:"jwt_issuer"`
	AccessTokenExpiry  time.Duration `mapstructure:"jwt_access_token_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"jwt_refresh_token_expiry"`

	PepperFile        string `mapstructure:"pepper_file"`
	AdminUser         string `mapstructure:"admin_user"` // empty disables the first-run admin
	AdminPasswordFile string `mapstructure:"admin_password_file"`
}

type ServerConfig struct {
	Port                int              `mapstructure:"port"`
	ShutdownGracePeriod time.Duration    `mapstructure:"shutdown_grace_period"`
	CORS                httpx.CORSConfig `mapstructure:"cors"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

type HeartbeatConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type RateLimitConfig struct {
	Credential httpx.RateLimitConfig `mapstructure:"credential"`
	Lenient    httpx.RateLimitConfig `mapstructure:"lenient"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("app.data_dir", "data")
	v.SetDefault("app.lock_timeout", time.Duration(0))
	v.SetDefault("app.jwt_key", "")
	v.SetDefault("app.jwt_issuer", "designer")
	v.SetDefault("app.jwt_access_token_expiry", jwtx.DefaultAccessTokenTTL)
	v.SetDefault("app.jwt_refresh_token_expiry", jwtx.DefaultRefreshTokenTTL)
	v.SetDefault("app.pepper_file", "data/pepper")
	v.SetDefault("app.admin_user", "admin")
	v.SetDefault("app.admin_password_file", "data/admin-password")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_grace_period", 10*time.Second)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.max_age", 10*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("heartbeat.interval", 5*time.Second)

	v.SetDefault("rate_limit.credential.requests", httpx.CredentialLimit.RequestsPerWindow)
	v.SetDefault("rate_limit.credential.window", httpx.CredentialLimit.Window)
	v.SetDefault("rate_limit.credential.burst", httpx.CredentialLimit.Burst)
	v.SetDefault("rate_limit.lenient.requests", httpx.LenientLimit.RequestsPerWindow)
	v.SetDefault("rate_limit.lenient.window", httpx.LenientLimit.Window)
	v.SetDefault("rate_limit.lenient.burst", httpx.LenientLimit.Burst)
}

// LoadConfig reads the YAML file at path, deep-merges localPath over it,
// then applies DESIGNER_* environment overrides. Either file may be
// missing; an empty path skips it.
func LoadConfig(path, localPath string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := readConfigFile(v, path, v.ReadInConfig); err != nil {
		return Config{}, err
	}
	if err := readConfigFile(v, localPath, v.MergeInConfig); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string, read func() error) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v.SetConfigFile(path)
	if err := read(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings the service cannot start without.
func (c Config) Validate() error {
	var errs []error

	if len(c.App.JWTKey) < jwtx.MinKeyLength {
		errs = append(errs, fmt.Errorf("config: app.jwt_key must be at least %d bytes", jwtx.MinKeyLength))
	}
	if c.App.AccessTokenExpiry <= 0 {
		errs = append(errs, errors.New("config: app.jwt_access_token_expiry must be positive"))
	}
	if c.App.RefreshTokenExpiry <= 0 {
		errs = append(errs, errors.New("config: app.jwt_refresh_token_expiry must be positive"))
	}
	if c.App.DataDir == "" {
		errs = append(errs, errors.New("config: app.data_dir must be set"))
	}
	if c.App.LockTimeout < 0 {
		errs = append(errs, errors.New("config: app.lock_timeout must not be negative"))
	}
	if c.App.PepperFile == "" {
		errs = append(errs, errors.New("config: app.pepper_file must be set"))
	}
	if c.App.AdminUser != "" && c.App.AdminPasswordFile == "" {
		errs = append(errs, errors.New("config: app.admin_password_file must be set when app.admin_user is"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: server.port %d out of range", c.Server.Port))
	}

	return errors.Join(errs...)
}
