package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (policy constants, timeouts), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Jobs    JobsConfig
	Lending LendingConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// JobsConfig guards the scheduled-trigger endpoint. The trigger itself lives
// outside the process (cron, Cloud Scheduler, systemd timer).
type JobsConfig struct {
	Secret string `envconfig:"JOBS_SECRET" required:"true"`
}

// LendingConfig carries the lending policy constants. The defaults preserve
// the historical lab policy; multipliers apply to a debt's unit price by kind.
type LendingConfig struct {
	ScanHost            string        `envconfig:"SCAN_HOST" default:"localhost:8080"`
	GraceWindow         time.Duration `envconfig:"LENDING_GRACE_WINDOW" default:"24h"`
	ReturnLookahead     time.Duration `envconfig:"LENDING_RETURN_LOOKAHEAD" default:"24h"`
	ReturnTokenSlack    time.Duration `envconfig:"LENDING_RETURN_TOKEN_SLACK" default:"2h"`
	LateMultiplier      float64       `envconfig:"LENDING_LATE_MULTIPLIER" default:"1.0"`
	BrokenMultiplier    float64       `envconfig:"LENDING_BROKEN_MULTIPLIER" default:"1.2"`
	LostMultiplier      float64       `envconfig:"LENDING_LOST_MULTIPLIER" default:"1.5"`
	PromptCycleInterval int           `envconfig:"LENDING_PROMPT_CYCLE_INTERVAL" default:"6"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:16380",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Jobs: JobsConfig{
			Secret: "test-jobs-secret",
		},
		Lending: LendingConfig{
			ScanHost:            "localhost:8889",
			GraceWindow:         24 * time.Hour,
			ReturnLookahead:     24 * time.Hour,
			ReturnTokenSlack:    2 * time.Hour,
			LateMultiplier:      1.0,
			BrokenMultiplier:    1.2,
			LostMultiplier:      1.5,
			PromptCycleInterval: 6,
		},
	}
}
