package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`

	// StoreBackend selects the persistence layer. The in-memory backend is
	// for development and tests.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory" validate:"oneof=memory postgres"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"auction_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"auction_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"auction_db"`

	// RedisHost left empty disables the snapshot cache; the engine then
	// serves every poll from the primary store.
	RedisHost string `env:"REDIS_HOST" envDefault:""`
	RedisPort uint16 `env:"REDIS_PORT" envDefault:"6379" validate:"min=1000,max=65535"`

	JwtSecret       string `env:"JWT_SECRET"        envDefault:"dev-secret-change-me" validate:"min=8"`
	TokenTTLMinutes int    `env:"TOKEN_TTL_MINUTES" envDefault:"1440"                 validate:"min=1"`

	// AdminEmail, when set, grants the admin role to the account that
	// registers with it.
	AdminEmail string `env:"ADMIN_EMAIL" envDefault:""`

	// SyncIntervalSeconds is both the snapshot cache TTL and the warmer
	// period; clients are expected to poll at the same cadence.
	SyncIntervalSeconds int `env:"SYNC_INTERVAL_SECONDS" envDefault:"10" validate:"min=1"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
