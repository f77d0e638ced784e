package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// SessionTTL bounds the lifetime of issued session tokens.
	SessionTTL time.Duration `env:"SESSION_TTL, default=24h"`
	// AccessCodeTTL bounds how long a freshly issued one-time access code
	// stays redeemable.
	AccessCodeTTL time.Duration `env:"ACCESS_CODE_TTL, default=5m"`

	// UploadDir is the root directory for stored letter documents.
	UploadDir string `env:"UPLOAD_DIR, default=uploads"`
	// MaxUploadSize caps multipart request bodies, in Echo's size notation.
	MaxUploadSize string `env:"MAX_UPLOAD_SIZE, default=5M"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=mapascal"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
