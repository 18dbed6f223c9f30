package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3200"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	APIKey   string `envconfig:"API_KEY" required:"true"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".trustledger/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"trustledger/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
	// CacheSize is the number of records kept in the read cache; 0 disables it.
	CacheSize int `envconfig:"CACHE_SIZE" default:"1024"`
}

type LedgerEnv struct {
	GenesisFile string `envconfig:"GENESIS_FILE" default:"genesis.yaml"`
	// OracleFile is an optional watched allowlist consulted in addition to the
	// stored registry.
	OracleFile  string `envconfig:"ORACLE_FILE"`
	NATSURL     string `envconfig:"NATS_URL"`
	NATSSubject string `envconfig:"NATS_SUBJECT" default:"trustledger"`
}

type Env struct {
	BaseEnv
	StorageEnv
	LedgerEnv
}

const namespace = "TRUSTLEDGER"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if err := env.StorageEnv.validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

// LoadStorageEnv loads only the storage settings, for tools that do not serve
// HTTP.
func LoadStorageEnv() (*StorageEnv, error) {
	var env StorageEnv
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if err := env.validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *StorageEnv) validate() error {
	switch e.Type {
	case "local":
	case "s3":
		if e.S3Bucket == "" {
			return fmt.Errorf("%s_S3_BUCKET is required for s3 storage", namespace)
		}
	default:
		return fmt.Errorf("unknown storage type %q", e.Type)
	}
	if e.CacheSize < 0 {
		return fmt.Errorf("%s_CACHE_SIZE must not be negative", namespace)
	}
	return nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}
