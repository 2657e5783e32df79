package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"4000"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"pos-ledger"`
	Env         string `envconfig:"ENV" default:"production"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	StoreDriver      string `envconfig:"STORE_DRIVER" default:"mongo"`
	ConnectionString string `envconfig:"CONNECTION_STRING"`
	MongoDatabase    string `envconfig:"MONGO_DATABASE" default:"pos"`
	DBDSN            string `envconfig:"DB_DSN"`

	AccessKeySecret   string        `envconfig:"ACCESS_KEY_SECRET" required:"true"`
	AccessTokenTTL    time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"45m"`
	AllowRegistration bool          `envconfig:"ALLOW_REGISTRATION" default:"true"`
	CORSOrigins       []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"pos.transactions"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash-001"`
}

// Load reads an optional .env file and then the process environment. The
// returned bool reports whether a .env file was found.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, dotenv, errors.Wrap(err, "read environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, dotenv, err
	}
	return &cfg, dotenv, nil
}

func (c *Config) Validate() error {
	if c.AccessKeySecret == "" {
		return errors.New("ACCESS_KEY_SECRET is required")
	}
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverMongo:
		if c.ConnectionString == "" {
			return errors.New("CONNECTION_STRING is required when STORE_DRIVER=mongo")
		}
	case DriverMySQL:
		if c.DBDSN == "" {
			return errors.New("DB_DSN is required when STORE_DRIVER=mysql")
		}
	case DriverMemory:
	default:
		return errors.Errorf("unknown STORE_DRIVER %q (want mongo, mysql or memory)", c.StoreDriver)
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
