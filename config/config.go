package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database driver names accepted in DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Broker names accepted in MQ_BACKEND.
const (
	MQBackendRabbitMQ = "rabbitmq"
	MQBackendPubSub   = "pubsub"
)

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Password   PasswordConfig
	Services   ServicesConfig
	MQ         MQConfig
}

// DatabaseConfig selects and parameterizes the storage backend. Driver is
// either "postgres" (networked, pooled) or "sqlite" (single file, schema
// created at open).
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
	Path     string // sqlite database file
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig carries the RS256 key pair as PEM text. Both halves are required
// by the auth service; the other services only ever see issued tokens.
type AuthConfig struct {
	PrivateKeyPEM   string
	PublicKeyPEM    string
	LoginPerMinute  int
	VerifyPerMinute int
	UsersPerMinute  int
}

// PasswordConfig parameterizes argon2id hashing. Defaults follow the OWASP
// recommendation: 3 iterations over 64 MB with 4 lanes.
type PasswordConfig struct {
	TimeCost    int
	MemoryKB    int
	Parallelism int
}

// ServicesConfig holds the base URLs the services use to reach each other.
type ServicesConfig struct {
	UserServiceURL string
	AuthServiceURL string
	ClientTimeout  time.Duration
}

// MQConfig selects the broker for post lifecycle events. An empty Backend
// disables publishing entirely.
type MQConfig struct {
	Backend  string // "rabbitmq", "pubsub" or ""
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "titanium"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "titanium_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
		Path:     getEnv("DB_SQLITE_PATH", "data/titanium.db"),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database:   dbConfig,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			PrivateKeyPEM:   getEnv("JWT_PRIVATE_KEY", ""),
			PublicKeyPEM:    getEnv("JWT_PUBLIC_KEY", ""),
			LoginPerMinute:  getEnvInt("LOGIN_RATE_PER_MINUTE", 5),
			VerifyPerMinute: getEnvInt("VERIFY_RATE_PER_MINUTE", 30),
			UsersPerMinute:  getEnvInt("USERS_RATE_PER_MINUTE", 10),
		},
		Password: PasswordConfig{
			TimeCost:    getEnvInt("ARGON2_TIME_COST", 3),
			MemoryKB:    getEnvInt("ARGON2_MEMORY_KB", 64*1024),
			Parallelism: getEnvInt("ARGON2_PARALLELISM", 4),
		},
		Services: ServicesConfig{
			UserServiceURL: getEnv("USER_SERVICE_URL", "http://user-service:8001"),
			AuthServiceURL: getEnv("AUTH_SERVICE_URL", "http://auth-service:8002"),
			ClientTimeout:  getEnvDuration("SERVICE_CLIENT_TIMEOUT", 5*time.Second),
		},
		MQ: MQConfig{
			Backend: strings.ToLower(getEnv("MQ_BACKEND", "")),
			RabbitMQ: RabbitMQConfig{
				URL:             getEnv("RABBITMQ_URL", ""),
				QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
				QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
				PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH", 0),
			},
			PubSub: PubSubConfig{
				ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
				SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(valueStr); err == nil {
			return d
		}
	}
	return defaultValue
}
