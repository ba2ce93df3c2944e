// internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	API      APIConfig
	Session  SessionConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Import   ImportConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// APIConfig points at the remote REST collaborator.
type APIConfig struct {
	BaseURL        string
	TokenHeader    string
	TimeoutSeconds int
}

type SessionConfig struct {
	TokenStore string // "file" or "redis"
	TokenFile  string
}

// DatabaseConfig configures the optional import journal.
type DatabaseConfig struct {
	Enabled  bool
	Driver   string // "postgres" (lib/pq) or "pgx"
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	SnapshotTTLSeconds int
	JobTTLSeconds      int
}

// StorageConfig is an S3-compatible bucket used as an import source and archive.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
}

type ImportConfig struct {
	ParseMode          string
	SuccessDelayMillis int
	ArchiveUploads     bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		home, _ := os.UserHomeDir()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("API_BASE_URL", "http://localhost:5000/api")
		viper.SetDefault("API_TOKEN_HEADER", "x-auth-token")
		viper.SetDefault("API_TIMEOUT_SECONDS", 0)
		viper.SetDefault("SESSION_TOKEN_STORE", "file")
		viper.SetDefault("SESSION_TOKEN_FILE", filepath.Join(home, ".b2b", "token"))
		viper.SetDefault("DB_ENABLED", false)
		viper.SetDefault("DB_DRIVER", "postgres")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "b2b_portal")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_SNAPSHOT_TTL_SECONDS", 0)
		viper.SetDefault("CACHE_JOB_TTL_SECONDS", 86400)
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("IMPORT_PARSE_MODE", "naive")
		viper.SetDefault("IMPORT_SUCCESS_DELAY_MS", 1500)
		viper.SetDefault("IMPORT_ARCHIVE_UPLOADS", false)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			API: APIConfig{
				BaseURL:        viper.GetString("API_BASE_URL"),
				TokenHeader:    viper.GetString("API_TOKEN_HEADER"),
				TimeoutSeconds: viper.GetInt("API_TIMEOUT_SECONDS"),
			},
			Session: SessionConfig{
				TokenStore: viper.GetString("SESSION_TOKEN_STORE"),
				TokenFile:  viper.GetString("SESSION_TOKEN_FILE"),
			},
			Database: DatabaseConfig{
				Enabled:  viper.GetBool("DB_ENABLED"),
				Driver:   viper.GetString("DB_DRIVER"),
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				SnapshotTTLSeconds: viper.GetInt("CACHE_SNAPSHOT_TTL_SECONDS"),
				JobTTLSeconds:      viper.GetInt("CACHE_JOB_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Drive: DriveConfig{
				CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			},
			Import: ImportConfig{
				ParseMode:          viper.GetString("IMPORT_PARSE_MODE"),
				SuccessDelayMillis: viper.GetInt("IMPORT_SUCCESS_DELAY_MS"),
				ArchiveUploads:     viper.GetBool("IMPORT_ARCHIVE_UPLOADS"),
			},
		}
	})

	return instance
}
