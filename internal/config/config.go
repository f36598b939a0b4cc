package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
	AzureOpenAI AzureOpenAIConfig
	Storage     StorageConfig
	VectorStore VectorStoreConfig
	Logger      LoggerConfig
	CORS        CORSConfig
	CacheTTLs   CacheTTLConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type DatabaseConfig struct {
	DSN           string
	MigrationsDir string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
}

type GoogleOAuthConfig struct {
	ClientID  string
	ClockSkew time.Duration
}

type AzureOpenAIConfig struct {
	Endpoint            string
	APIKey              string
	APIVersion          string
	Deployment          string
	EmbeddingDeployment string
	Timeout             time.Duration
}

// StorageConfig selects the image storage backend. Source is "local" or
// "gcs". PublicBaseURL prefixes returned image URLs; for local storage it is
// the static mount path.
type StorageConfig struct {
	Source        string
	UploadDir     string
	PublicBaseURL string
	GCSBucket     string
	MaxUploadSize int64
}

type VectorStoreConfig struct {
	Enabled        bool
	MatchThreshold float64
	Dimensions     int
}

type LoggerConfig struct {
	Level string
	Env   string
}

type CORSConfig struct {
	AllowOrigins string
}

type CacheTTLConfig struct {
	Embedding string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A config file is optional; environment variables can carry the
		// whole configuration in containerized deployments.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
			BodyLimit:    viper.GetInt("server.body_limit"),
		},
		Database: DatabaseConfig{
			DSN:           viper.GetString("database.dsn"),
			MigrationsDir: viper.GetString("database.migrations_dir"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey:      viper.GetString("jwt.secret_key"),
			AccessTokenTTL: viper.GetDuration("jwt.access_token_ttl"),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:  viper.GetString("google_oauth.client_id"),
			ClockSkew: viper.GetDuration("google_oauth.clock_skew"),
		},
		AzureOpenAI: AzureOpenAIConfig{
			Endpoint:            viper.GetString("azure_openai.endpoint"),
			APIKey:              viper.GetString("azure_openai.api_key"),
			APIVersion:          viper.GetString("azure_openai.api_version"),
			Deployment:          viper.GetString("azure_openai.deployment"),
			EmbeddingDeployment: viper.GetString("azure_openai.embedding_deployment"),
			Timeout:             viper.GetDuration("azure_openai.timeout"),
		},
		Storage: StorageConfig{
			Source:        viper.GetString("storage.source"),
			UploadDir:     viper.GetString("storage.upload_dir"),
			PublicBaseURL: viper.GetString("storage.public_base_url"),
			GCSBucket:     viper.GetString("storage.gcs_bucket"),
			MaxUploadSize: viper.GetInt64("storage.max_upload_size"),
		},
		VectorStore: VectorStoreConfig{
			Enabled:        viper.GetBool("vector_store.enabled"),
			MatchThreshold: viper.GetFloat64("vector_store.match_threshold"),
			Dimensions:     viper.GetInt("vector_store.dimensions"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		CORS: CORSConfig{
			AllowOrigins: viper.GetString("cors.allow_origins"),
		},
		CacheTTLs: CacheTTLConfig{
			Embedding: viper.GetString("cache_ttls.embedding"),
		},
	}

	applyEnvOverrides(config)

	return config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("server.body_limit", 10*1024*1024)
	viper.SetDefault("database.migrations_dir", "database/migrations")
	viper.SetDefault("jwt.access_token_ttl", 168*time.Hour)
	viper.SetDefault("google_oauth.clock_skew", 60*time.Second)
	viper.SetDefault("azure_openai.api_version", "2024-02-15-preview")
	viper.SetDefault("azure_openai.deployment", "gpt-4o")
	viper.SetDefault("azure_openai.embedding_deployment", "text-embedding-ada-002")
	viper.SetDefault("azure_openai.timeout", 60*time.Second)
	viper.SetDefault("storage.source", "local")
	viper.SetDefault("storage.upload_dir", "uploads")
	viper.SetDefault("storage.public_base_url", "/uploads")
	viper.SetDefault("storage.max_upload_size", 10485760)
	viper.SetDefault("vector_store.enabled", true)
	viper.SetDefault("vector_store.match_threshold", 0.7)
	viper.SetDefault("vector_store.dimensions", 1536)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
	viper.SetDefault("cors.allow_origins", "http://localhost:3000")
	viper.SetDefault("cache_ttls.embedding", "168h")
}

func applyEnvOverrides(config *Config) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		config.Database.DSN = dsn
	}
	if secret := os.Getenv("SECRET_KEY"); secret != "" {
		config.JWT.SecretKey = secret
	}
	if clientID := os.Getenv("GOOGLE_CLIENT_ID"); clientID != "" {
		config.GoogleOAuth.ClientID = clientID
	}
	if endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT"); endpoint != "" {
		config.AzureOpenAI.Endpoint = endpoint
	}
	if apiKey := os.Getenv("AZURE_OPENAI_API_KEY"); apiKey != "" {
		config.AzureOpenAI.APIKey = apiKey
	}
	if deployment := os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"); deployment != "" {
		config.AzureOpenAI.Deployment = deployment
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if uploadDir := os.Getenv("UPLOAD_DIR"); uploadDir != "" {
		config.Storage.UploadDir = uploadDir
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.CORS.AllowOrigins = origins
	}
}

// ParseTTLStringOrDefault parses a duration string, falling back to def on
// empty or malformed input.
func (c *Config) ParseTTLStringOrDefault(ttl string, def time.Duration) time.Duration {
	if ttl == "" {
		return def
	}
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return def
	}
	return d
}
