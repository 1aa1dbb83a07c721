package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/vault-client-go"
	"github.com/spf13/viper"
	_ "github.com/spf13/viper/remote"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	configHolder atomic.Value
	backend      = "consul"
	backendAddr  = "127.0.0.1:8500"
	backendPath  = "development" // e.g., app/<env>/<service_name>
	configType   = "yaml"
)

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	TLS        struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Otel struct {
		Addr     string `mapstructure:"ADDR"`
		Protocol string `mapstructure:"PROTOCOL"` // http | grpc
	} `mapstructure:"OTEL"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Type           string `mapstructure:"TYPE"` // postgres | mysql | sqlite
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`
		AutoMigrate    bool   `mapstructure:"AUTO_MIGRATE"`
		Metrics        bool   `mapstructure:"METRICS"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Consul struct {
		Addr      string `mapstructure:"ADDR"`
		ServiceID string `mapstructure:"SERVICE_ID"`
		Host      string `mapstructure:"HOST"`
	} `mapstructure:"CONSUL"`
	Snowflake struct {
		Node int64 `mapstructure:"NODE"`
	} `mapstructure:"SNOWFLAKE"`
	Webhook struct {
		BodyLimit int64 `mapstructure:"BODY_LIMIT"`
	} `mapstructure:"WEBHOOK"`
	PagSeguro struct {
		Email string `mapstructure:"EMAIL"`
		Token string `mapstructure:"TOKEN"`
		Env   string `mapstructure:"ENV"` // sandbox | production
	} `mapstructure:"PAGSEGURO"`
	Pagarme struct {
		APIKey  string `mapstructure:"API_KEY"`
		BaseURL string `mapstructure:"BASE_URL"`
	} `mapstructure:"PAGARME"`
	Membership struct {
		MappingCacheTTL time.Duration `mapstructure:"MAPPING_CACHE_TTL"`
	} `mapstructure:"MEMBERSHIP"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))
var RemoteModule = fx.Module("remote.config", fx.Provide(LoadRemote))

type Params struct {
	fx.In
	Vault *vault.Client `optional:"true"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "vendas-billing")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_SERVER.ADDR", "8080")
	v.SetDefault("HTTP_SERVER.READ_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_SERVER.WRITE_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_SERVER.IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("DATABASE.TYPE", "postgres")
	v.SetDefault("DATABASE.SSLMODE", "disable")
	v.SetDefault("DATABASE.TIMEZONE", "UTC")
	v.SetDefault("REDIS.ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS.POOL_SIZE", 10)
	v.SetDefault("REDIS.POOL_TIMEOUT", 4*time.Second)
	v.SetDefault("SNOWFLAKE.NODE", 1)
	v.SetDefault("WEBHOOK.BODY_LIMIT", 1<<20)
	v.SetDefault("PAGSEGURO.ENV", "sandbox")
	v.SetDefault("PAGARME.BASE_URL", "https://api.pagar.me/core/v5")
	v.SetDefault("MEMBERSHIP.MAPPING_CACHE_TTL", 30*time.Second)
}

// Load reads config.yaml from dir (when present) and overlays environment
// variables, e.g. DATABASE_HOST overrides DATABASE.HOST.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func LoadConfig(p Params) *Config {
	cfg, err := Load(".")
	if err != nil {
		zap.L().Error("failed to load config", zap.Error(err))
		os.Exit(1)
	}

	if p.Vault != nil {
		if err := applyVaultSecrets(context.Background(), p.Vault, cfg); err != nil {
			zap.L().Error("failed get secret from vault", zap.Error(err))
			os.Exit(1)
		}
	}

	configHolder.Store(cfg)
	return cfg
}

func LoadRemote(p Params) *Config {
	if v, ok := os.LookupEnv("REMOTE_CONFIG_PROVIDER"); ok {
		backend = v
	}

	if v, ok := os.LookupEnv("REMOTE_CONFIG_ADDR"); ok {
		backendAddr = v
	}

	if v, ok := os.LookupEnv("REMOTE_CONFIG_PATH"); ok {
		backendPath = v
	}

	remote := viper.New()
	setDefaults(remote)
	remote.SetConfigType(configType)
	if err := remote.AddRemoteProvider(backend, backendAddr, backendPath); err != nil {
		zap.L().Error("failed to add remote config provider", zap.Error(err))
		os.Exit(1)
	}

	if err := remote.ReadRemoteConfig(); err != nil {
		zap.L().Error("failed to read remote config", zap.Error(err))
		os.Exit(1)
	}

	var cfg Config
	if err := remote.Unmarshal(&cfg); err != nil {
		os.Exit(1)
	}

	if p.Vault != nil {
		if err := applyVaultSecrets(context.Background(), p.Vault, &cfg); err != nil {
			zap.L().Error("failed get secret from vault", zap.Error(err))
			os.Exit(1)
		}
	}
	configHolder.Store(&cfg)

	go func() {
		for {
			time.Sleep(time.Second * 5)

			if err := remote.WatchRemoteConfig(); err != nil {
				zap.L().Error("unable to read remote config", zap.Error(err))
				continue
			}

			var newcfg Config
			if err := remote.Unmarshal(&newcfg); err != nil {
				continue
			}
			configHolder.Store(&newcfg)
		}
	}()

	return &cfg
}

// Current returns the most recently loaded config, including remote reloads.
func Current() *Config {
	cfg, _ := configHolder.Load().(*Config)
	return cfg
}

func applyVaultSecrets(ctx context.Context, client *vault.Client, cfg *Config) error {
	zap.L().Info("Starting Get Secrets", zap.String("path", cfg.AppEnv))
	secret, err := client.Secrets.KvV2Read(ctx, cfg.AppEnv, vault.WithMountPath("secret"))
	if err != nil {
		return err
	}
	zap.L().Info("Success Get Secret")

	get := func(key, fallback string) string {
		if val, ok := secret.Data.Data[key].(string); ok && val != "" {
			return val
		}
		return fallback
	}

	cfg.Database.User = get("postgres_user", cfg.Database.User)
	cfg.Database.Password = get("postgres_password", cfg.Database.Password)
	cfg.Redis.Password = get("redis_password", cfg.Redis.Password)
	cfg.PagSeguro.Token = get("pagseguro_token", cfg.PagSeguro.Token)
	cfg.Pagarme.APIKey = get("pagarme_api_key", cfg.Pagarme.APIKey)
	return nil
}

// bindEnv registers every nested key so AutomaticEnv can resolve them during
// Unmarshal even when config.yaml is absent.
func bindEnv(v *viper.Viper) {
	keys := []string{
		"APP_ENV", "APP_NAME", "APP_VERSION", "LOG_LEVEL",
		"TLS.ENABLE", "TLS.CERT_PATH", "TLS.KEY_PATH",
		"OTEL.ADDR", "OTEL.PROTOCOL", "PYROSCOPE.ADDR",
		"HTTP_SERVER.ADDR", "HTTP_SERVER.READ_TIMEOUT", "HTTP_SERVER.WRITE_TIMEOUT", "HTTP_SERVER.IDLE_TIMEOUT",
		"DATABASE.TYPE", "DATABASE.HOST", "DATABASE.PORT", "DATABASE.DBNAME", "DATABASE.USER",
		"DATABASE.PASSWORD", "DATABASE.SSLMODE", "DATABASE.TIMEZONE", "DATABASE.AUTO_MIGRATE", "DATABASE.METRICS",
		"DATABASE.CONNECTION_POOL.MAX_IDLE_CONN", "DATABASE.CONNECTION_POOL.MAX_OPEN_CONNS",
		"DATABASE.CONNECTION_POOL.CONN_MAX_LIFETIME", "DATABASE.CONNECTION_POOL.CONN_MAX_IDLE_TIME",
		"REDIS.ADDR", "REDIS.PASSWORD", "REDIS.DB", "REDIS.POOL_SIZE", "REDIS.POOL_TIMEOUT",
		"CONSUL.ADDR", "CONSUL.SERVICE_ID", "CONSUL.HOST",
		"SNOWFLAKE.NODE", "WEBHOOK.BODY_LIMIT",
		"PAGSEGURO.EMAIL", "PAGSEGURO.TOKEN", "PAGSEGURO.ENV",
		"PAGARME.API_KEY", "PAGARME.BASE_URL",
		"MEMBERSHIP.MAPPING_CACHE_TTL",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
