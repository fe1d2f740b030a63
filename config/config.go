package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port       int    `yaml:"port"`
	UploadsDir string `yaml:"uploads_dir"`
	CORSOrigin string `yaml:"cors_origin"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	// DSN overrides the fields above; for sqlite it is the file path.
	DSN      string `yaml:"dsn"`
	LogLevel string `yaml:"log_level"`
}

type RedisConfig struct {
	Addr           string `yaml:"addr"`
	Password       string `yaml:"password"`
	Database       int    `yaml:"database"`
	MenuTTLSeconds int    `yaml:"menu_ttl_seconds"`
}

type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

type RestaurantConfig struct {
	TableCount int `yaml:"table_count"`
}

type OrdersConfig struct {
	StrictTransitions    bool `yaml:"strict_transitions"`
	RejectOccupiedTables bool `yaml:"reject_occupied_tables"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Auth       AuthConfig       `yaml:"auth"`
	Restaurant RestaurantConfig `yaml:"restaurant"`
	Orders     OrdersConfig     `yaml:"orders"`
	Log        LogConfig        `yaml:"log"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:       3001,
			UploadsDir: "./uploads",
			CORSOrigin: "*",
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     "3306",
			Username: "root",
			Database: "restaurant_pos",
			LogLevel: "warn",
		},
		Redis: RedisConfig{
			MenuTTLSeconds: 300,
		},
		RabbitMQ: RabbitMQConfig{
			Exchange: "restaurant_orders",
		},
		Auth: AuthConfig{
			TokenTTLHours: 24,
		},
		Restaurant: RestaurantConfig{
			TableCount: 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads the YAML file, then applies .env and environment overrides.
func LoadConfig(filename string) (Config, error) {
	config := defaultConfig()
	file, err := os.Open(filename)
	if err != nil {
		return config, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("decode %s: %w", filename, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("load .env: %w", err)
	}
	if err := config.applyEnv(); err != nil {
		return config, err
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("DB_DRIVER", &c.Database.Driver)
	setString("DB_HOST", &c.Database.Host)
	setString("DB_PORT", &c.Database.Port)
	setString("DB_USER", &c.Database.Username)
	setString("DB_PASSWORD", &c.Database.Password)
	setString("DB_NAME", &c.Database.Database)
	setString("DB_DSN", &c.Database.DSN)
	setString("REDIS_ADDR", &c.Redis.Addr)
	setString("REDIS_PASSWORD", &c.Redis.Password)
	setString("RABBITMQ_URL", &c.RabbitMQ.URL)
	setString("JWT_SECRET", &c.Auth.JWTSecret)
	setString("LOG_LEVEL", &c.Log.Level)
	if err := setInt("PORT", &c.Server.Port); err != nil {
		return err
	}
	return setInt("TABLE_COUNT", &c.Restaurant.TableCount)
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Restaurant.TableCount < 1 {
		return fmt.Errorf("restaurant.table_count must be at least 1, got %d", c.Restaurant.TableCount)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTLHours < 1 {
		return fmt.Errorf("auth.token_ttl_hours must be at least 1, got %d", c.Auth.TokenTTLHours)
	}
	return nil
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

func (c Config) MenuCacheTTL() time.Duration {
	return time.Duration(c.Redis.MenuTTLSeconds) * time.Second
}
