package config

import (
	"os"
	"path/filepath"
	"strings"

	"taskdesk/utilities"

	"github.com/joho/godotenv"
)

const xdgAppName = "taskdesk"

// DBConfig guarda as variáveis DB_* usadas pelo backend PostgreSQL.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Config struct {
	StorageDriver      string
	StoragePath        string
	DB                 DBConfig
	ServerHost         string
	ServerPort         string
	CORSAllowedOrigins []string
	AdminEmailMarker   string
	LogLevel           string
}

// Load carrega o .env (se existir) e monta a configuração a partir do ambiente.
func Load() (*Config, error) {
	// .env é opcional: na CLI normalmente não existe
	if err := godotenv.Load(); err != nil {
		utilities.LogDebug("Arquivo .env não carregado, usando apenas o ambiente: %v", err)
	}

	cfg := &Config{
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "file")),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", xdgAppName),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		ServerHost:       getEnv("SERVER_HOST", "127.0.0.1"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		AdminEmailMarker: getEnv("ADMIN_EMAIL_MARKER", "admin"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	cfg.StoragePath = os.Getenv("STORAGE_PATH")
	if cfg.StoragePath == "" {
		path, err := defaultStoragePath(cfg.StorageDriver)
		if err != nil {
			return nil, err
		}
		cfg.StoragePath = path
	}

	return cfg, nil
}

// Addr devolve host:porta para o servidor HTTP.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func defaultStoragePath(driver string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	name := "storage.json"
	if driver == "sqlite" {
		name = "storage.db"
	}
	return filepath.Join(home, ".config", xdgAppName, name), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
