package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds everything the app needs to start. It's read from a
// .config.json file next to the binary, or falls back to the dev
// defaults when no file is present.
type Config struct {
	Port            int            `json:"port"`
	Env             string         `json:"env"`
	Pepper          string         `json:"pepper"`
	HMACKey         string         `json:"hmac_key"`
	CSRFKey         string         `json:"csrf_key"`
	CacheTTLSeconds int            `json:"cache_ttl_seconds"`
	Database        PostgresConfig `json:"database"`
}

// IsProd reports whether the app runs in its production environment.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

func DefaultConfig() Config {
	return Config{
		Port:            1111,
		Env:             "dev",
		Pepper:          "secret-random-string",
		HMACKey:         "secret-hmac-key",
		CSRFKey:         "32-byte-long-auth-key-for-csrf-1",
		CacheTTLSeconds: 20,
		Database:        DefaultPostgresConfig(),
	}
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "",
		Name:     "wtf_blog",
	}
}

// LoadConfig loads the configuration from .config.json. In production
// the file is required, in development missing config falls back to
// the defaults.
func LoadConfig(reqConfigFile bool) Config {
	f, err := os.Open(".config.json")
	if err != nil {
		if reqConfigFile {
			panic("production requires a .config.json file")
		}
		fmt.Println("Using the default config...")
		return DefaultConfig()
	}
	defer f.Close()
	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		panic(err)
	}
	fmt.Println("Successfully loaded .config.json")
	return c
}
