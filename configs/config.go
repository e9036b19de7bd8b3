package config

import (
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicBase string
}

type Meta struct {
	AppID        string
	AppSecret    string
	GraphVersion string
}

type Fal struct {
	Key           string
	FluxModel     string
	FluxEditModel string
}

type Config struct {
	PostgresURI            string
	RedisURI               string
	PolicyURL              string
	GeminiAPIKey           string
	GeminiModel            string
	Fal                    Fal
	Meta                   Meta
	R2                     R2
	SecretKey              string
	EnableInstagramPublish bool
	GenerateLimit          int
	Port                   string
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:  getEnv("POSTGRES_URI", ""),
		RedisURI:     getEnv("REDIS_URI", "127.0.0.1:6379"),
		PolicyURL:    getEnv("POLICY_URL", "http://localhost:8010"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		Fal: Fal{
			Key:           getEnv("FAL_KEY", ""),
			FluxModel:     getEnv("FAL_FLUX_MODEL", "flux/dev"),
			FluxEditModel: getEnv("FAL_FLUX_EDIT_MODEL", "flux-2/edit"),
		},
		Meta: Meta{
			AppID:        getEnv("META_APP_ID", ""),
			AppSecret:    getEnv("META_APP_SECRET", ""),
			GraphVersion: getEnv("META_GRAPH_VERSION", "v21.0"),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicBase: getEnv("R2_PUBLIC_BASE", ""),
		},
		SecretKey:              getEnv("SECRET_KEY", ""),
		EnableInstagramPublish: getEnvBool("ENABLE_INSTAGRAM_PUBLISH", false),
		GenerateLimit:          getEnvInt("GENERATE_LIMIT", 30),
		Port:                   getEnv("PORT", "3000"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
