package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env  string
	Host string
	Port string

	DiscordToken string
	GuildID      string
	CategoryID   string
	AdminRoleID  string

	CodeTTL time.Duration
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnv("PORT", "8080"),

		DiscordToken: getEnv("DISCORD_TOKEN", ""),
		GuildID:      getEnv("DISCORD_GUILD_ID", ""),
		CategoryID:   getEnv("DISCORD_CATEGORY_ID", ""),
		AdminRoleID:  getEnv("DISCORD_ADMIN_ROLE_ID", ""),

		CodeTTL: time.Duration(getEnvInt("CODE_TTL_SECONDS", 300)) * time.Second,
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
