package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is loaded once at startup and treated as immutable afterwards.
// AdminIDs is the bootstrap allow-list: those IDs are admins regardless of
// what the admins table says.
type Config struct {
	BotToken    string
	AdminChatID int64
	ChannelID   int64
	AdminIDs    []int64
	DatabaseURL string
	MongoURI    string
	MongoDB     string
	PublicURL   string
	Port        string
	DevLogin    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "sotvol"),
		PublicURL:   getEnv("PUBLIC_URL", "http://localhost:8080"),
		Port:        getEnv("PORT", "8080"),
		DevLogin:    getEnvBool("DEV_LOGIN", false),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var err error
	if cfg.AdminChatID, err = parseChatID(os.Getenv("ADMIN_CHAT_ID")); err != nil {
		return nil, fmt.Errorf("ADMIN_CHAT_ID: %w", err)
	}
	if cfg.ChannelID, err = parseChatID(os.Getenv("CHANNEL_ID")); err != nil {
		return nil, fmt.Errorf("CHANNEL_ID: %w", err)
	}
	if cfg.AdminChatID == 0 {
		return nil, fmt.Errorf("ADMIN_CHAT_ID is required")
	}
	if cfg.ChannelID == 0 {
		return nil, fmt.Errorf("CHANNEL_ID is required")
	}

	if cfg.AdminIDs, err = parseIDList(os.Getenv("ADMIN_IDS")); err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}

	return cfg, nil
}

// DevBypassActive reports whether the development login bypass may be used.
// It requires both the explicit flag and a loopback public address, so it
// can never be active on a deployed instance.
func (c *Config) DevBypassActive() bool {
	if !c.DevLogin {
		return false
	}
	u, err := url.Parse(c.PublicURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func parseChatID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func parseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
