package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env             string
	ServerAddr      string
	FrontendOrigins []string
	Timezone        *time.Location

	// lead storage
	KVBackend   string
	SQLitePath  string
	MongoURI    string
	MongoDB     string
	DynamoTable string

	// sessions and catalog cache
	RedisURL        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTLSeconds int
	SessionTTL      time.Duration

	PricingFile string

	RateLimitSubmit    int
	RateLimitContact   int
	RateLimitLogin     int
	RateLimitWindowSec int

	AdminAPIKey       string
	AdminPassphrase   string
	JWTSecret         string
	AccessTTLMinutes  int
	RefreshTTLMinutes int
	CookieSecure      bool

	ForwardTimeout time.Duration
	CRMWebhookURL  string
	CRMAPIKey      string

	BrevoAPIKey      string
	BrevoSenderEmail string
	BrevoSenderName  string
	BrevoSandbox     bool
	LeadsNotifyEmail string

	TelegramBotToken string
	TelegramChatID   int64

	NATSURL     string
	NATSSubject string
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load reads the environment, after filling unset keys from a .env file in
// the working directory.
func Load() (*Config, error) {
	loadDotEnv(".env")
	loc, err := time.LoadLocation(getEnv("TZ", "Europe/Paris"))
	if err != nil {
		return nil, err
	}

	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017/laura")
	mongoDB := getEnv("MONGO_DB", "")
	if mongoDB == "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "laura"
	}

	var chatID int64
	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		chatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("TELEGRAM_CHAT_ID must be an integer")
		}
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		ServerAddr:      getEnv("SERVER_ADDR", ":8080"),
		FrontendOrigins: splitList(getEnv("FRONTEND_ORIGIN", "http://localhost:5173")),
		Timezone:        loc,

		KVBackend:   getEnv("KV_BACKEND", "sqlite"),
		SQLitePath:  getEnv("SQLITE_PATH", "data/laura.db"),
		MongoURI:    mongoURI,
		MongoDB:     mongoDB,
		DynamoTable: getEnv("DYNAMO_TABLE", "laura-kv"),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 300),
		SessionTTL:      getEnvDuration("SESSION_TTL", 2*time.Hour),

		PricingFile: getEnv("PRICING_FILE", ""),

		RateLimitSubmit:    getEnvInt("RATE_LIMIT_SUBMIT", 5),
		RateLimitContact:   getEnvInt("RATE_LIMIT_CONTACT", 5),
		RateLimitLogin:     getEnvInt("RATE_LIMIT_LOGIN", 10),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),

		AdminAPIKey:       getEnv("ADMIN_API_KEY", ""),
		AdminPassphrase:   getEnv("ADMIN_PASSPHRASE", "yesbaby"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		AccessTTLMinutes:  getEnvInt("ACCESS_TTL_MINUTES", 60),
		RefreshTTLMinutes: getEnvInt("REFRESH_TTL_MINUTES", 10080),
		CookieSecure:      getEnvBool("COOKIE_SECURE", false),

		ForwardTimeout: getEnvDuration("FORWARD_TIMEOUT", 8*time.Second),
		CRMWebhookURL:  getEnv("CRM_WEBHOOK_URL", ""),
		CRMAPIKey:      getEnv("CRM_API_KEY", ""),

		BrevoAPIKey:      getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail: getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:  getEnv("BREVO_SENDER_NAME", "Laura Ménage"),
		BrevoSandbox:     getEnvBool("BREVO_SANDBOX", false),
		LeadsNotifyEmail: getEnv("LEADS_NOTIFY_EMAIL", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   chatID,

		NATSURL:     getEnv("NATS_URL", ""),
		NATSSubject: getEnv("NATS_SUBJECT", "laura.leads.created"),
	}

	return cfg, nil
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
}
