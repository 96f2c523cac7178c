package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

func Load() App {
	cfg := App{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: must("DATABASE_URL"),
		JWTSecret:   getenv("JWT_SECRET", "local_dev_secret"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Env:         getenv("APP_ENV", "dev"),

		PayHeroBaseURL:     getenv("PAYHERO_BASE_URL", "https://api.payhero.co.ke"),
		PayHeroAuthToken:   os.Getenv("PAYHERO_AUTH_TOKEN"),
		PayHeroChannelID:   intenv("PAYHERO_CHANNEL_ID", 3838),
		PayHeroCallbackURL: os.Getenv("PAYHERO_CALLBACK_URL"),

		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		VAPIDSubject:    getenv("VAPID_SUBJECT", "mailto:admin@example.com"),

		PollInterval:    msenv("POLL_INTERVAL_MS", 2000),
		PollTimeout:     msenv("POLL_TIMEOUT_MS", 180000),
		ProcessingDelay: msenv("PROCESSING_DELAY_MS", 5000),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intenv(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("bad int env, using default", "key", k, "value", v)
		return def
	}
	return n
}

func msenv(k string, def int64) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return time.Duration(def) * time.Millisecond
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("bad duration env, using default", "key", k, "value", v)
		return time.Duration(def) * time.Millisecond
	}
	return time.Duration(n) * time.Millisecond
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
