package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET"`
	RedisURL    string `env:"REDIS_URL"`
	Env         string `env:"APP_ENV" default:"dev"`

	PayHeroBaseURL     string `env:"PAYHERO_BASE_URL" default:"https://api.payhero.co.ke"`
	PayHeroAuthToken   string `env:"PAYHERO_AUTH_TOKEN"`
	PayHeroChannelID   int    `env:"PAYHERO_CHANNEL_ID"`
	PayHeroCallbackURL string `env:"PAYHERO_CALLBACK_URL"`

	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `env:"VAPID_SUBJECT"`

	PollInterval    time.Duration `env:"POLL_INTERVAL_MS" default:"2000"`
	PollTimeout     time.Duration `env:"POLL_TIMEOUT_MS" default:"180000"`
	ProcessingDelay time.Duration `env:"PROCESSING_DELAY_MS" default:"5000"`
}
