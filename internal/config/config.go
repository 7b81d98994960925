package config

import (
	"os"
	"strconv"
	"time"
)

// Config collects every knob the scoring daemon reads from the
// environment. Load never fails; missing optional values fall back to
// defaults and missing credentials disable the relevant component at
// runtime (the judge, story analyzer and notifier all degrade to no-ops).
type Config struct {
	// HTTP admin surface
	Port       string
	CronSecret string // if set, /run requires "Bearer <secret>"

	// Persistence
	DatabaseURL string

	// OFAPI chat source
	OFAPIBaseURL string
	OFAPITimeout time.Duration

	// AI judge (OpenAI-style chat completions gateway)
	JudgeURL    string
	JudgeAPIKey string
	JudgeModel  string

	// Story analyzer (second gateway, larger-context model)
	StoryURL    string
	StoryAPIKey string
	StoryModel  string

	// Notifier
	TelegramBotToken string

	// Scheduling
	Timezone       string        // IANA name for hour alignment
	TickInterval   time.Duration // how often the driver wakes up
	MaxPairsPerRun int           // windows scored per wake-up
	MaxChats       int           // conversations scanned per window
	RunBudget      time.Duration // soft time guard per wake-up
}

func Load() Config {
	return Config{
		Port:       envOr("PORT", "8080"),
		CronSecret: os.Getenv("CRON_SECRET"),

		DatabaseURL: envOr("DATABASE_URL", "postgres://localhost:5432/chatter_insights"),

		OFAPIBaseURL: envOr("OFAPI_BASE_URL", "https://app.onlyfansapi.com"),
		OFAPITimeout: envDurationOr("OFAPI_TIMEOUT", 5*time.Second),

		JudgeURL:    envOr("JUDGE_GATEWAY_URL", "https://api.openai.com/v1/chat/completions"),
		JudgeAPIKey: os.Getenv("JUDGE_API_KEY"),
		JudgeModel:  envOr("JUDGE_MODEL", "gpt-4o-mini"),

		StoryURL:    envOr("STORY_GATEWAY_URL", "https://api.moonshot.ai/v1/chat/completions"),
		StoryAPIKey: os.Getenv("STORY_API_KEY"),
		StoryModel:  envOr("STORY_MODEL", "kimi-k2.5"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		Timezone:       envOr("SCORING_TIMEZONE", "Europe/London"),
		TickInterval:   envDurationOr("TICK_INTERVAL", 30*time.Minute),
		MaxPairsPerRun: envIntOr("MAX_PAIRS_PER_RUN", 3),
		MaxChats:       envIntOr("MAX_CHATS_PER_WINDOW", 5),
		RunBudget:      envDurationOr("RUN_BUDGET", 50*time.Second),
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envIntOr(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envDurationOr(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
