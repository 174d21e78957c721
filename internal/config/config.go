package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"brigadeportal/internal/domain/holiday"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Addr   string
	DBPath string

	BrigadeID string
	Region    holiday.Region

	DLBBaseURL    string
	DLBAPIToken   string
	WebhookSecret string
	DLBTimeout    time.Duration

	TrainingWeekday  time.Weekday
	TrainingTime     string // HH:MM
	TrainingDuration int    // minutes
	TrainingHorizon  int    // months

	SyncCron string // cron expression; empty disables the scheduler
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
// PRE: none
// POST: Returns a validated Config or an error naming the bad variable
func Load() (Config, error) {
	// Ignore a missing .env file; it is optional in production.
	_ = godotenv.Load()

	cfg := Config{
		Addr:             envOrDefault("BRIGADE_ADDR", ":8080"),
		DBPath:           envOrDefault("BRIGADE_DB_PATH", "brigade.db"),
		BrigadeID:        os.Getenv("BRIGADE_ID"),
		DLBBaseURL:       os.Getenv("DLB_BASE_URL"),
		DLBAPIToken:      os.Getenv("DLB_API_TOKEN"),
		WebhookSecret:    os.Getenv("DLB_WEBHOOK_SECRET"),
		TrainingTime:     envOrDefault("TRAINING_TIME", "19:00"),
		SyncCron:         envOrDefault("SYNC_CRON", "0 3 * * *"),
	}

	if cfg.BrigadeID == "" {
		return Config{}, fmt.Errorf("BRIGADE_ID is required")
	}

	region, err := parseRegion(envOrDefault("BRIGADE_REGION", string(holiday.RegionAuckland)))
	if err != nil {
		return Config{}, err
	}
	cfg.Region = region

	timeoutSeconds, err := envInt("DLB_TIMEOUT_SECONDS", 30)
	if err != nil {
		return Config{}, err
	}
	cfg.DLBTimeout = time.Duration(timeoutSeconds) * time.Second

	weekday, err := parseWeekday(envOrDefault("TRAINING_WEEKDAY", "Monday"))
	if err != nil {
		return Config{}, err
	}
	cfg.TrainingWeekday = weekday

	if _, err := time.Parse("15:04", cfg.TrainingTime); err != nil {
		return Config{}, fmt.Errorf("TRAINING_TIME must be HH:MM, got %q", cfg.TrainingTime)
	}

	cfg.TrainingDuration, err = envInt("TRAINING_DURATION_MINUTES", 120)
	if err != nil {
		return Config{}, err
	}
	if cfg.TrainingDuration <= 0 {
		return Config{}, fmt.Errorf("TRAINING_DURATION_MINUTES must be positive")
	}

	cfg.TrainingHorizon, err = envInt("TRAINING_HORIZON_MONTHS", 3)
	if err != nil {
		return Config{}, err
	}
	if cfg.TrainingHorizon < 1 {
		return Config{}, fmt.Errorf("TRAINING_HORIZON_MONTHS must be at least 1")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func parseRegion(value string) (holiday.Region, error) {
	region := holiday.Region(strings.ToLower(strings.TrimSpace(value)))
	switch region {
	case holiday.RegionAuckland, holiday.RegionWellington, holiday.RegionCanterbury,
		holiday.RegionOtago, holiday.RegionTaranaki:
		return region, nil
	}
	return "", fmt.Errorf("BRIGADE_REGION %q is not a supported region", value)
}

func parseWeekday(value string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("TRAINING_WEEKDAY %q is not a weekday name", value)
}
