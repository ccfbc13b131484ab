package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultTopic       = "direct deposit, early pay, or getting paid"
	defaultTemperature = 0.2
	defaultCapacity    = 1000
	defaultPort        = "8080"
	defaultLogLevel    = "info"
)

// Config holds all configuration for the application
type Config struct {
	// Slack configuration
	SlackBotToken      string // Required: Slack bot user OAuth token
	SlackSigningSecret string // Required: signing secret used to verify webhook requests

	// Azure OpenAI configuration
	AzureOpenAIKey        string // Required: Azure OpenAI API key
	AzureOpenAIEndpoint   string // Required: Azure OpenAI endpoint URL
	AzureOpenAIDeployment string // Required: Azure OpenAI model deployment name

	// Classification
	Topic         string   // subject the classifier looks for
	Temperature   float32  // sampling temperature for the classifier
	AlertChannels []string // channel names the model may post to

	// Event intake
	WatchChannels []string // channel names of interest; empty means every channel
	DedupCapacity int

	// Outbound Slack calls
	SlackMaxRetries int           // retries for transient failures; 0 means a single attempt
	ChannelCacheTTL time.Duration // 0 disables the channel name cache

	// Optional S3 object overriding the classifier instruction
	PromptBucket string
	PromptKey    string

	Port     string
	LogLevel string
}

// LoadEnvFile loads a local .env file into the process environment when one exists.
// Values already set in the environment win.
func LoadEnvFile(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// Load creates a new Config instance from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Load required values
	requiredVars := map[string]*string{
		"SLACK_BOT_TOKEN":      &cfg.SlackBotToken,
		"SLACK_SIGNING_SECRET": &cfg.SlackSigningSecret,

		"AZURE_OPENAI_KEY":        &cfg.AzureOpenAIKey,
		"AZURE_OPENAI_ENDPOINT":   &cfg.AzureOpenAIEndpoint,
		"AZURE_OPENAI_DEPLOYMENT": &cfg.AzureOpenAIDeployment,
	}

	var missingVars []string
	for env, ptr := range requiredVars {
		*ptr = os.Getenv(env)
		if *ptr == "" {
			missingVars = append(missingVars, env)
		}
	}

	if len(missingVars) > 0 {
		sort.Strings(missingVars)
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	var err error
	cfg.Topic = getEnv("CLASSIFIER_TOPIC", defaultTopic)
	cfg.AlertChannels = splitList(os.Getenv("ALERT_CHANNELS"))
	cfg.WatchChannels = splitList(os.Getenv("WATCH_CHANNELS"))
	cfg.PromptBucket = os.Getenv("PROMPT_BUCKET")
	cfg.PromptKey = os.Getenv("PROMPT_KEY")
	cfg.Port = getEnv("PORT", defaultPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", defaultLogLevel)

	temperature, err := strconv.ParseFloat(getEnv("CLASSIFIER_TEMPERATURE", strconv.FormatFloat(defaultTemperature, 'f', -1, 64)), 32)
	if err != nil {
		return nil, fmt.Errorf("invalid CLASSIFIER_TEMPERATURE: %w", err)
	}
	cfg.Temperature = float32(temperature)

	if cfg.DedupCapacity, err = getEnvInt("DEDUP_CAPACITY", defaultCapacity); err != nil {
		return nil, err
	}
	if cfg.DedupCapacity <= 0 {
		return nil, fmt.Errorf("invalid DEDUP_CAPACITY: must be positive")
	}
	if cfg.SlackMaxRetries, err = getEnvInt("SLACK_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.SlackMaxRetries < 0 {
		return nil, fmt.Errorf("invalid SLACK_MAX_RETRIES: must not be negative")
	}

	if ttl := os.Getenv("CHANNEL_CACHE_TTL"); ttl != "" {
		if cfg.ChannelCacheTTL, err = time.ParseDuration(ttl); err != nil {
			return nil, fmt.Errorf("invalid CHANNEL_CACHE_TTL: %w", err)
		}
	}

	if (cfg.PromptBucket == "") != (cfg.PromptKey == "") {
		return nil, fmt.Errorf("PROMPT_BUCKET and PROMPT_KEY must be set together")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// splitList parses a comma separated list, dropping blanks and a leading '#'
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimPrefix(strings.TrimSpace(item), "#")
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
