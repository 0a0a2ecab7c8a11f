package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values.
type Config struct {
	// Primary status API
	RapidAPIKey   string
	RapidAPIHost  string
	StatusURL     string
	StatusTimeout time.Duration

	// Fallback browser
	LookupURL    string
	BrowserWSURL string
	ChromePath   string
	Headless     bool
	ElementWait  time.Duration
	DebugDir     string

	// Ticket parser route markers
	OriginMarkers      []string
	DestinationMarkers []string

	// Optional YAML profile overriding markers, selectors and error phrases
	ProfilePath string

	// Summarizer
	LLMProvider     string
	LLMModel        string
	GroqAPIKey      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	AWSRegion       string

	// Speech
	STTModel       string
	STTBaseURL     string
	STTAPIKey      string
	TTSCredentials string
	TTSVoiceGender string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// HTTP server
	Port int
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		RapidAPIKey:   getEnv("RAPIDAPI_KEY", ""),
		RapidAPIHost:  getEnv("RAPIDAPI_HOST", "irctc-indian-railway-pnr-status.p.rapidapi.com"),
		StatusURL:     getEnv("RAILVOICE_STATUS_URL", "https://irctc-indian-railway-pnr-status.p.rapidapi.com"),
		StatusTimeout: getDuration("RAILVOICE_STATUS_TIMEOUT", 10*time.Second),

		LookupURL:    getEnv("RAILVOICE_LOOKUP_URL", "https://www.confirmtkt.com/pnr-status"),
		BrowserWSURL: getEnv("RAILVOICE_BROWSER_WS_URL", ""),
		ChromePath:   getEnv("RAILVOICE_CHROME_PATH", ""),
		Headless:     getBool("RAILVOICE_HEADLESS", true),
		ElementWait:  getDuration("RAILVOICE_ELEMENT_WAIT", 20*time.Second),
		DebugDir:     getEnv("RAILVOICE_DEBUG_DIR", ""),

		OriginMarkers:      getList("RAILVOICE_ORIGIN_MARKERS"),
		DestinationMarkers: getList("RAILVOICE_DESTINATION_MARKERS"),

		ProfilePath: getEnv("RAILVOICE_PROFILE", ""),

		LLMProvider:     strings.ToLower(getEnv("RAILVOICE_LLM_PROVIDER", "groq")),
		LLMModel:        getEnv("RAILVOICE_LLM_MODEL", ""),
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),

		STTModel:       getEnv("RAILVOICE_STT_MODEL", "whisper-large-v3"),
		STTBaseURL:     getEnv("RAILVOICE_STT_URL", "https://api.groq.com/openai/v1"),
		STTAPIKey:      getEnv("RAILVOICE_STT_API_KEY", getEnv("GROQ_API_KEY", "")),
		TTSCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		TTSVoiceGender: getEnv("RAILVOICE_TTS_VOICE_GENDER", "female"),

		LogFile:  getEnv("RAILVOICE_LOG_FILE", "/tmp/railvoice.log"),
		LogLevel: parseLogLevel(getEnv("RAILVOICE_LOG_LEVEL", "INFO")),

		Port: getInt("RAILVOICE_PORT", 8000),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// getList splits a comma-separated variable, dropping empty items.
func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
