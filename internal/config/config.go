package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Provider names understood by the router. "auto" lets the router pick a chain.
const (
	ProviderAuto        = "auto"
	ProviderOllama      = "ollama"
	ProviderGemini      = "gemini"
	ProviderOpenRouter  = "openrouter"
	ProviderHuggingFace = "huggingface"
)

var knownProviders = []string{ProviderAuto, ProviderOllama, ProviderGemini, ProviderOpenRouter, ProviderHuggingFace}

// Config holds the application configuration
type Config struct {
	LogLevel   string           `mapstructure:"log_level" yaml:"log_level"`
	Assistant  AssistantConfig  `mapstructure:"assistant" yaml:"assistant"`
	LLM        LLMConfig        `mapstructure:"llm" yaml:"llm"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Memory     MemoryConfig     `mapstructure:"memory" yaml:"memory"`
	Realtime   RealtimeConfig   `mapstructure:"realtime" yaml:"realtime"`
	Automation AutomationConfig `mapstructure:"automation" yaml:"automation"`
	Speech     SpeechConfig     `mapstructure:"speech" yaml:"speech"`
}

// AssistantConfig holds persona defaults
type AssistantConfig struct {
	PersonaName string `mapstructure:"persona_name" yaml:"persona_name"`
}

// LLMConfig holds provider credentials and router settings
type LLMConfig struct {
	Provider         string        `mapstructure:"provider" yaml:"provider"`
	OllamaHost       string        `mapstructure:"ollama_host" yaml:"ollama_host"`
	OllamaModel      string        `mapstructure:"ollama_model" yaml:"ollama_model"`
	GeminiAPIKey     string        `mapstructure:"gemini_api_key" yaml:"gemini_api_key"`
	GeminiBaseURL    string        `mapstructure:"gemini_base_url" yaml:"gemini_base_url"`
	GeminiModel      string        `mapstructure:"gemini_model" yaml:"gemini_model"`
	OpenRouterAPIKey string        `mapstructure:"openrouter_api_key" yaml:"openrouter_api_key"`
	OpenRouterURL    string        `mapstructure:"openrouter_base_url" yaml:"openrouter_base_url"`
	OpenRouterModel  string        `mapstructure:"openrouter_model" yaml:"openrouter_model"`
	HFAPIKey         string        `mapstructure:"hf_api_key" yaml:"hf_api_key"`
	HFBaseURL        string        `mapstructure:"hf_base_url" yaml:"hf_base_url"`
	HFModel          string        `mapstructure:"hf_model" yaml:"hf_model"`
	ProbeURL         string        `mapstructure:"probe_url" yaml:"probe_url"`
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	CallTimeout      time.Duration `mapstructure:"call_timeout" yaml:"call_timeout"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host                string `mapstructure:"host" yaml:"host"`
	Port                string `mapstructure:"port" yaml:"port"`
	WebDir              string `mapstructure:"web_dir" yaml:"web_dir"`
	ActionRatePerMinute int    `mapstructure:"action_rate_per_minute" yaml:"action_rate_per_minute"`
}

// MemoryConfig holds where conversation memory lives
type MemoryConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir"`
	ReadLimit int    `mapstructure:"read_limit" yaml:"read_limit"`
}

// RealtimeConfig holds the weather and search upstreams
type RealtimeConfig struct {
	WeatherURL string        `mapstructure:"weather_url" yaml:"weather_url"`
	SearchURL  string        `mapstructure:"search_url" yaml:"search_url"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// AutomationConfig gates OS actions
type AutomationConfig struct {
	Enabled     bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedApps []string `mapstructure:"allowed_apps" yaml:"allowed_apps"`
}

// SpeechConfig holds voice capture and synthesis settings
type SpeechConfig struct {
	WhisperModel  string `mapstructure:"whisper_model" yaml:"whisper_model"`
	PiperVoice    string `mapstructure:"piper_voice" yaml:"piper_voice"`
	RecordSeconds int    `mapstructure:"record_seconds" yaml:"record_seconds"`
	SampleRate    int    `mapstructure:"sample_rate" yaml:"sample_rate"`
	AutoSpeak     Switch `mapstructure:"auto_speak" yaml:"auto_speak"`
}

// Switch is an on-by-default toggle. Given as text (environment or a quoted
// YAML value) it is off only for "0"; "yes", "on" and "false" all mean on.
type Switch bool

var switchType = reflect.TypeOf(Switch(false))

func switchHook(from, to reflect.Type, data any) (any, error) {
	if to != switchType || from.Kind() != reflect.String {
		return data, nil
	}
	return Switch(strings.TrimSpace(data.(string)) != "0"), nil
}

// envBindings keeps the variable names the assistant has always used.
var envBindings = map[string]string{
	"log_level":              "JARVIS_LOG_LEVEL",
	"llm.provider":           "LLM_PROVIDER",
	"llm.ollama_host":        "OLLAMA_HOST",
	"llm.gemini_api_key":     "GEMINI_API_KEY",
	"llm.openrouter_api_key": "OPENROUTER_API_KEY",
	"llm.openrouter_model":   "OPENROUTER_MODEL",
	"llm.hf_api_key":         "HF_API_KEY",
	"llm.hf_model":           "HF_MODEL",
	"server.host":            "JARVIS_HOST",
	"server.port":            "JARVIS_PORT",
	"server.web_dir":         "JARVIS_WEB_DIR",
	"memory.dir":             "JARVIS_MEMORY_DIR",
	"automation.enabled":     "ENABLE_AUTOMATION",
	"speech.whisper_model":   "WHISPER_MODEL",
	"speech.piper_voice":     "PIPER_VOICE",
	"speech.record_seconds":  "VOICE_RECORD_SECONDS",
	"speech.sample_rate":     "VOICE_SAMPLE_RATE",
	"speech.auto_speak":      "AUTO_SPEAK",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("assistant.persona_name", "Divya")

	v.SetDefault("llm.provider", ProviderAuto)
	v.SetDefault("llm.ollama_host", "http://localhost:11434")
	v.SetDefault("llm.ollama_model", "llama3.1")
	v.SetDefault("llm.gemini_base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.gemini_model", "gemini-1.5-flash")
	v.SetDefault("llm.openrouter_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.openrouter_model", "openai/gpt-4o-mini")
	v.SetDefault("llm.hf_base_url", "https://api-inference.huggingface.co/models")
	v.SetDefault("llm.hf_model", "google/flan-t5-large")
	v.SetDefault("llm.probe_url", "https://api.duckduckgo.com/?q=ping&format=json")
	v.SetDefault("llm.probe_timeout", 3*time.Second)
	v.SetDefault("llm.call_timeout", 20*time.Second)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.action_rate_per_minute", 30)

	v.SetDefault("memory.dir", "jarvis_memory")
	v.SetDefault("memory.read_limit", 50)

	v.SetDefault("realtime.weather_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("realtime.search_url", "https://api.duckduckgo.com/")
	v.SetDefault("realtime.timeout", 10*time.Second)

	v.SetDefault("automation.enabled", false)

	v.SetDefault("speech.whisper_model", "base")
	v.SetDefault("speech.piper_voice", "en_US-amy-low")
	v.SetDefault("speech.record_seconds", 5)
	v.SetDefault("speech.sample_rate", 16000)
	v.SetDefault("speech.auto_speak", true)
}

// Load reads configuration from defaults, an optional YAML file and the
// environment. path wins over CONFIG_PATH, which wins over ./config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		switchHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the router cannot act on.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderAuto
	}
	if !slices.Contains(knownProviders, c.LLM.Provider) {
		return fmt.Errorf("unknown llm provider %q (want one of %v)", c.LLM.Provider, knownProviders)
	}
	return nil
}

// Redacted returns a copy with credentials masked, suitable for printing.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.LLM.GeminiAPIKey = mask(c.LLM.GeminiAPIKey)
	c.LLM.OpenRouterAPIKey = mask(c.LLM.OpenRouterAPIKey)
	c.LLM.HFAPIKey = mask(c.LLM.HFAPIKey)
	c.Automation.AllowedApps = slices.Clone(c.Automation.AllowedApps)
	return c
}

// Addr is the listen address of the served variant.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}
