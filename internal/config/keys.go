package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "AIz...abc"
}

// CheckAPIKeys returns the status of the optional API keys.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("Gemini API Key", cfg.LLM.GeminiKey, "NEUROQUANT_LLM_GEMINI_KEY", "GEMINI_API_KEY"),
		checkKey("Hugging Face Token", cfg.Sentiment.HFToken, "NEUROQUANT_SENTIMENT_HF_TOKEN", "HF_TOKEN"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:   name,
		IsSet:  value != "",
		Source: KeySourceNone,
	}
	if value == "" {
		return status
	}

	status.Source = KeySourceConfig
	for _, e := range envVars {
		if os.Getenv(e) != "" {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = maskKey(value)
	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}

// Redacted returns a copy of cfg with secrets masked, safe to print or serve.
func Redacted(cfg *Config) Config {
	out := *cfg
	if out.LLM.GeminiKey != "" {
		out.LLM.GeminiKey = maskKey(out.LLM.GeminiKey)
	}
	if out.Sentiment.HFToken != "" {
		out.Sentiment.HFToken = maskKey(out.Sentiment.HFToken)
	}
	out.API.CORSOrigins = append([]string(nil), cfg.API.CORSOrigins...)
	out.Watch.Tickers = append([]string(nil), cfg.Watch.Tickers...)
	return out
}
