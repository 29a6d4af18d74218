// Package config collects everything the daemon reads from the
// environment. Values come from the process environment, optionally
// seeded from a .env file by the daemon before Load runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type Config struct {
	// Reasoning and speech backends.
	OpenAIKey   string
	OpenAIModel string
	TTSVoice    string

	// Local recognition.
	WhisperModel string
	Language     string

	// Optional plumbing.
	SocksProxy      string
	BusURL          string
	ChimePath       string
	DebugCaptureDir string
	ContactsPath    string

	// Session loop tuning.
	ListenTimeout time.Duration
	PhraseLimit   time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getenv("AXYLO_MODEL", ""),
		TTSVoice:        getenv("AXYLO_TTS_VOICE", "alloy"),
		WhisperModel:    getenv("AXYLO_WHISPER_MODEL", "models/ggml-base.en.bin"),
		Language:        getenv("AXYLO_LANGUAGE", "en"),
		SocksProxy:      os.Getenv("AXYLO_SOCKS_PROXY"),
		BusURL:          os.Getenv("AXYLO_BUS_URL"),
		ChimePath:       os.Getenv("AXYLO_CHIME"),
		DebugCaptureDir: os.Getenv("AXYLO_DEBUG_CAPTURES"),
		ContactsPath:    os.Getenv("AXYLO_CONTACTS"),
		ListenTimeout:   getenvDuration("AXYLO_LISTEN_TIMEOUT", 5*time.Second),
		PhraseLimit:     getenvDuration("AXYLO_PHRASE_LIMIT", 10*time.Second),
	}

	if cfg.OpenAIKey == "" {
		return cfg, fmt.Errorf("config: OPENAI_API_KEY is not set")
	}
	return cfg, nil
}

// Contacts is the on-disk shape of the contact book.
type Contacts struct {
	Emails   map[string]string `json:"emails"`
	WhatsApp map[string]string `json:"whatsapp"`
}

// LoadContacts reads the contact book; a missing path yields an empty
// book, not an error.
func LoadContacts(path string) (Contacts, error) {
	var c Contacts
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("config: read contacts: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("config: parse contacts: %w", err)
	}
	return c, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
