package config

import "os"

type Config struct {
	ScriptPath    string
	ScenesPath    string
	AudioPath     string
	OutputVideo   string
	TotalDuration float64
	Width         int
	Height        int
	FPS           int
	Workers       int
	MaxCaptionLen int
	Preset        string
	VideoEncoder  string
	Quality       int
	StylePath     string
	ServeAddr     string
	ShowStats     bool
	BuildVersion  string

	// FallbackDuration подставляется вызывающей стороной, когда длительность
	// озвучки недоступна (таймлайн сам её никогда не выбирает).
	FallbackDuration float64
}

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
