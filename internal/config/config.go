package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Session struct {
		HistoryLimit    int    `yaml:"history_limit"`
		MinDuration     string `yaml:"min_duration"`
		MaxDuration     string `yaml:"max_duration"`
		DefaultDuration string `yaml:"default_duration"`
		ChatMaxLength   int    `yaml:"chat_max_length"`
	} `yaml:"session"`
	Transport struct {
		SendBuffer   int     `yaml:"send_buffer"`
		RatePerSec   float64 `yaml:"rate_per_sec"`
		RateBurst    int     `yaml:"rate_burst"`
		MaxFrameSize int64   `yaml:"max_frame_size"`
	} `yaml:"transport"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Load reads YAML config from path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Default returns the values used when the file leaves a field unset.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "4000"
	cfg.Session.HistoryLimit = 50
	cfg.Session.MinDuration = "5s"
	cfg.Session.MaxDuration = "10m"
	cfg.Session.DefaultDuration = "60s"
	cfg.Session.ChatMaxLength = 300
	cfg.Transport.SendBuffer = 64
	cfg.Transport.RatePerSec = 20
	cfg.Transport.RateBurst = 40
	cfg.Transport.MaxFrameSize = 16 << 10
	cfg.Log.Level = "info"
	cfg.Redis.TTL = "12h"
	return cfg
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
