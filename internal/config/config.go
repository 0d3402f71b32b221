package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"threadpool/internal/logger"

	"gopkg.in/yaml.v3"
)

// FileConfig は設定ファイルの構造
type FileConfig struct {
	Pool   PoolConfig   `yaml:"pool" json:"pool"`
	Log    LogConfig    `yaml:"log" json:"log"`
	Server ServerConfig `yaml:"server" json:"server"`
	Demo   DemoConfig   `yaml:"demo" json:"demo"`
}

// PoolConfig はプール設定
type PoolConfig struct {
	Size              int `yaml:"size" json:"size"` // 0 で CPU 数
	MaxLatencySamples int `yaml:"max_latency_samples" json:"max_latency_samples"`
}

// LogConfig はログ設定
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// ServerConfig は API サーバー設定
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// DemoConfig はデモ実行の設定
type DemoConfig struct {
	Jobs        int     `yaml:"jobs" json:"jobs"`
	JobDuration string  `yaml:"job_duration" json:"job_duration"`
	Producers   int     `yaml:"producers" json:"producers"`
	PanicRatio  float64 `yaml:"panic_ratio" json:"panic_ratio"`
}

// Settings は解決済みの設定値
type Settings struct {
	PoolSize          int
	MaxLatencySamples int
	LogLevel          logger.Level
	ServerAddr        string
	DemoJobs          int
	JobDuration       time.Duration
	Producers         int
	PanicRatio        float64
}

// DefaultSettings はデフォルト設定を返す
func DefaultSettings() Settings {
	return Settings{
		PoolSize:          runtime.NumCPU(),
		MaxLatencySamples: 1000,
		LogLevel:          logger.LevelInfo,
		ServerAddr:        ":8080",
		DemoJobs:          8,
		JobDuration:       10 * time.Millisecond,
		Producers:         1,
		PanicRatio:        0,
	}
}

// LoadFile は設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// ToSettings は FileConfig を Settings に変換する
func (f *FileConfig) ToSettings() (Settings, error) {
	settings := DefaultSettings()

	if f.Pool.Size > 0 {
		settings.PoolSize = f.Pool.Size
	}
	if f.Pool.MaxLatencySamples > 0 {
		settings.MaxLatencySamples = f.Pool.MaxLatencySamples
	}

	if f.Log.Level != "" {
		level, err := logger.ParseLevel(f.Log.Level)
		if err != nil {
			return settings, fmt.Errorf("invalid log level: %w", err)
		}
		settings.LogLevel = level
	}

	if f.Server.Addr != "" {
		settings.ServerAddr = f.Server.Addr
	}

	if f.Demo.Jobs > 0 {
		settings.DemoJobs = f.Demo.Jobs
	}
	if f.Demo.JobDuration != "" {
		d, err := time.ParseDuration(f.Demo.JobDuration)
		if err != nil {
			return settings, fmt.Errorf("invalid job duration: %w", err)
		}
		settings.JobDuration = d
	}
	if f.Demo.Producers > 0 {
		settings.Producers = f.Demo.Producers
	}
	if f.Demo.PanicRatio > 0 {
		settings.PanicRatio = f.Demo.PanicRatio
	}

	return settings, nil
}

// Validate は設定を検証する
func (f *FileConfig) Validate() error {
	if f.Pool.Size < 0 {
		return fmt.Errorf("pool.size must be non-negative")
	}

	if f.Pool.MaxLatencySamples < 0 {
		return fmt.Errorf("pool.max_latency_samples must be non-negative")
	}

	if f.Log.Level != "" {
		if _, err := logger.ParseLevel(f.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}

	if f.Demo.Jobs < 0 {
		return fmt.Errorf("demo.jobs must be non-negative")
	}

	if f.Demo.Producers < 0 {
		return fmt.Errorf("demo.producers must be non-negative")
	}

	if f.Demo.PanicRatio < 0 || f.Demo.PanicRatio > 1 {
		return fmt.Errorf("demo.panic_ratio must be between 0 and 1")
	}

	if f.Demo.JobDuration != "" {
		d, err := time.ParseDuration(f.Demo.JobDuration)
		if err != nil {
			return fmt.Errorf("demo.job_duration: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("demo.job_duration must be non-negative")
		}
	}

	return nil
}
