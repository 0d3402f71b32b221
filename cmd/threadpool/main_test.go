package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"threadpool/internal/config"
	"threadpool/internal/logger"
)

func TestBuildSettingsDefaults(t *testing.T) {
	settings, err := buildSettings("", noOverrides())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings != config.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", settings)
	}
}

func TestBuildSettingsFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threadpool.yaml")
	content := `
pool:
  size: 3
demo:
  jobs: 5
  job_duration: 5ms
log:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	o := noOverrides()
	o.size = 6
	o.jobDuration = 0
	o.producers = 2
	o.logLevel = "debug"
	o.addr = ":9999"

	settings, err := buildSettings(path, o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.PoolSize != 6 {
		t.Errorf("expected size flag to win, got %d", settings.PoolSize)
	}
	if settings.DemoJobs != 5 {
		t.Errorf("expected jobs from file, got %d", settings.DemoJobs)
	}
	if settings.JobDuration != 0 {
		t.Errorf("expected explicit zero duration, got %v", settings.JobDuration)
	}
	if settings.LogLevel != logger.LevelDebug {
		t.Errorf("expected DEBUG, got %s", settings.LogLevel)
	}
	if settings.Producers != 2 {
		t.Errorf("expected 2 producers, got %d", settings.Producers)
	}
	if settings.PanicRatio != 0 {
		t.Errorf("expected default panic ratio, got %f", settings.PanicRatio)
	}
	if settings.ServerAddr != ":9999" {
		t.Errorf("expected :9999, got %s", settings.ServerAddr)
	}
}

func TestBuildSettingsErrors(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		modify func(*flagOverrides)
	}{
		{"missing file", "/nonexistent/threadpool.yaml", func(*flagOverrides) {}},
		{"negative size", "", func(o *flagOverrides) { o.size = -1 }},
		{"negative jobs", "", func(o *flagOverrides) { o.jobs = -2 }},
		{"negative producers", "", func(o *flagOverrides) { o.producers = -1 }},
		{"panic ratio above one", "", func(o *flagOverrides) { o.panicRatio = 2 }},
		{"bad level", "", func(o *flagOverrides) { o.logLevel = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := noOverrides()
			tt.modify(&o)
			if _, err := buildSettings(tt.file, o); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunDemo(t *testing.T) {
	settings := config.DefaultSettings()
	settings.PoolSize = 4
	settings.DemoJobs = 8
	settings.JobDuration = time.Millisecond

	settings.Producers = 2

	snap := runDemo(context.Background(), settings)

	if snap.SubmittedJobs != 8 || snap.CompletedJobs != 8 {
		t.Errorf("expected 8 submitted and completed jobs, got %+v", snap)
	}
	if snap.Pending != 0 {
		t.Errorf("expected nothing pending, got %d", snap.Pending)
	}
}

func TestRunDemoWithInjectedPanics(t *testing.T) {
	settings := config.DefaultSettings()
	settings.PoolSize = 2
	settings.DemoJobs = 2
	settings.JobDuration = 0
	settings.PanicRatio = 1

	snap := runDemo(context.Background(), settings)

	if snap.PanickedJobs != 2 {
		t.Errorf("expected 2 panicked jobs, got %d", snap.PanickedJobs)
	}
	if snap.CompletedJobs != 0 {
		t.Errorf("expected 0 completed jobs, got %d", snap.CompletedJobs)
	}
}
