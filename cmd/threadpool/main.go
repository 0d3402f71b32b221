// Package main is the entry point for the threadpool demo.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"threadpool/internal/api"
	"threadpool/internal/config"
	"threadpool/internal/events"
	"threadpool/internal/load"
	"threadpool/internal/logger"
	"threadpool/internal/metrics"
	"threadpool/internal/worker"
)

var (
	version = "dev"
)

func main() {
	// フラグ定義
	var (
		configFile  = flag.String("config", "", "設定ファイルパス (YAML/JSON)")
		size        = flag.Int("size", 0, "ワーカー数 (0 で設定ファイルまたは CPU 数)")
		jobs        = flag.Int("jobs", 0, "デモで投入するジョブ数")
		jobDuration = flag.Duration("job-duration", -1, "デモジョブ1件の実行時間 (例: 10ms)")
		producers   = flag.Int("producers", 0, "デモでジョブを投入するゴルーチン数")
		panicRatio  = flag.Float64("panic-ratio", -1, "パニックさせるジョブの比率 (0.0〜1.0)")
		logLevel    = flag.String("log-level", "", "ログレベル (debug, info, warn, error)")
		showVersion = flag.Bool("version", false, "バージョンを表示")
		serverMode  = flag.Bool("server", false, "API サーバーモードで起動")
		serverAddr  = flag.String("addr", "", "サーバーアドレス (例: :8080, 0.0.0.0:3000)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `threadpool - Fixed-size worker pool demo

Usage:
  threadpool [options]

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # 4 ワーカーで 8 ジョブを実行
  threadpool --size 4 --jobs 8

  # 設定ファイルから実行
  threadpool --config threadpool.yaml

  # ワーカーのライフサイクルをすべて表示
  threadpool --size 2 --jobs 4 --log-level debug

  # 4 ゴルーチンから投入し、1 割のジョブをパニックさせる
  threadpool --size 8 --jobs 1000 --producers 4 --panic-ratio 0.1

  # API サーバーモードで起動
  threadpool --server --addr :3000
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("threadpool version %s\n", version)
		return
	}

	settings, err := buildSettings(*configFile, flagOverrides{
		size:        *size,
		jobs:        *jobs,
		jobDuration: *jobDuration,
		producers:   *producers,
		panicRatio:  *panicRatio,
		logLevel:    *logLevel,
		addr:        *serverAddr,
	})
	if err != nil {
		logger.Error("", "設定エラー: %v", err)
		os.Exit(1)
	}
	logger.Default.SetLevel(settings.LogLevel)

	if *serverMode {
		if err := runServer(settings); err != nil {
			logger.Error("", "サーバーエラー: %v", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report := runDemo(ctx, settings)
	fmt.Println(report.Report())
}

// flagOverrides はコマンドラインで指定された上書き値
// 負の jobDuration / panicRatio は未指定を表す
type flagOverrides struct {
	size        int
	jobs        int
	jobDuration time.Duration
	producers   int
	panicRatio  float64
	logLevel    string
	addr        string
}

func noOverrides() flagOverrides {
	return flagOverrides{jobDuration: -1, panicRatio: -1}
}

// buildSettings は設定ファイルとフラグから設定を構築する
func buildSettings(configFile string, o flagOverrides) (config.Settings, error) {
	settings := config.DefaultSettings()

	// 1. 設定ファイルから読み込み
	if configFile != "" {
		fileConfig, err := config.LoadFile(configFile)
		if err != nil {
			return settings, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
		}
		if err := fileConfig.Validate(); err != nil {
			return settings, fmt.Errorf("設定検証エラー: %w", err)
		}
		settings, err = fileConfig.ToSettings()
		if err != nil {
			return settings, fmt.Errorf("設定変換エラー: %w", err)
		}
	}

	// 2. フラグでオーバーライド
	if o.size < 0 {
		return settings, fmt.Errorf("size must be non-negative: %d", o.size)
	}
	if o.size > 0 {
		settings.PoolSize = o.size
	}
	if o.jobs < 0 {
		return settings, fmt.Errorf("jobs must be non-negative: %d", o.jobs)
	}
	if o.jobs > 0 {
		settings.DemoJobs = o.jobs
	}
	if o.jobDuration >= 0 {
		settings.JobDuration = o.jobDuration
	}
	if o.producers < 0 {
		return settings, fmt.Errorf("producers must be non-negative: %d", o.producers)
	}
	if o.producers > 0 {
		settings.Producers = o.producers
	}
	if o.panicRatio > 1 {
		return settings, fmt.Errorf("panic-ratio must be between 0 and 1: %v", o.panicRatio)
	}
	if o.panicRatio >= 0 {
		settings.PanicRatio = o.panicRatio
	}
	if o.logLevel != "" {
		level, err := logger.ParseLevel(o.logLevel)
		if err != nil {
			return settings, err
		}
		settings.LogLevel = level
	}
	if o.addr != "" {
		settings.ServerAddr = o.addr
	}

	return settings, nil
}

// runDemo はプールを作成し、ジョブを投入してシャットダウンする
func runDemo(ctx context.Context, settings config.Settings) metrics.Snapshot {
	fmt.Println("threadpool - Fixed-size worker pool")
	fmt.Println("===================================")
	fmt.Printf("Workers: %d, Jobs: %d, Producers: %d\n",
		settings.PoolSize, settings.DemoJobs, settings.Producers)
	fmt.Printf("Job duration: %v, Panic ratio: %.1f%%\n",
		settings.JobDuration, settings.PanicRatio*100)
	fmt.Println("===================================")
	fmt.Println()

	m := metrics.NewWithConfig(metrics.Config{MaxLatencySamples: settings.MaxLatencySamples})
	pool := worker.NewPool(settings.PoolSize, worker.WithMetrics(m))

	gen := load.New(pool, load.Config{
		Producers:   settings.Producers,
		Jobs:        uint64(settings.DemoJobs),
		JobDuration: settings.JobDuration,
		PanicRatio:  settings.PanicRatio,
	})
	gen.Run(ctx)

	pool.Shutdown()

	return m.Snapshot()
}

// runServer は API サーバーを起動し、終了時にプールをシャットダウンする
func runServer(settings config.Settings) error {
	fmt.Println("threadpool - API Server")
	fmt.Println("=======================")
	fmt.Printf("Starting server on http://%s with %d workers\n", settings.ServerAddr, settings.PoolSize)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n中断シグナルを受信、サーバーを終了中...")
		cancel()
	}()

	bus := events.NewBus()
	defer bus.Close()

	m := metrics.NewWithConfig(metrics.Config{MaxLatencySamples: settings.MaxLatencySamples})
	pool := worker.NewPool(settings.PoolSize,
		worker.WithSink(events.Tee(events.NewLogSink(logger.Default), bus)),
		worker.WithMetrics(m),
	)
	defer pool.Shutdown()

	server := api.NewServer(settings.ServerAddr, pool, bus)
	return server.Start(ctx)
}
