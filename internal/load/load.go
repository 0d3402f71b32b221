// Package load provides a multi-producer job generator for driving a worker pool.
package load

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"threadpool/internal/logger"
	"threadpool/internal/worker"
)

// Config は Generator の設定
type Config struct {
	Producers   int           // 投入ゴルーチン数（0 で 1）
	Jobs        uint64        // 投入するジョブ数（0 でコンテキスト終了まで無制限）
	JobDuration time.Duration // ジョブ1件の実行時間
	PanicRatio  float64       // パニックさせるジョブの比率（0.0〜1.0）
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Producers:   1,
		Jobs:        8,
		JobDuration: 10 * time.Millisecond,
	}
}

// Generator は複数のゴルーチンからプールにジョブを投入する
type Generator struct {
	config Config
	pool   *worker.Pool

	claimed   atomic.Uint64
	submitted atomic.Uint64
	injected  atomic.Uint64
	rejected  atomic.Bool
}

// New は新しい Generator を作成する
func New(pool *worker.Pool, config Config) *Generator {
	if config.Producers <= 0 {
		config.Producers = 1
	}
	return &Generator{
		config: config,
		pool:   pool,
	}
}

// Run はジョブを投入し、全投入ゴルーチンが終わるまでブロックする
// ジョブの完了は待たない（完了を待つには pool.Shutdown を呼ぶ）
func (g *Generator) Run(ctx context.Context) uint64 {
	logger.Info("load", "Generator started (producers: %d, jobs: %d, panic_ratio: %.1f%%)",
		g.config.Producers, g.config.Jobs, g.config.PanicRatio*100)

	var wg sync.WaitGroup
	for range g.config.Producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.produce(ctx)
		}()
	}
	wg.Wait()

	if g.rejected.Load() {
		logger.Warn("load", "pool closed while generating; stopped early")
	}
	logger.Info("load", "Generator finished (submitted: %d)", g.submitted.Load())

	return g.submitted.Load()
}

// produce はジョブを生成し続ける
func (g *Generator) produce(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n := g.claimed.Add(1)
		if g.config.Jobs > 0 && n > g.config.Jobs {
			return
		}

		if err := g.pool.TrySubmit(g.createJob(n)); err != nil {
			g.rejected.Store(true)
			return
		}
		g.submitted.Add(1)
	}
}

// createJob はジョブを作成する
func (g *Generator) createJob(n uint64) worker.Job {
	fail := g.config.PanicRatio > 0 && rand.Float64() < g.config.PanicRatio
	if fail {
		g.injected.Add(1)
	}
	d := g.config.JobDuration

	return func() {
		if d > 0 {
			time.Sleep(d)
		}
		if fail {
			panic(fmt.Sprintf("injected failure in job %d", n))
		}
	}
}

// Submitted は投入に成功したジョブ数を返す
func (g *Generator) Submitted() uint64 {
	return g.submitted.Load()
}

// Injected はパニックするよう生成したジョブ数を返す
func (g *Generator) Injected() uint64 {
	return g.injected.Load()
}
