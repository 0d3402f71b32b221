// Package worker provides a fixed-size goroutine pool for concurrent job
// execution.
//
// A Pool owns N long-lived workers that share one unbounded FIFO queue.
// Each worker locks the shared receiving end only long enough to dequeue a
// single message, then runs the job on its own goroutine, so one slow job
// never keeps the other workers from picking up work.
//
// # Basic Usage
//
//	pool := worker.NewPool(4) // 4 workers, panics if size <= 0
//	defer pool.Shutdown()
//
//	for i := 0; i < 100; i++ {
//	    pool.Submit(func() {
//	        // do work
//	    })
//	}
//
// # Observability
//
// Lifecycle events (job started, worker terminated, shutdown progress) go
// to an events.Sink; by default they are written through logger.Default.
// Job counts and run times are recorded in a metrics.Metrics:
//
//	bus := events.NewBus()
//	m := metrics.New()
//	pool := worker.NewPool(8, worker.WithSink(bus), worker.WithMetrics(m))
//
// # Graceful Shutdown
//
// Shutdown enqueues one terminate message per worker behind any pending
// jobs, then waits for every worker in creation order. Queued jobs are run
// before the workers exit. Submit after Shutdown panics with ErrPoolClosed;
// TrySubmit reports it as an error instead.
//
// # Job Failures
//
// A job that panics is recovered, reported as an events.EventJobPanicked
// event and counted in metrics. The worker that ran it exits, so the pool
// keeps running with one worker fewer. Nothing is reported to the submitter.
package worker
