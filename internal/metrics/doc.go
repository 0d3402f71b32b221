// Package metrics provides job metrics collection and reporting for the
// worker pool.
//
// Metrics collects statistics about job run time, completion/panic counts,
// jobs dropped at shutdown, and throughput (jobs per second). It is
// thread-safe and cheap enough to record from every worker.
//
// # Basic Usage
//
//	m := metrics.New()
//	pool := worker.NewPool(4, worker.WithMetrics(m))
//
//	// ... submit jobs, shut down ...
//
//	fmt.Printf("Completed: %d, JPS: %.2f, P99: %v\n",
//	    m.CompletedJobs(), m.OverallJPS(), m.P99Latency())
//
//	snap := m.Snapshot()
//	fmt.Println(snap.Report())
//
// # Configuration
//
// Use NewWithConfig for custom settings:
//
//	config := metrics.Config{
//	    MaxLatencySamples: 5000, // More samples for P99 accuracy
//	}
//	m := metrics.NewWithConfig(config)
//
// # Thread Safety
//
// Counters are atomic; latency samples are guarded by a mutex.
package metrics
