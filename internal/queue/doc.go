// Package queue provides an unbounded multi-producer/multi-consumer FIFO
// split into a sending half and a receiving half.
//
// Unlike a buffered Go channel, Send never blocks waiting for capacity.
// Recv blocks until an element is available or the queue is closed and
// drained.
//
// # Basic Usage
//
//	tx, rx := queue.New[string]()
//
//	_ = tx.Send("a")
//	_ = tx.Send("b")
//	tx.Close()
//
//	for {
//	    v, err := rx.Recv()
//	    if err != nil {
//	        break // queue.ErrClosed
//	    }
//	    fmt.Println(v)
//	}
//
// # Thread Safety
//
// Both halves may be shared between goroutines. Elements are delivered in the
// order they were sent, each to exactly one receiver.
package queue
