package httpserver

import "sync/atomic"

// semaphore is a process-global count of live workers, bounded by max.
// TryAcquire never blocks — the acceptor treats a full semaphore as an
// immediate 503 rather than queuing.
type semaphore struct {
	count int64
	max   int64
}

func newSemaphore(max int) *semaphore {
	return &semaphore{max: int64(max)}
}

// TryAcquire increments the live-worker count if it would stay at or
// under max, reporting whether it succeeded.
func (s *semaphore) TryAcquire() bool {
	for {
		cur := atomic.LoadInt64(&s.count)
		if cur >= s.max {
			return false
		}
		if atomic.CompareAndSwapInt64(&s.count, cur, cur+1) {
			return true
		}
	}
}

// Release decrements the live-worker count.
func (s *semaphore) Release() {
	atomic.AddInt64(&s.count, -1)
}
