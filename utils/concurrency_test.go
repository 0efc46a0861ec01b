package utils

import (
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(3)

	var count int64
	for i := 0; i < 50; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&count, 1)
		})
	}
	pool.Wait()

	if count != 50 {
		t.Errorf("expected 50 jobs to run, got %d", count)
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	const maxWorkers = 2
	pool := NewWorkerPool(maxWorkers)

	var running, peak int64
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			cur := atomic.AddInt64(&running, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if cur <= p || atomic.CompareAndSwapInt64(&peak, p, cur) {
					break
				}
			}
			atomic.AddInt64(&running, -1)
		})
	}
	pool.Wait()

	if peak > maxWorkers {
		t.Errorf("observed %d concurrent jobs, want at most %d", peak, maxWorkers)
	}
}
