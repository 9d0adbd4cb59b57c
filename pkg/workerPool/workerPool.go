package workerpool

import (
	"runtime"
	"sync"
)

type WorkerPool struct {
	config    Config
	taskQueue chan func()
	closeOnce sync.Once
}

type Config struct {
	WorkerCount  int
	GlobalBuffer int
}

// Room collects the results of one batch of tasks submitted to a pool.
type Room[T any] struct {
	resultChan chan T
	wg         sync.WaitGroup
	wp         *WorkerPool
}

func NewWorkerPool(config Config) *WorkerPool {
	if config.WorkerCount < 1 {
		config.WorkerCount = runtime.NumCPU() * 3
	}

	if config.GlobalBuffer < 1 {
		config.GlobalBuffer = 1000
	}

	wp := &WorkerPool{
		config:    config,
		taskQueue: make(chan func(), config.GlobalBuffer),
	}

	for i := 0; i < config.WorkerCount; i++ {
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	for run := range wp.taskQueue {
		run()
	}
}

func (wp *WorkerPool) WorkerCount() int {
	return wp.config.WorkerCount
}

// Close stops the workers once queued tasks are drained. Submitting after
// Close panics.
func (wp *WorkerPool) Close() {
	wp.closeOnce.Do(func() {
		close(wp.taskQueue)
	})
}

// CreateRoom makes a room able to hold size results without blocking the
// workers.
func CreateRoom[T any](wp *WorkerPool, size int) *Room[T] {
	return &Room[T]{
		resultChan: make(chan T, size),
		wp:         wp,
	}
}

// NewTask queues job, waiting for a free slot in the global queue.
func (ro *Room[T]) NewTask(job func() T) {
	ro.wg.Add(1)
	ro.wp.taskQueue <- func() {
		defer ro.wg.Done()
		ro.resultChan <- job()
	}
}

// Collect waits for every task of the room and returns the results in
// completion order.
func (ro *Room[T]) Collect() []T {
	go func() {
		ro.wg.Wait()
		close(ro.resultChan)
	}()

	results := make([]T, 0, cap(ro.resultChan))
	for result := range ro.resultChan {
		results = append(results, result)
	}
	return results
}
