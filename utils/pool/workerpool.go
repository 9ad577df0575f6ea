/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
// Package pool provides the worker pool that runs routing and handler invocation
// for parsed requests. Parsing stays on the connection goroutine.
//
// Package pool 提供执行路由和处理器调用的工作池。
package pool

import (
	"errors"
	"sync"
)

var (
	// ErrPoolStopped is returned by Submit after Stop.
	ErrPoolStopped = errors.New("worker pool stopped")
	// ErrPoolNotStarted is returned by Submit before Start.
	ErrPoolNotStarted = errors.New("worker pool not started")
)

// WorkerPool runs a fixed number of workers that all drain one shared task queue.
// Tasks are executed in submission order by whichever worker is free first,
// so tasks from different submitters interleave freely.
//
// WorkerPool 固定数量的工作者共同消费一个共享任务队列。
//
// Usage Example:
//
//	pool := &WorkerPool{WorkersCount: 4}
//	pool.Start()
//	defer pool.Stop()
//
//	err := pool.Submit(func() {
//	  // Your task implementation
//	})
type WorkerPool struct {
	// WorkersCount is the number of workers. Values below 1 mean 1.
	// WorkersCount 工作者数量，小于1时为1
	WorkersCount int

	// QueueSize is the capacity of the shared task queue. Submit blocks while it is full.
	// Default is 64 tasks per worker.
	// QueueSize 共享任务队列容量，队列满时Submit阻塞
	QueueSize int

	// lock provides thread-safe access to the lifecycle state
	// lock 提供对生命周期状态的线程安全访问
	lock sync.Mutex

	// queue is the shared ready queue drained by every worker
	queue chan func()

	// stopCh is closed by Stop to release the workers
	stopCh chan struct{}

	// wg tracks running workers
	wg sync.WaitGroup

	// startOnce ensures the pool is started only once
	// startOnce 确保池只启动一次
	startOnce sync.Once

	// stopOnce ensures the stop channel is closed only once
	stopOnce sync.Once
}

// Start creates the shared queue and launches the workers.
// Calling it more than once has no effect.
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		workers := wp.getWorkersCount()
		queueSize := wp.QueueSize
		if queueSize <= 0 {
			queueSize = 64 * workers
		}
		wp.lock.Lock()
		wp.queue = make(chan func(), queueSize)
		wp.stopCh = make(chan struct{})
		wp.lock.Unlock()

		wp.wg.Add(workers)
		for i := 0; i < workers; i++ {
			go wp.workerFunc(wp.queue, wp.stopCh)
		}
	})
}

// Stop stops accepting tasks and releases the workers once the queued tasks have run.
// It does not wait for the workers to exit, see Wait.
func (wp *WorkerPool) Stop() {
	wp.lock.Lock()
	stopCh := wp.stopCh
	wp.lock.Unlock()
	if stopCh == nil {
		return
	}
	wp.stopOnce.Do(func() {
		close(stopCh)
	})
}

// Release is an alias for Stop() provided for compatibility with types.Pool.
func (wp *WorkerPool) Release() {
	wp.Stop()
}

// Wait blocks until every worker has exited after Stop.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Submit enqueues a task, blocking while the queue is full.
func (wp *WorkerPool) Submit(fn func()) error {
	wp.lock.Lock()
	queue, stopCh := wp.queue, wp.stopCh
	wp.lock.Unlock()
	if queue == nil {
		return ErrPoolNotStarted
	}
	select {
	case <-stopCh:
		return ErrPoolStopped
	default:
	}
	select {
	case queue <- fn:
		return nil
	case <-stopCh:
		return ErrPoolStopped
	}
}

func (wp *WorkerPool) getWorkersCount() int {
	if wp.WorkersCount < 1 {
		return 1
	}
	return wp.WorkersCount
}

// workerFunc runs tasks until the pool is stopped, then drains what is already queued.
func (wp *WorkerPool) workerFunc(queue chan func(), stopCh chan struct{}) {
	defer wp.wg.Done()
	for {
		select {
		case fn := <-queue:
			fn()
		case <-stopCh:
			for {
				select {
				case fn := <-queue:
					fn()
				default:
					return
				}
			}
		}
	}
}
