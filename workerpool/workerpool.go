package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrPoolClosed Close 之后再提交任务
	ErrPoolClosed = errors.New("workerpool: pool closed")
	// ErrInvalidSize worker 数量必须为正
	ErrInvalidSize = errors.New("workerpool: size must be positive")
)

// PanicError 任务执行中发生 panic，由 worker 恢复后通过 Handle 交给调用方
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("workerpool: task panicked: %v", e.Value)
}

// Handle 一次提交对应的挂起结果
type Handle struct {
	done chan struct{}
	err  error
}

// Done 任务结束后关闭
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait 阻塞直到任务结束或 ctx 结束
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type task struct {
	fn func() error
	h  *Handle
}

func (t task) run() {
	defer close(t.h.done)
	defer func() {
		if r := recover(); r != nil {
			t.h.err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	t.h.err = t.fn()
}

// Pool 固定数量的 worker 从同一个 tasks channel 取任务执行
type Pool struct {
	size  int
	tasks chan task
	g     errgroup.Group

	mu     sync.RWMutex
	closed bool
}

// New 启动 size 个 worker
func New(size int) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	p := &Pool{
		size:  size,
		tasks: make(chan task, size),
	}
	for i := 0; i < size; i++ {
		p.g.Go(p.work)
	}
	return p, nil
}

func (p *Pool) work() error {
	for t := range p.tasks {
		t.run()
	}
	return nil
}

// Size worker 数量
func (p *Pool) Size() int {
	return p.size
}

// Submit 提交一个任务。worker 都忙且缓冲已满时阻塞，ctx 结束则放弃提交。
func (p *Pool) Submit(ctx context.Context, fn func() error) (*Handle, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := &Handle{done: make(chan struct{})}
	select {
	case p.tasks <- task{fn: fn, h: h}:
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown 停止接收新任务，等待已提交任务跑完；ctx 结束时不再等待。
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- p.g.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("workerpool: shutdown: %w", ctx.Err())
	}
}

// Close 等价于不限时的 Shutdown
func (p *Pool) Close() error {
	return p.Shutdown(context.Background())
}
