package strategy

import (
	"context"
	"sync"

	"counterbench/batch"
	"counterbench/workerpool"
)

// GlobalLock 所有 worker 共用一把互斥锁保护整个计数数组，每次自增都串行化
type GlobalLock struct {
	factor int
}

func NewGlobalLock(factor int) *GlobalLock {
	return &GlobalLock{factor: normalizeFactor(factor)}
}

func (*GlobalLock) Name() string { return NameGlobalLock }

type lockedCounts struct {
	mu     sync.Mutex
	counts Tally
}

func (c *lockedCounts) inc(k int) {
	c.mu.Lock()
	c.counts[k]++
	c.mu.Unlock()
}

func (g *GlobalLock) Run(ctx context.Context, pool *workerpool.Pool, keys []int, keySpace int) (Tally, error) {
	if err := checkPool(pool, NameGlobalLock); err != nil {
		return nil, err
	}

	state := &lockedCounts{counts: make(Tally, keySpace)}
	if err := batch.Run(ctx, pool, keys, g.factor, state.inc); err != nil {
		return nil, err
	}
	return state.counts, nil
}
