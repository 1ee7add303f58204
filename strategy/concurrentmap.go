package strategy

import (
	"context"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"

	"counterbench/batch"
	"counterbench/workerpool"
)

// ConcurrentMap key -> 累加器的并发 map，累加器在 key 第一次出现时惰性创建。
//
// LoadOrCompute 保证同一个 key 并发首次访问时只会创建一个累加器。
// 累加器是 xsync.Counter：内部按 goroutine 分散到多个 cell 上做原子加，读取时求和，
// 这属于实现细节，这里只依赖它"并发 Inc 不丢更新"。
type ConcurrentMap struct {
	factor int
}

func NewConcurrentMap(factor int) *ConcurrentMap {
	return &ConcurrentMap{factor: normalizeFactor(factor)}
}

func (*ConcurrentMap) Name() string { return NameConcurrentMap }

func (c *ConcurrentMap) Run(ctx context.Context, pool *workerpool.Pool, keys []int, keySpace int) (Tally, error) {
	if err := checkPool(pool, NameConcurrentMap); err != nil {
		return nil, err
	}

	m := xsync.NewMapOf[int, *xsync.Counter](xsync.WithPresize(keySpace))
	err := batch.Run(ctx, pool, keys, c.factor, func(k int) {
		acc, _ := m.LoadOrCompute(k, xsync.NewCounter)
		acc.Inc()
	})
	if err != nil {
		return nil, err
	}

	counts := make(Tally, keySpace)
	m.Range(func(k int, acc *xsync.Counter) bool {
		if k < 0 || k >= keySpace {
			err = fmt.Errorf("%s: key %d out of range [0, %d)", NameConcurrentMap, k, keySpace)
			return false
		}
		counts[k] = acc.Value()
		return true
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
