package strategy

import (
	"context"
	"fmt"
	"sync"

	"counterbench/batch"
	"counterbench/workerpool"
)

// Striped 固定数量的分段锁 + 普通计数数组，key & (stripes-1) 定位到段锁
type Striped struct {
	stripes int
	factor  int
}

// NewStriped stripes 必须是 2 的幂，否则按位与无法均匀取模
func NewStriped(stripes, factor int) (*Striped, error) {
	if stripes <= 0 || stripes&(stripes-1) != 0 {
		return nil, fmt.Errorf("%s: stripes must be a positive power of two, got %d", NameStriped, stripes)
	}
	return &Striped{stripes: stripes, factor: normalizeFactor(factor)}, nil
}

func (*Striped) Name() string { return NameStriped }

// Stripes 段锁个数
func (s *Striped) Stripes() int { return s.stripes }

type stripedCounts struct {
	locks  []sync.Mutex
	mask   int
	counts Tally
}

func (c *stripedCounts) inc(k int) {
	l := &c.locks[k&c.mask] // 段定位
	l.Lock()
	c.counts[k]++
	l.Unlock()
}

func (s *Striped) Run(ctx context.Context, pool *workerpool.Pool, keys []int, keySpace int) (Tally, error) {
	if err := checkPool(pool, NameStriped); err != nil {
		return nil, err
	}

	state := &stripedCounts{
		locks:  make([]sync.Mutex, s.stripes),
		mask:   s.stripes - 1,
		counts: make(Tally, keySpace),
	}
	if err := batch.Run(ctx, pool, keys, s.factor, state.inc); err != nil {
		return nil, err
	}
	return state.counts, nil
}
