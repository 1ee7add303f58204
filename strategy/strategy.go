package strategy

import (
	"context"
	"fmt"

	"counterbench/batch"
	"counterbench/workerpool"
)

// DefaultStripes 分段锁个数，必须是 2 的幂
const DefaultStripes = 64

// 对外展示的策略名
const (
	NameSequential    = "single-thread"
	NameGlobalLock    = "synchronized"
	NameConcurrentMap = "concurrent-hashmap"
	NameStriped       = "striped-locks"
)

// Tally 每个 key 的出现次数，下标即 key
type Tally []int64

// Sum 所有 key 的计数之和，正确时等于输入长度
func (t Tally) Sum() int64 {
	var sum int64
	for _, c := range t {
		sum += c
	}
	return sum
}

// Strategy 一种并发计数方案。
// 每次 Run 都分配全新的计数状态，结束后只返回聚合结果，不同次调用之间不共享状态。
type Strategy interface {
	Name() string
	Run(ctx context.Context, pool *workerpool.Pool, keys []int, keySpace int) (Tally, error)
}

// All 按固定顺序返回四种策略：单线程、全局锁、并发 map、分段锁
func All(stripes, factor int) ([]Strategy, error) {
	striped, err := NewStriped(stripes, factor)
	if err != nil {
		return nil, err
	}
	return []Strategy{
		Sequential{},
		NewGlobalLock(factor),
		NewConcurrentMap(factor),
		striped,
	}, nil
}

// Sequential 单线程基线，不使用 pool
type Sequential struct{}

func (Sequential) Name() string { return NameSequential }

func (Sequential) Run(ctx context.Context, _ *workerpool.Pool, keys []int, keySpace int) (Tally, error) {
	counts := make(Tally, keySpace)
	for _, k := range keys {
		counts[k]++
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func checkPool(pool *workerpool.Pool, name string) error {
	if pool == nil {
		return fmt.Errorf("%s: nil worker pool", name)
	}
	return nil
}

func normalizeFactor(factor int) int {
	if factor < 1 {
		return batch.DefaultFactor
	}
	return factor
}
