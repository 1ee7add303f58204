package batch

import (
	"context"
	"fmt"

	"counterbench/workerpool"
)

// DefaultFactor 每个 worker 平均分到的批次数，批次多于 worker 便于负载均衡
const DefaultFactor = 8

// Range 一个批次覆盖的下标区间 [Start, End)
type Range struct {
	Start int
	End   int
}

// Len 批次长度
func (r Range) Len() int {
	return r.End - r.Start
}

// Size 批大小 = max(1, n / (workers * factor))
func Size(n, workers, factor int) int {
	if workers < 1 {
		workers = 1
	}
	if factor < 1 {
		factor = 1
	}
	return max(1, n/(workers*factor))
}

// Partition 按固定窗口顺序切分 [0, n)，最后一批可能更短。
// 各批两两不相交，并且按顺序拼起来正好是 [0, n)。
func Partition(n, size int) []Range {
	if n <= 0 {
		return nil
	}
	if size < 1 {
		size = 1
	}

	ranges := make([]Range, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		ranges = append(ranges, Range{Start: start, End: min(n, start+size)})
	}
	return ranges
}

// Submit 把 keys 切成批次，每批作为一个任务提交给 pool；批内按下标顺序对每个元素调用 action。
// 调用方必须对返回的每个 Handle 调用 Wait 之后才能读取聚合结果。
func Submit(ctx context.Context, pool *workerpool.Pool, keys []int, factor int, action func(key int)) ([]*workerpool.Handle, error) {
	ranges := Partition(len(keys), Size(len(keys), pool.Size(), factor))
	handles := make([]*workerpool.Handle, 0, len(ranges))

	for _, r := range ranges {
		part := keys[r.Start:r.End]
		h, err := pool.Submit(ctx, func() error {
			for _, k := range part {
				action(k)
			}
			return nil
		})
		if err != nil {
			return handles, fmt.Errorf("submit batch [%d, %d): %w", r.Start, r.End, err)
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// Wait 依次等待所有批次，返回遇到的第一个错误
func Wait(ctx context.Context, handles []*workerpool.Handle) error {
	for i, h := range handles {
		if err := h.Wait(ctx); err != nil {
			return fmt.Errorf("batch %d: %w", i, err)
		}
	}
	return nil
}

// Run Submit 之后 Wait；提交失败时先等已提交的批次结束再返回
func Run(ctx context.Context, pool *workerpool.Pool, keys []int, factor int, action func(key int)) error {
	handles, err := Submit(ctx, pool, keys, factor, action)
	if err != nil {
		_ = Wait(ctx, handles)
		return err
	}
	return Wait(ctx, handles)
}
