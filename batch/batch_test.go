package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"counterbench/workerpool"
)

func TestSize(t *testing.T) {
	cases := []struct {
		n, workers, factor, want int
	}{
		{200_000, 8, 8, 3125},
		{1000, 4, 8, 31},
		{10, 4, 8, 1},
		{0, 4, 8, 1},
		{100, 0, 8, 12},
		{100, 1, 0, 100},
	}
	for _, c := range cases {
		if got := Size(c.n, c.workers, c.factor); got != c.want {
			t.Errorf("Size(%d, %d, %d) = %d, want %d", c.n, c.workers, c.factor, got, c.want)
		}
	}
}

// 任意 n 和 workers 下，批次两两不相交、按顺序覆盖 [0, n)
func TestPartitionCoversExactlyOnce(t *testing.T) {
	for _, n := range []int{1, 2, 7, 64, 999, 1000, 12345} {
		for _, workers := range []int{1, 2, 3, 8, 17} {
			size := Size(n, workers, DefaultFactor)
			ranges := Partition(n, size)

			next := 0
			for i, r := range ranges {
				if r.Start != next {
					t.Fatalf("n=%d workers=%d: batch %d starts at %d, want %d", n, workers, i, r.Start, next)
				}
				if r.Len() <= 0 || r.Len() > size {
					t.Fatalf("n=%d workers=%d: batch %d has length %d, size %d", n, workers, i, r.Len(), size)
				}
				if i < len(ranges)-1 && r.Len() != size {
					t.Fatalf("n=%d workers=%d: non-final batch %d has length %d, want %d", n, workers, i, r.Len(), size)
				}
				next = r.End
			}
			if next != n {
				t.Fatalf("n=%d workers=%d: batches end at %d, want %d", n, workers, next, n)
			}
		}
	}
}

func TestPartitionEmpty(t *testing.T) {
	if got := Partition(0, 10); len(got) != 0 {
		t.Fatalf("got %d ranges, want 0", len(got))
	}
}

func TestRunVisitsEveryElementOnce(t *testing.T) {
	pool, err := workerpool.New(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer pool.Close()

	const n = 10_000
	keys := make([]int, n)
	for i := range keys {
		keys[i] = i
	}

	seen := make([]atomic.Int32, n)
	if err := Run(context.Background(), pool, keys, DefaultFactor, func(k int) {
		seen[k].Add(1)
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	for i := range seen {
		if got := seen[i].Load(); got != 1 {
			t.Fatalf("element %d visited %d times, want 1", i, got)
		}
	}
}

func TestSubmitOneHandlePerBatch(t *testing.T) {
	pool, _ := workerpool.New(2)
	defer pool.Close()

	keys := make([]int, 100)
	handles, err := Submit(context.Background(), pool, keys, DefaultFactor, func(int) {})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := len(Partition(len(keys), Size(len(keys), 2, DefaultFactor)))
	if len(handles) != want {
		t.Fatalf("got %d handles, want %d", len(handles), want)
	}
	if err := Wait(context.Background(), handles); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

// 批内按下标顺序处理
func TestBatchPreservesOrder(t *testing.T) {
	pool, _ := workerpool.New(1)
	defer pool.Close()

	keys := make([]int, 500)
	for i := range keys {
		keys[i] = i
	}

	var (
		mu  sync.Mutex
		got []int
	)
	if err := Run(context.Background(), pool, keys, DefaultFactor, func(k int) {
		mu.Lock()
		got = append(got, k)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	// 单 worker 时批次也按提交顺序执行，整体就是 0..n-1
	for i, k := range got {
		if k != i {
			t.Fatalf("got[%d] = %d, want %d", i, k, i)
		}
	}
}

func TestRunPropagatesPanic(t *testing.T) {
	pool, _ := workerpool.New(2)
	defer pool.Close()

	keys := []int{1, 2, 3, 4}
	err := Run(context.Background(), pool, keys, DefaultFactor, func(k int) {
		if k == 3 {
			panic("bad key")
		}
	})
	var pe *workerpool.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PanicError, got: %v", err)
	}
}

func TestSubmitClosedPool(t *testing.T) {
	pool, _ := workerpool.New(1)
	pool.Close()

	err := Run(context.Background(), pool, []int{1, 2}, DefaultFactor, func(int) {})
	if !errors.Is(err, workerpool.ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got: %v", err)
	}
}
