package benchmark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/timex"

	"counterbench/batch"
	"counterbench/config"
	"counterbench/strategy"
	"counterbench/workerpool"
	"counterbench/workload"
)

const (
	// WarmUps 计时前丢弃的预热次数
	WarmUps = 2
	// Unmeasurable 耗时不足 1ms 时吞吐量无法计算
	Unmeasurable int64 = -1

	shutdownTimeout = 10 * time.Second
)

// Result 一个策略的计时结果
type Result struct {
	Name          string        `json:"name"`
	ElapsedMillis int64         `json:"elapsedMillis"`
	Throughput    int64         `json:"throughputOpsPerSec"`
	Sum           int64         `json:"sum"`
	Elapsed       time.Duration `json:"-"`
}

// Throughput 每秒操作数 = 1000 * tasks / elapsedMillis；elapsedMillis 为 0 时返回 Unmeasurable
func Throughput(tasks int, elapsedMillis int64) int64 {
	if elapsedMillis <= 0 {
		return Unmeasurable
	}
	return 1000 * int64(tasks) / elapsedMillis
}

// Verify 所有策略的总和必须相等
func Verify(results []Result) error {
	if len(results) == 0 {
		return nil
	}
	for _, r := range results[1:] {
		if r.Sum != results[0].Sum {
			return &MismatchError{Results: results}
		}
	}
	return nil
}

// RunBenchmark 用三个整数跑完整的对比：生成输入，依次跑四种策略，校验总和
func RunBenchmark(ctx context.Context, workers, tasks, keySpace int) ([]Result, error) {
	c, err := config.New(workers, tasks, keySpace)
	if err != nil {
		return nil, err
	}
	return Run(ctx, c)
}

// Run 按配置跑四种策略
func Run(ctx context.Context, c config.Config) ([]Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	strategies, err := strategy.All(strategy.DefaultStripes, batch.DefaultFactor)
	if err != nil {
		return nil, err
	}
	return RunStrategies(ctx, c, strategies)
}

// RunStrategies 生成一次输入，所有策略共享；任一策略出错立即中止整个运行
func RunStrategies(ctx context.Context, c config.Config, strategies []strategy.Strategy) ([]Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	keys, err := workload.Generate(c.Tasks, c.KeySpace, workload.DefaultSeed)
	if err != nil {
		return nil, fmt.Errorf("generate workload: %w", err)
	}

	pool, err := workerpool.New(c.Workers)
	if err != nil {
		return nil, err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := pool.Shutdown(sctx); err != nil {
			logx.WithContext(ctx).Errorw("worker pool shutdown", logx.Field("error", err.Error()))
		}
	}()

	logger := logx.WithContext(ctx)
	logger.Infow("benchmark started",
		logx.Field("workers", c.Workers),
		logx.Field("tasks", c.Tasks),
		logx.Field("keySpace", c.KeySpace))

	results := make([]Result, 0, len(strategies))
	for _, s := range strategies {
		r, err := runCase(ctx, c, pool, keys, s)
		if err != nil {
			logger.Errorw("strategy failed", logx.Field("strategy", s.Name()), logx.Field("error", err.Error()))
			return nil, err
		}
		logger.Infow("strategy finished",
			logx.Field("strategy", r.Name),
			logx.Field("elapsedMillis", r.ElapsedMillis),
			logx.Field("opsPerSec", r.Throughput),
			logx.Field("sum", r.Sum))
		results = append(results, r)
	}

	if err := Verify(results); err != nil {
		fields := make([]logx.LogField, 0, len(results))
		for _, r := range results {
			fields = append(fields, logx.Field(r.Name, r.Sum))
		}
		logger.Errorw("mismatched sums", fields...)
		return nil, err
	}
	return results, nil
}

// runCase 预热 WarmUps 次后计时一次，预热与计时共用 c.Timeout 的上限
func runCase(ctx context.Context, c config.Config, pool *workerpool.Pool, keys []int, s strategy.Strategy) (Result, error) {
	cctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	for i := 0; i < WarmUps; i++ {
		if _, err := s.Run(cctx, pool, keys, c.KeySpace); err != nil {
			return Result{}, wrapRunError(ctx, c, s, err)
		}
		logx.WithContext(ctx).Debugw("warm-up finished", logx.Field("strategy", s.Name()), logx.Field("iteration", i+1))
	}

	start := timex.Now()
	tally, err := s.Run(cctx, pool, keys, c.KeySpace)
	elapsed := timex.Since(start)
	if err != nil {
		return Result{}, wrapRunError(ctx, c, s, err)
	}

	ms := elapsed.Milliseconds()
	return Result{
		Name:          s.Name(),
		ElapsedMillis: ms,
		Throughput:    Throughput(c.Tasks, ms),
		Sum:           tally.Sum(),
		Elapsed:       elapsed,
	}, nil
}

func wrapRunError(parent context.Context, c config.Config, s strategy.Strategy, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return &TimeoutError{Strategy: s.Name(), Timeout: c.Timeout, Err: err}
	}
	return fmt.Errorf("strategy %s: %w", s.Name(), err)
}
