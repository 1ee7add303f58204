package config

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

// ErrInvalidConfig 参数非法，在调度任何任务之前返回
var ErrInvalidConfig = errors.New("invalid config")

// Config 基准测试的输入。Workers 为 0 时取 max(2, CPU 核数)。
type Config struct {
	Workers  int           `json:",default=0"`
	Tasks    int           `json:",default=200000"`
	KeySpace int           `json:",default=10000"`
	Timeout  time.Duration `json:",default=10m"`
	Log      logx.LogConf
}

// DefaultWorkers max(2, CPU 核数)
func DefaultWorkers() int {
	return max(2, runtime.NumCPU())
}

// Default 全部取默认值
func Default() (Config, error) {
	var c Config
	if err := conf.FillDefault(&c); err != nil {
		return Config{}, fmt.Errorf("fill default config: %w", err)
	}
	c.resolve()
	return c, nil
}

// New 用调用方给定的三个整数构造配置，其余取默认值
func New(workers, tasks, keySpace int) (Config, error) {
	c, err := Default()
	if err != nil {
		return Config{}, err
	}
	c.Workers, c.Tasks, c.KeySpace = workers, tasks, keySpace
	return c, c.Validate()
}

// Load 从 yaml/json/toml 文件加载配置
func Load(path string) (Config, error) {
	var c Config
	if err := conf.Load(path, &c); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	c.resolve()
	return c, c.Validate()
}

func (c *Config) resolve() {
	if c.Workers == 0 {
		c.Workers = DefaultWorkers()
	}
}

// Validate 三个整数和超时都必须为正
func (c Config) Validate() error {
	var errs []error
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.Tasks <= 0 {
		errs = append(errs, fmt.Errorf("tasks must be positive, got %d", c.Tasks))
	}
	if c.KeySpace <= 0 {
		errs = append(errs, fmt.Errorf("keySpace must be positive, got %d", c.KeySpace))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
