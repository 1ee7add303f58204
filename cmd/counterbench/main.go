package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/zeromicro/go-zero/core/logx"

	"counterbench/benchmark"
	"counterbench/config"
	"counterbench/report"
)

var (
	configFile = flag.String("f", "", "the config file, e.g. etc/counterbench.yaml")
	workers    = flag.Int("workers", 0, "worker count, default max(2, NumCPU)")
	tasks      = flag.Int("tasks", 0, "number of increments, default 200000")
	keySpace   = flag.Int("keyspace", 0, "number of distinct keys, default 10000")
	asJSON     = flag.Bool("json", false, "print the report as JSON")
	gops       = flag.Bool("gops", false, "start a gops agent for inspecting a stuck run")
)

func main() {
	flag.Parse()

	c, err := loadConfig()
	logx.Must(err)
	logx.MustSetup(c.Log)
	logx.SetWriter(logx.NewWriter(os.Stderr))
	defer logx.Close()

	if *gops {
		logx.Must(agent.Listen(agent.Options{}))
		defer agent.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := benchmark.Run(ctx, c)
	logx.Must(err)

	r := report.New(c, results)
	if *asJSON {
		err = report.JSON(os.Stdout, r)
	} else {
		err = report.Text(os.Stdout, r)
	}
	logx.Must(err)
}

// loadConfig 配置文件 < 命令行参数；第一个位置参数也可以指定 worker 数
func loadConfig() (config.Config, error) {
	var (
		c   config.Config
		err error
	)
	if *configFile != "" {
		c, err = config.Load(*configFile)
	} else {
		c, err = config.Default()
	}
	if err != nil {
		return config.Config{}, err
	}

	if arg := flag.Arg(0); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: workers %q is not an integer", config.ErrInvalidConfig, arg)
		}
		c.Workers = n
	}
	if *workers != 0 {
		c.Workers = *workers
	}
	if *tasks != 0 {
		c.Tasks = *tasks
	}
	if *keySpace != 0 {
		c.KeySpace = *keySpace
	}
	return c, c.Validate()
}
