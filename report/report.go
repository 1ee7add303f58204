package report

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"counterbench/benchmark"
	"counterbench/config"
)

// Report 一次运行的输入参数和各策略结果
type Report struct {
	Workers  int                `json:"workers"`
	Tasks    int                `json:"tasks"`
	KeySpace int                `json:"keySpace"`
	Results  []benchmark.Result `json:"results"`
}

// New 组装报告
func New(c config.Config, results []benchmark.Result) Report {
	return Report{
		Workers:  c.Workers,
		Tasks:    c.Tasks,
		KeySpace: c.KeySpace,
		Results:  results,
	}
}

// Text 一行参数头，随后每个策略一行
func Text(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "\nworkers=%d tasks=%d keySpace=%d\n", r.Workers, r.Tasks, r.KeySpace); err != nil {
		return err
	}
	for _, res := range r.Results {
		if _, err := fmt.Fprintf(w, "%-18s time=%6d ms  ops/s=%10d  sum=%d\n",
			res.Name, res.ElapsedMillis, res.Throughput, res.Sum); err != nil {
			return err
		}
	}
	return nil
}

// JSON 整个报告编码为一个 JSON 对象
func JSON(w io.Writer, r Report) error {
	data, err := sonic.ConfigStd.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
