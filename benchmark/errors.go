package benchmark

import (
	"fmt"
	"strings"
	"time"
)

// MismatchError 各策略的总和不一致，说明某个策略丢了更新，不可恢复
type MismatchError struct {
	Results []Result
}

// Diverged 与第一个策略（基线）总和不同的策略名
func (e *MismatchError) Diverged() []string {
	if len(e.Results) == 0 {
		return nil
	}
	ref := e.Results[0].Sum
	var names []string
	for _, r := range e.Results[1:] {
		if r.Sum != ref {
			names = append(names, r.Name)
		}
	}
	return names
}

func (e *MismatchError) Error() string {
	var sb strings.Builder
	sb.WriteString("mismatched sums:")
	for _, r := range e.Results {
		fmt.Fprintf(&sb, " %s=%d", r.Name, r.Sum)
	}
	if diverged := e.Diverged(); len(diverged) > 0 && len(e.Results) > 0 {
		fmt.Fprintf(&sb, " (diverged from %s: %s)", e.Results[0].Name, strings.Join(diverged, ", "))
	}
	return sb.String()
}

// TimeoutError 某个策略在限定时间内没有跑完（含预热）
type TimeoutError struct {
	Strategy string
	Timeout  time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("strategy %s did not finish within %s: %v", e.Strategy, e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}
