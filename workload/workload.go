package workload

import (
	"fmt"
	"math/rand/v2"
)

// DefaultSeed 固定种子，保证每次运行、每个策略拿到的是同一份输入
const DefaultSeed uint64 = 42

// pcg 第二个状态字与种子混合用的常量（golden ratio）
const seedMix uint64 = 0x9e3779b97f4a7c15

// Generate 生成 tasks 个 [0, keySpace) 内的伪随机 key。
// 同样的 (tasks, keySpace, seed) 总是得到同样的序列；结果生成后只读，供所有策略共享。
func Generate(tasks, keySpace int, seed uint64) ([]int, error) {
	if tasks <= 0 {
		return nil, fmt.Errorf("tasks must be positive, got %d", tasks)
	}
	if keySpace <= 0 {
		return nil, fmt.Errorf("keySpace must be positive, got %d", keySpace)
	}

	rnd := rand.New(rand.NewPCG(seed, seed^seedMix))
	keys := make([]int, tasks)
	for i := range keys {
		keys[i] = rnd.IntN(keySpace)
	}
	return keys, nil
}
