package probe

// BudgetUnlimited 采样预算不限量（任何负预算都按不限量处理）
const BudgetUnlimited int64 = -1

// FetchResult 单个分区一次拉取的汇总结果
// 记录本分区消费的记录数和接收时间窗口（毫秒时间戳），创建后不再修改；
// 零值表示空分区（Count 为 0，窗口无意义）
type FetchResult struct {
	MinTimestampMs int64 // 最早接收时间
	MaxTimestampMs int64 // 最晚接收时间
	Count          int64 // 消费的记录数
}

// observe 把一次接收时间折叠进窗口，返回新的结果值
func (r FetchResult) observe(receivedAtMs int64) FetchResult {
	if r.Count == 0 {
		return FetchResult{
			MinTimestampMs: receivedAtMs,
			MaxTimestampMs: receivedAtMs,
			Count:          1,
		}
	}
	out := r
	if receivedAtMs < out.MinTimestampMs {
		out.MinTimestampMs = receivedAtMs
	}
	if receivedAtMs > out.MaxTimestampMs {
		out.MaxTimestampMs = receivedAtMs
	}
	out.Count++
	return out
}

// GlobalResult 全部分区结果归并后的全局结果
type GlobalResult struct {
	MinTimestampMs int64 // 全局最早接收时间
	MaxTimestampMs int64 // 全局最晚接收时间
	Count          int64 // 全部分区消费的记录总数
}

// Merge 归并一个分区结果
// 运算满足结合律和交换律，Count 为 0 的结果是单位元，
// 空分区不会把时间窗口拉到零值
func (g GlobalResult) Merge(r FetchResult) GlobalResult {
	if r.Count == 0 {
		return g
	}
	if g.Count == 0 {
		return GlobalResult{
			MinTimestampMs: r.MinTimestampMs,
			MaxTimestampMs: r.MaxTimestampMs,
			Count:          r.Count,
		}
	}
	out := g
	if r.MinTimestampMs < out.MinTimestampMs {
		out.MinTimestampMs = r.MinTimestampMs
	}
	if r.MaxTimestampMs > out.MaxTimestampMs {
		out.MaxTimestampMs = r.MaxTimestampMs
	}
	out.Count += r.Count
	return out
}
