package histogram

import (
	metrics "github.com/rcrowley/go-metrics"
)

// Histogram 线程安全的延迟直方图
// 基于均匀蓄水池采样维护延迟分布的近似快照：
// 容量大于0时使用固定容量的均匀蓄水池（Vitter Algorithm R，随机替换保证
// 每个观测值以同等概率被保留），容量小于等于0时保留全部观测值
//
// Record 可以被任意数量的协程并发调用；
// Snapshot 只应在全部写入结束之后调用一次
type Histogram struct {
	h metrics.Histogram
}

// New 创建延迟直方图
// capacity > 0 为蓄水池容量；capacity <= 0 表示不设上限
func New(capacity int) *Histogram {
	var sample metrics.Sample
	if capacity > 0 {
		sample = metrics.NewUniformSample(capacity)
	} else {
		sample = newUnboundedSample()
	}
	return &Histogram{h: metrics.NewHistogram(sample)}
}

// Record 记录一次延迟观测值，单位毫秒
func (h *Histogram) Record(latencyMs int64) {
	h.h.Update(latencyMs)
}

// Count 返回已记录的观测值总数（而非蓄水池中保留的样本数）
func (h *Histogram) Count() int64 {
	return h.h.Count()
}

// Size 返回蓄水池当前保留的样本数
func (h *Histogram) Size() int {
	return h.h.Sample().Size()
}

// percentileLevels 报告使用的分位数
var percentileLevels = []float64{0.5, 0.75, 0.95, 0.98, 0.99, 0.999}

// Snapshot 直方图统计快照
type Snapshot struct {
	Count  int64   // 观测值总数
	Min    int64   // 最小延迟
	Max    int64   // 最大延迟
	Mean   float64 // 平均延迟
	StdDev float64 // 标准差
	Median float64 // 中位数（P50）
	P75    float64
	P95    float64
	P98    float64
	P99    float64
	P999   float64
}

// Snapshot 生成统计快照
// 分布统计来自蓄水池保留的样本，Count 为全部观测值总数；
// 分位数按排序样本的线性插值计算（pos = p * (n+1)）
func (h *Histogram) Snapshot() *Snapshot {
	snap := h.h.Snapshot()
	ps := snap.Percentiles(percentileLevels)
	return &Snapshot{
		Count:  snap.Count(),
		Min:    snap.Min(),
		Max:    snap.Max(),
		Mean:   snap.Mean(),
		StdDev: snap.StdDev(),
		Median: ps[0],
		P75:    ps[1],
		P95:    ps[2],
		P98:    ps[3],
		P99:    ps[4],
		P999:   ps[5],
	}
}
