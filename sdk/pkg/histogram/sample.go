package histogram

import (
	"sync"

	metrics "github.com/rcrowley/go-metrics"
)

// unboundedSample 无界样本集，实现 metrics.Sample 接口
// metrics.NewUniformSample 在创建时按容量预分配蓄水池，无法表达"不限容量"，
// 这里补一个保留全部观测值的实现，统计口径与库内置样本完全一致
type unboundedSample struct {
	mutex  sync.Mutex
	count  int64
	values []int64
}

func newUnboundedSample() metrics.Sample {
	return &unboundedSample{}
}

// Clear 清空全部样本
func (s *unboundedSample) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.count = 0
	s.values = nil
}

// Count 返回已记录的观测值总数
func (s *unboundedSample) Count() int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.count
}

// Max 返回样本最大值
func (s *unboundedSample) Max() int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return metrics.SampleMax(s.values)
}

// Mean 返回样本平均值
func (s *unboundedSample) Mean() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return metrics.SampleMean(s.values)
}

// Min 返回样本最小值
func (s *unboundedSample) Min() int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return metrics.SampleMin(s.values)
}

// Percentile 返回指定分位数
func (s *unboundedSample) Percentile(p float64) float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return metrics.SamplePercentile(s.values, p)
}

// Percentiles 返回一组分位数
func (s *unboundedSample) Percentiles(ps []float64) []float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return metrics.SamplePercentiles(s.values, ps)
}

// Size 返回当前保留的样本数，无界样本恒等于观测值总数
func (s *unboundedSample) Size() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.values)
}

// Snapshot 返回只读快照
func (s *unboundedSample) Snapshot() metrics.Sample {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	values := make([]int64, len(s.values))
	copy(values, s.values)
	return metrics.NewSampleSnapshot(s.count, values)
}

// StdDev 返回样本标准差
func (s *unboundedSample) StdDev() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return metrics.SampleStdDev(s.values)
}

// Sum 返回样本总和
func (s *unboundedSample) Sum() int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return metrics.SampleSum(s.values)
}

// Update 记录一个新的观测值
func (s *unboundedSample) Update(v int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.count++
	s.values = append(s.values, v)
}

// Values 返回全部样本的拷贝
func (s *unboundedSample) Values() []int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	values := make([]int64, len(s.values))
	copy(values, s.values)
	return values
}

// Variance 返回样本方差
func (s *unboundedSample) Variance() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return metrics.SampleVariance(s.values)
}
