package probe

import "errors"

// 测量运行的失败类别，全部为致命错误：
// 任何一类失败都会中止整次运行，不重试，也不输出部分报告
var (
	// ErrDiscovery 分区发现失败（broker不可达、主题不存在等）
	ErrDiscovery = errors.New("partition discovery failed")

	// ErrFetch 分区拉取失败（消费错误、记录解码失败等）
	ErrFetch = errors.New("partition fetch failed")

	// ErrDeadlineExceeded 等待全部分区拉取完成超过时间上限
	ErrDeadlineExceeded = errors.New("fetch deadline exceeded")
)
