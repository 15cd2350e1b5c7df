package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/histogram"
	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/logger"
)

// ErrReportIO 报告写入失败
// 报告是整次运行的最后一个阶段，写入失败同样使运行整体失败
var ErrReportIO = errors.New("report io failure")

// csvColumns 固定列序，文件首次创建时写入一次
var csvColumns = []string{
	"time",
	"count",
	"throughput(msgs/s)",
	"max_latency(ms)",
	"mean_latency(ms)",
	"min_latency(ms)",
	"stddev_latency(ms)",
	"p50_latency(ms)",
	"p75_latency(ms)",
	"p95_latency(ms)",
	"p98_latency(ms)",
	"p99_latency(ms)",
	"p999_latency(ms)",
}

// Row 一次测量运行的汇总行
type Row struct {
	GeneratedAt time.Time           // 报告生成时间
	Count       int64               // 消费的记录总数
	WindowMinMs int64               // 全局最早接收时间，毫秒时间戳
	WindowMaxMs int64               // 全局最晚接收时间，毫秒时间戳
	Stats       *histogram.Snapshot // 延迟统计快照
}

// Throughput 计算吞吐量（条/秒），整数除法
// 接收时间窗口宽度为0（空运行或单条记录）时返回0
func (r Row) Throughput() int64 {
	window := r.WindowMaxMs - r.WindowMinMs
	if window <= 0 {
		return 0
	}
	return r.Count * 1000 / window
}

// fields 按列序格式化一行，统计值固定三位小数
func (r Row) fields() []string {
	s := r.Stats
	return []string{
		r.GeneratedAt.Format(time.RFC3339),
		strconv.FormatInt(r.Count, 10),
		strconv.FormatInt(r.Throughput(), 10),
		formatMs(float64(s.Max)),
		formatMs(s.Mean),
		formatMs(float64(s.Min)),
		formatMs(s.StdDev),
		formatMs(s.Median),
		formatMs(s.P75),
		formatMs(s.P95),
		formatMs(s.P98),
		formatMs(s.P99),
		formatMs(s.P999),
	}
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Writer CSV报告写入器
// 每个主题对应输出目录下的一个CSV文件：文件首次创建时写入列头，
// 之后每次运行追加一行，历史行保持不变
type Writer struct {
	outputDir string
	logger    *zap.Logger
}

// NewWriter 创建报告写入器
func NewWriter(outputDir string) *Writer {
	return &Writer{
		outputDir: outputDir,
		logger:    logger.Logger,
	}
}

// Append 追加一行报告，返回报告文件路径
// 输出目录不存在时自动创建
func (w *Writer) Append(topic string, row Row) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create output directory %s: %w", ErrReportIO, w.outputDir, err)
	}

	path := filepath.Join(w.outputDir, topic+".csv")

	// 只在文件不存在时写入列头
	writeHeader := false
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("%w: stat %s: %w", ErrReportIO, path, err)
		}
		writeHeader = true
	}

	if row.Count > 0 && row.WindowMaxMs == row.WindowMinMs {
		w.logger.Warn("Receive window has zero width, reporting zero throughput",
			zap.String("topic", topic),
			zap.Int64("count", row.Count))
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", ErrReportIO, path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if writeHeader {
		if err := cw.Write(csvColumns); err != nil {
			return "", fmt.Errorf("%w: write header to %s: %w", ErrReportIO, path, err)
		}
	}
	if err := cw.Write(row.fields()); err != nil {
		return "", fmt.Errorf("%w: write row to %s: %w", ErrReportIO, path, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("%w: flush %s: %w", ErrReportIO, path, err)
	}

	return path, nil
}
