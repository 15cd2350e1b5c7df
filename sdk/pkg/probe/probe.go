package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ChenBigdata421/jxt-latency-probe/sdk/config"
	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/histogram"
	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/logger"
	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/report"
)

// Probe 一次性延迟测量探针
// 持有共享的 sarama 连接，一次 Run 完成
// 分区发现 → 并发拉取 → 统计快照 → 报告追加 四个阶段
type Probe struct {
	cfg      *config.ProbeConfig
	runID    string
	client   sarama.Client
	consumer sarama.Consumer
	hist     *histogram.Histogram
	fetcher  *PartitionFetcher
	orch     *FetchOrchestrator
	writer   *report.Writer
	logger   *zap.Logger

	mu     sync.Mutex
	closed bool
}

// New 创建延迟探针
func New(cfg *config.ProbeConfig) (*Probe, error) {
	if cfg == nil {
		return nil, fmt.Errorf("probe config cannot be nil")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid probe config: %w", err)
	}

	runID := newRunID()

	// 创建Sarama配置
	saramaConfig := sarama.NewConfig()
	configureSarama(saramaConfig, cfg, runID)

	// 创建客户端
	client, err := sarama.NewClient(cfg.Kafka.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	// 创建消费者
	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	limiter := NewRateLimiter(cfg.RateLimit)

	return &Probe{
		cfg:      cfg,
		runID:    runID,
		client:   client,
		consumer: consumer,
		hist:     histogram.New(cfg.ReservoirCapacity),
		fetcher:  NewPartitionFetcher(client, consumer, cfg.Topic, limiter),
		orch:     NewFetchOrchestrator(cfg.Workers, cfg.FetchDeadline),
		writer:   report.NewWriter(cfg.Report.OutputDir),
		logger:   logger.WithRunID(runID),
	}, nil
}

// RunID 返回本次运行的唯一标识
func (p *Probe) RunID() string {
	return p.runID
}

// Run 执行一次完整测量
// 消费0条记录同样会生成报告行；任何阶段失败则整次运行失败，
// 不重试，也不写报告
func (p *Probe) Run(ctx context.Context) error {
	p.logger.Info("Starting latency probe run",
		zap.String("topic", p.cfg.Topic),
		zap.Int64("startOffset", p.cfg.StartOffset),
		zap.Int64("sampleBudget", p.cfg.SampleBudget),
		zap.Int("reservoirCapacity", p.cfg.ReservoirCapacity))

	partitions, err := p.discoverPartitions()
	if err != nil {
		p.logger.Error("Partition discovery failed", zap.String("topic", p.cfg.Topic), zap.Error(err))
		return err
	}
	p.logger.Info("Discovered partitions",
		zap.String("topic", p.cfg.Topic),
		zap.Int("count", len(partitions)))

	global, err := p.orch.Run(ctx, partitions, p.cfg.StartOffset, p.cfg.SampleBudget, p.hist, p.fetcher.Fetch)
	if err != nil {
		return err
	}

	// 全部拉取汇合后才生成快照
	snap := p.hist.Snapshot()

	row := report.Row{
		GeneratedAt: time.Now(),
		Count:       global.Count,
		WindowMinMs: global.MinTimestampMs,
		WindowMaxMs: global.MaxTimestampMs,
		Stats:       snap,
	}
	path, err := p.writer.Append(p.cfg.Topic, row)
	if err != nil {
		p.logger.Error("Report append failed", zap.Error(err))
		return err
	}

	p.logger.Info("Latency probe run finished",
		zap.Int64("records", global.Count),
		zap.Int("retainedSamples", p.hist.Size()),
		zap.Float64("meanLatencyMs", snap.Mean),
		zap.Float64("p99LatencyMs", snap.P99),
		zap.String("report", path))
	return nil
}

// discoverPartitions 用独立的短生命周期元数据客户端枚举分区
func (p *Probe) discoverPartitions() ([]int32, error) {
	saramaConfig := sarama.NewConfig()
	configureSarama(saramaConfig, p.cfg, p.runID+"-metadata")
	return discoverPartitions(p.cfg.Kafka.Brokers, saramaConfig, p.cfg.Topic)
}

// Close 释放Kafka连接
func (p *Probe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error

	if p.consumer != nil {
		if err := p.consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close kafka consumer: %w", err))
		}
	}

	if p.client != nil && !p.client.Closed() {
		if err := p.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close kafka client: %w", err))
		}
	}

	p.logger.Info("Latency probe closed")

	if len(errs) > 0 {
		return fmt.Errorf("errors during probe close: %v", errs)
	}
	return nil
}

// newRunID 生成本次运行的唯一标识
// 使用 UUID v7（时间排序），生成失败时回退到 UUID v4
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// configureSarama 配置Sarama
func configureSarama(saramaConfig *sarama.Config, cfg *config.ProbeConfig, clientSuffix string) {
	saramaConfig.ClientID = fmt.Sprintf("%s-%s", cfg.Kafka.ClientID, clientSuffix)

	// 消费者配置
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Fetch.Min = cfg.Kafka.FetchMinBytes
	saramaConfig.Consumer.Fetch.Default = cfg.Kafka.FetchMaxBytes
	saramaConfig.Consumer.MaxWaitTime = cfg.Kafka.FetchMaxWait

	// 网络配置
	if cfg.Kafka.DialTimeout > 0 {
		saramaConfig.Net.DialTimeout = cfg.Kafka.DialTimeout
	}

	// 版本配置
	saramaConfig.Version = sarama.V2_6_0_0
}
