package config

import (
	"fmt"
	"time"
)

// ==========================================================================
// 延迟探针配置 - 一次性测量运行的统一配置入口
// ==========================================================================

const (
	// StartOffsetOldest 从分区保留的最早记录开始读取
	StartOffsetOldest int64 = -2
	// StartOffsetNewest 从分区下一条新记录开始读取
	StartOffsetNewest int64 = -1

	// BudgetUnlimited 采样预算不限量（任何负数都视为不限量）
	BudgetUnlimited int64 = -1

	// DefaultReservoirCapacity 蓄水池默认容量
	DefaultReservoirCapacity = 1028
)

// ProbeConfig 延迟探针配置
type ProbeConfig struct {
	// 标记主题名称
	Topic string `mapstructure:"topic"`

	// 起始偏移量：-2 最早，-1 最新，>=0 为绝对偏移量
	StartOffset int64 `mapstructure:"startOffset"`

	// 全局采样预算：负数表示不限量，0 表示不读取任何记录
	SampleBudget int64 `mapstructure:"sampleBudget"`

	// 蓄水池容量：<=0 表示保留全部样本
	ReservoirCapacity int `mapstructure:"reservoirCapacity"`

	// 工作协程数量：0 表示取分区数（上限8）
	Workers int `mapstructure:"workers"`

	// 全部分区拉取完成的等待上限（默认30分钟）
	FetchDeadline time.Duration `mapstructure:"fetchDeadline"`

	Kafka     KafkaConfig     `mapstructure:"kafka"`     // Kafka配置
	RateLimit RateLimitConfig `mapstructure:"rateLimit"` // 流量控制
	Report    ReportConfig    `mapstructure:"report"`    // 报告输出
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers       []string      `mapstructure:"brokers"`       // Kafka集群地址
	ClientID      string        `mapstructure:"clientId"`      // 客户端ID前缀（默认 jxt-latency-probe）
	DialTimeout   time.Duration `mapstructure:"dialTimeout"`   // 连接超时（默认10秒）
	FetchMinBytes int32         `mapstructure:"fetchMinBytes"` // 单次拉取最小字节数（默认1）
	FetchMaxBytes int32         `mapstructure:"fetchMaxBytes"` // 单次拉取最大字节数（默认1MB）
	FetchMaxWait  time.Duration `mapstructure:"fetchMaxWait"`  // 拉取等待时间（默认500毫秒）
}

// RateLimitConfig 流量控制配置
type RateLimitConfig struct {
	Enabled       bool    `mapstructure:"enabled"`       // 是否启用流量控制
	RatePerSecond float64 `mapstructure:"ratePerSecond"` // 每秒允许处理的记录数
	BurstSize     int     `mapstructure:"burstSize"`     // 突发容量
}

// ReportConfig 报告输出配置
type ReportConfig struct {
	OutputDir string `mapstructure:"outputDir"` // CSV报告输出目录（默认 ./reports）
}

// ProbeConfigInstance 全局探针配置
// StartOffset、SampleBudget、ReservoirCapacity 的零值都有业务含义
// （绝对偏移量0、空预算、无界蓄水池），因此默认值在这里预置，
// 配置文件只覆盖显式给出的键
var ProbeConfigInstance = &ProbeConfig{
	StartOffset:       StartOffsetOldest,
	SampleBudget:      BudgetUnlimited,
	ReservoirCapacity: DefaultReservoirCapacity,
}

// ==========================================================================
// 配置验证和默认值设置
// ==========================================================================

// SetDefaults 为ProbeConfig设置默认值
// 只补齐零值没有业务含义的字段
func (c *ProbeConfig) SetDefaults() {
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "jxt-latency-probe"
	}
	if c.Kafka.DialTimeout == 0 {
		c.Kafka.DialTimeout = 10 * time.Second
	}
	if c.Kafka.FetchMinBytes == 0 {
		c.Kafka.FetchMinBytes = 1
	}
	if c.Kafka.FetchMaxBytes == 0 {
		c.Kafka.FetchMaxBytes = 1024 * 1024
	}
	if c.Kafka.FetchMaxWait == 0 {
		c.Kafka.FetchMaxWait = 500 * time.Millisecond
	}
	if c.FetchDeadline == 0 {
		c.FetchDeadline = 30 * time.Minute
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "./reports"
	}
}

// Validate 验证ProbeConfig配置
func (c *ProbeConfig) Validate() error {
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers are required")
	}

	if c.Topic == "" {
		return fmt.Errorf("topic is required")
	}

	if c.StartOffset < StartOffsetOldest {
		return fmt.Errorf("invalid start offset: %d", c.StartOffset)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}

	if c.FetchDeadline <= 0 {
		return fmt.Errorf("fetch deadline must be positive")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RatePerSecond <= 0 {
			return fmt.Errorf("rate limit requires a positive ratePerSecond")
		}
		if c.RateLimit.BurstSize <= 0 {
			return fmt.Errorf("rate limit requires a positive burstSize")
		}
	}

	return nil
}
