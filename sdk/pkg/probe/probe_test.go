package probe

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChenBigdata421/jxt-latency-probe/sdk/config"
)

// TestProbeNew_NilConfig 测试空配置
func TestProbeNew_NilConfig(t *testing.T) {
	probe, err := New(nil)
	require.Error(t, err)
	assert.Nil(t, probe)
	assert.Contains(t, err.Error(), "cannot be nil")
}

// TestProbeNew_InvalidConfig 测试非法配置在建连前被拒绝
func TestProbeNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.ProbeConfig
	}{
		{
			name: "缺少broker",
			cfg: &config.ProbeConfig{
				Topic: "latency-markers",
			},
		},
		{
			name: "缺少主题",
			cfg: &config.ProbeConfig{
				Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}},
			},
		},
		{
			name: "非法起始偏移量",
			cfg: &config.ProbeConfig{
				Topic:       "latency-markers",
				StartOffset: -3,
				Kafka:       config.KafkaConfig{Brokers: []string{"localhost:9092"}},
			},
		},
		{
			name: "负的工作协程数",
			cfg: &config.ProbeConfig{
				Topic:   "latency-markers",
				Workers: -1,
				Kafka:   config.KafkaConfig{Brokers: []string{"localhost:9092"}},
			},
		},
		{
			name: "流量控制缺少速率",
			cfg: &config.ProbeConfig{
				Topic:     "latency-markers",
				Kafka:     config.KafkaConfig{Brokers: []string{"localhost:9092"}},
				RateLimit: config.RateLimitConfig{Enabled: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe, err := New(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, probe)
			assert.Contains(t, err.Error(), "invalid probe config")
		})
	}
}

// TestNewRunID 测试运行标识生成
func TestNewRunID(t *testing.T) {
	id1 := newRunID()
	id2 := newRunID()

	assert.NotEqual(t, id1, id2, "每次运行的标识应不同")

	_, err := uuid.Parse(id1)
	assert.NoError(t, err, "运行标识应是合法的UUID")
}

// TestConfigureSarama 测试Sarama配置映射
func TestConfigureSarama(t *testing.T) {
	cfg := &config.ProbeConfig{
		Topic: "latency-markers",
		Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}},
	}
	cfg.SetDefaults()

	saramaConfig := sarama.NewConfig()
	configureSarama(saramaConfig, cfg, "run-1")

	assert.Equal(t, "jxt-latency-probe-run-1", saramaConfig.ClientID)
	assert.True(t, saramaConfig.Consumer.Return.Errors, "消费错误必须走错误通道上报")
	assert.Equal(t, int32(1), saramaConfig.Consumer.Fetch.Min)
	assert.Equal(t, int32(1024*1024), saramaConfig.Consumer.Fetch.Default)
	assert.Equal(t, 500*time.Millisecond, saramaConfig.Consumer.MaxWaitTime)
	assert.Equal(t, 10*time.Second, saramaConfig.Net.DialTimeout)
	assert.Equal(t, sarama.V2_6_0_0, saramaConfig.Version)
}
