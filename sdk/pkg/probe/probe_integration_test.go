package probe

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChenBigdata421/jxt-latency-probe/sdk/config"
)

// TestIntegration_ProbeRoundTrip 端到端测量链路：
// 生产标记记录 → 探针测量 → 校验CSV报告
// 需要可用的Kafka，连不上时跳过
func TestIntegration_ProbeRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092"
	}

	adminConfig := sarama.NewConfig()
	adminConfig.Version = sarama.V2_6_0_0
	admin, err := sarama.NewClusterAdmin([]string{brokers}, adminConfig)
	if err != nil {
		t.Skipf("Kafka not available: %v", err)
	}
	defer admin.Close()

	topic := fmt.Sprintf("jxt.latency.probe.it.%d", time.Now().UnixNano())
	err = admin.CreateTopic(topic, &sarama.TopicDetail{NumPartitions: 3, ReplicationFactor: 1}, false)
	require.NoError(t, err)
	defer admin.DeleteTopic(topic)

	producerConfig := sarama.NewConfig()
	producerConfig.Version = sarama.V2_6_0_0
	producerConfig.Producer.Return.Successes = true
	producer, err := sarama.NewSyncProducer([]string{brokers}, producerConfig)
	require.NoError(t, err)
	defer producer.Close()

	const records = 30
	for i := 0; i < records; i++ {
		marker := NewMarker("integration-producer", int64(i))
		value, err := marker.ToBytes()
		require.NoError(t, err)

		_, _, err = producer.SendMessage(&sarama.ProducerMessage{
			Topic: topic,
			Value: sarama.ByteEncoder(value),
		})
		require.NoError(t, err)
	}

	outputDir := t.TempDir()
	cfg := &config.ProbeConfig{
		Topic:        topic,
		StartOffset:  config.StartOffsetOldest,
		SampleBudget: config.BudgetUnlimited,
		Workers:      2,
		Kafka:        config.KafkaConfig{Brokers: []string{brokers}},
		Report:       config.ReportConfig{OutputDir: outputDir},
	}

	p, err := New(cfg)
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	file, err := os.Open(filepath.Join(outputDir, topic+".csv"))
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "应只有列头和一行数据")
	assert.Equal(t, "count", rows[0][1])
	assert.Equal(t, fmt.Sprintf("%d", records), rows[1][1], "应消费全部标记记录")
}
