package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/histogram"
	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/logger"
)

// offsetLookup 偏移量查询所需的最小接口，sarama.Client 天然满足
type offsetLookup interface {
	GetOffset(topic string, partitionID int32, time int64) (int64, error)
}

// PartitionFetcher 分区拉取器
// 复用探针持有的 sarama 连接，为单个分区执行一次有界拉取；
// 可以被多个工作协程并发使用
type PartitionFetcher struct {
	topic    string
	client   offsetLookup
	consumer sarama.Consumer
	limiter  *RateLimiter
	logger   *zap.Logger
}

// NewPartitionFetcher 创建分区拉取器
func NewPartitionFetcher(client offsetLookup, consumer sarama.Consumer, topic string, limiter *RateLimiter) *PartitionFetcher {
	return &PartitionFetcher{
		topic:    topic,
		client:   client,
		consumer: consumer,
		limiter:  limiter,
		logger:   logger.Logger,
	}
}

// Fetch 对单个分区执行一次有界拉取
// 从起始偏移量顺序消费至多 budget 条记录（budget 为负表示不限量），
// 每条记录解码出标记中的发送时间，把 接收时间-发送时间 计入共享直方图，
// 返回本分区的接收时间窗口和记录数
//
// 末端偏移量在消费开始前快照，活跃主题上的运行也能正常终止；
// 消费错误和解码失败都立即返回，不重试
func (f *PartitionFetcher) Fetch(ctx context.Context, partition int32, startOffset, budget int64, hist *histogram.Histogram) (FetchResult, error) {
	var result FetchResult

	if budget == 0 {
		return result, nil
	}

	start, end, err := f.resolveOffsets(partition, startOffset)
	if err != nil {
		return result, err
	}
	if start >= end {
		// 分区为空，或起始位置已越过末端
		return result, nil
	}

	pc, err := f.consumer.ConsumePartition(f.topic, partition, start)
	if err != nil {
		return result, fmt.Errorf("%w: consume partition %d from offset %d: %w", ErrFetch, partition, start, err)
	}
	defer pc.Close()

	f.logger.Debug("Partition fetch started",
		zap.String("topic", f.topic),
		zap.Int32("partition", partition),
		zap.Int64("startOffset", start),
		zap.Int64("endOffset", end),
		zap.Int64("budget", budget))

	for {
		select {
		case message := <-pc.Messages():
			if message == nil {
				return result, fmt.Errorf("%w: message channel closed on partition %d", ErrFetch, partition)
			}

			if f.limiter != nil {
				if err := f.limiter.Wait(ctx); err != nil {
					return result, fmt.Errorf("%w: rate limiter on partition %d: %w", ErrFetch, partition, err)
				}
			}

			receivedAt := time.Now().UnixMilli()
			marker, err := MarkerFromBytes(message.Value)
			if err != nil {
				return result, fmt.Errorf("%w: decode marker at partition %d offset %d: %w", ErrFetch, partition, message.Offset, err)
			}

			hist.Record(receivedAt - marker.SentAtMs)
			result = result.observe(receivedAt)

			// 用完预算或消费到快照末端则正常结束
			if budget > 0 && result.Count >= budget {
				return result, nil
			}
			if message.Offset >= end-1 {
				return result, nil
			}

		case err := <-pc.Errors():
			if err != nil {
				return result, fmt.Errorf("%w: partition %d consumer: %w", ErrFetch, partition, err)
			}

		case <-ctx.Done():
			return result, ctx.Err()
		}
	}
}

// resolveOffsets 解析起始偏移量并快照分区当前的末端偏移量
// 本次运行只读取 [start, end) 内的记录
func (f *PartitionFetcher) resolveOffsets(partition int32, startOffset int64) (start, end int64, err error) {
	end, err = f.client.GetOffset(f.topic, partition, sarama.OffsetNewest)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: get newest offset of partition %d: %w", ErrFetch, partition, err)
	}

	switch startOffset {
	case sarama.OffsetOldest:
		start, err = f.client.GetOffset(f.topic, partition, sarama.OffsetOldest)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: get oldest offset of partition %d: %w", ErrFetch, partition, err)
		}
	case sarama.OffsetNewest:
		start = end
	default:
		start = startOffset
	}

	return start, end, nil
}
