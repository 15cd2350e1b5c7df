package probe

import (
	"fmt"

	"github.com/IBM/sarama"
)

// partitionLister 分区枚举所需的最小接口，sarama.Client 天然满足
type partitionLister interface {
	Partitions(topic string) ([]int32, error)
}

// enumeratePartitions 枚举主题的全部分区
// 分区集合在一次运行内不变，后续的预算切分和结果归并都以这里的
// 枚举顺序为准
func enumeratePartitions(lister partitionLister, topic string) ([]int32, error) {
	partitions, err := lister.Partitions(topic)
	if err != nil {
		return nil, fmt.Errorf("%w: list partitions of topic %s: %w", ErrDiscovery, topic, err)
	}
	if len(partitions) == 0 {
		return nil, fmt.Errorf("%w: topic %s has no partitions", ErrDiscovery, topic)
	}
	return partitions, nil
}

// discoverPartitions 通过独立的元数据客户端枚举分区
// 客户端只服务这一次元数据调用，用完即关，不与拉取共享连接
func discoverPartitions(brokers []string, saramaConfig *sarama.Config, topic string) ([]int32, error) {
	client, err := sarama.NewClient(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: create metadata client: %w", ErrDiscovery, err)
	}
	defer client.Close()

	return enumeratePartitions(client, topic)
}
