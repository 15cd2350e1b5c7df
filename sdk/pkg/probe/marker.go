package probe

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	jxtjson "github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/json"
)

// Marker 延迟标记记录
// 生产端在发送时刻写入发送时间，探针消费后用接收时间减去发送时间
// 得到一条端到端延迟样本
type Marker struct {
	MarkerID   string `json:"marker_id"`             // 标记ID
	ProducerID string `json:"producer_id,omitempty"` // 生产者标识（可选）
	Sequence   int64  `json:"sequence"`              // 生产端序号
	SentAtMs   int64  `json:"sent_at_ms"`            // 发送时间，毫秒时间戳
}

// NewMarker 创建标记记录（自动生成 MarkerID，发送时间取当前时刻）
// MarkerID 使用 UUID v7（时间排序的 UUID）
func NewMarker(producerID string, sequence int64) *Marker {
	markerID, err := uuid.NewV7()
	if err != nil {
		// NewV7 理论上不会失败（除非系统时钟异常），但为了健壮性，回退到 UUID v4
		markerID = uuid.New()
	}

	return &Marker{
		MarkerID:   markerID.String(),
		ProducerID: producerID,
		Sequence:   sequence,
		SentAtMs:   time.Now().UnixMilli(),
	}
}

// Validate 校验标记字段
func (m *Marker) Validate() error {
	if strings.TrimSpace(m.MarkerID) == "" {
		return errors.New("marker_id is required")
	}
	if m.Sequence < 0 {
		return errors.New("sequence must not be negative")
	}
	if m.SentAtMs <= 0 {
		return errors.New("sent_at_ms must be positive")
	}
	return nil
}

// ToBytes 序列化为字节数组
func (m *Marker) ToBytes() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return jxtjson.Marshal(m)
}

// MarkerFromBytes 从字节数组反序列化
func MarkerFromBytes(data []byte) (*Marker, error) {
	var m Marker
	if err := jxtjson.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal marker: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid marker: %w", err)
	}
	return &m, nil
}
