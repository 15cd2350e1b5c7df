package probe

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewMarker 测试标记创建
func TestNewMarker(t *testing.T) {
	before := time.Now().UnixMilli()
	marker := NewMarker("producer-1", 42)
	after := time.Now().UnixMilli()

	assert.NoError(t, marker.Validate())
	assert.Equal(t, "producer-1", marker.ProducerID)
	assert.Equal(t, int64(42), marker.Sequence)
	assert.GreaterOrEqual(t, marker.SentAtMs, before, "发送时间应取当前时刻")
	assert.LessOrEqual(t, marker.SentAtMs, after)

	// MarkerID 应是合法的UUID
	_, err := uuid.Parse(marker.MarkerID)
	assert.NoError(t, err)
}

// TestMarker_RoundTrip 测试序列化往返
func TestMarker_RoundTrip(t *testing.T) {
	original := NewMarker("producer-7", 1001)

	data, err := original.ToBytes()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := MarkerFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, original.MarkerID, decoded.MarkerID)
	assert.Equal(t, original.ProducerID, decoded.ProducerID)
	assert.Equal(t, original.Sequence, decoded.Sequence)
	assert.Equal(t, original.SentAtMs, decoded.SentAtMs)
}

// TestMarker_Validate 测试字段校验
func TestMarker_Validate(t *testing.T) {
	tests := []struct {
		name   string
		marker Marker
		errMsg string
	}{
		{
			name:   "missing marker id",
			marker: Marker{Sequence: 1, SentAtMs: 1700000000000},
			errMsg: "marker_id is required",
		},
		{
			name:   "negative sequence",
			marker: Marker{MarkerID: "m-1", Sequence: -1, SentAtMs: 1700000000000},
			errMsg: "sequence must not be negative",
		},
		{
			name:   "missing sent time",
			marker: Marker{MarkerID: "m-1", Sequence: 1},
			errMsg: "sent_at_ms must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.marker.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

// TestMarker_ToBytes_Invalid 测试非法标记不能序列化
func TestMarker_ToBytes_Invalid(t *testing.T) {
	marker := &Marker{Sequence: 1, SentAtMs: 1700000000000}

	_, err := marker.ToBytes()
	assert.Error(t, err)
}

// TestMarkerFromBytes_Garbage 测试非JSON数据解码失败
func TestMarkerFromBytes_Garbage(t *testing.T) {
	_, err := MarkerFromBytes([]byte("not json at all"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal marker")
}

// TestMarkerFromBytes_MissingFields 测试字段缺失的JSON解码失败
func TestMarkerFromBytes_MissingFields(t *testing.T) {
	_, err := MarkerFromBytes([]byte(`{"marker_id":"m-1","sequence":3}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid marker")
}
