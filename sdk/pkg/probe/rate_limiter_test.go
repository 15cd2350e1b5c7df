package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChenBigdata421/jxt-latency-probe/sdk/config"
)

// TestRateLimiterDisabled 测试未启用时直接放行
func TestRateLimiterDisabled(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{Enabled: false})

	assert.False(t, limiter.Enabled())
	assert.True(t, limiter.Allow(), "未启用时应始终放行")
	require.NoError(t, limiter.Wait(context.Background()))
}

// TestRateLimiterAllow 测试突发容量
func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{
		Enabled:       true,
		RatePerSecond: 1,
		BurstSize:     2,
	})

	assert.True(t, limiter.Enabled())
	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow(), "突发容量耗尽后应拒绝")
}

// TestRateLimiterWait_ContextCancelled 测试等待令牌时上下文超时
func TestRateLimiterWait_ContextCancelled(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{
		Enabled:       true,
		RatePerSecond: 0.1,
		BurstSize:     1,
	})

	// 先耗尽突发容量，下一个令牌要等约10秒
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.Error(t, limiter.Wait(ctx), "等不到令牌时应返回上下文错误")
}
